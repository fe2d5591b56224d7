package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/darmiel/realmbroker/internal/cliconfig"
	"github.com/darmiel/realmbroker/internal/config"
	"github.com/darmiel/realmbroker/internal/core"
	"github.com/darmiel/realmbroker/internal/store"
	"github.com/darmiel/realmbroker/pkg/client"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()

	greenCheck = green("✔")
	redCross   = red("✘")
)

func logSuccess(format string, args ...any) {
	log.Info().Msgf("%s %s", greenCheck, fmt.Sprintf(format, args...))
}

// logError reports err to the user and returns BeQuietError.
func logError(err error, correlation, msg string) error {
	if correlation != "" {
		log.Error().Msgf("%s %s (correlation ID: %s)", redCross, msg, correlation)
	} else {
		log.Error().Msgf("%s %s", redCross, msg)
	}
	log.Error().Msgf("error: %v", err)
	return BeQuietError{}
}

func loadConfig() (*config.Config, error) {
	path := viper.GetString(ConfigKey)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config '%s': %w", path, err)
	}
	log.Debug().Msgf("using config file: %s", path)
	return cfg, nil
}

// realmFor returns the realm selected with --realm, or the default realm of cfg.
func realmFor(cfg *config.Config) core.RealmContext {
	if realm := viper.GetString(RealmKey); realm != "" {
		return core.RealmContext(realm)
	}
	if cfg != nil && cfg.Server.DefaultRealm != "" {
		return core.RealmContext(cfg.Server.DefaultRealm)
	}
	return core.DefaultRealm
}

// openStore opens the configured store and creates the bootstrap principals.
func openStore(ctx context.Context, cfg *config.Config) (store.Factory, error) {
	factory, err := store.Build(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("building store: %w", err)
	}
	created, err := store.Bootstrap(ctx, factory, cfg.Bootstrap)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	for _, name := range created {
		log.Info().Str("principal", name).Msg("created bootstrap principal")
	}
	return factory, nil
}

func serverAddr() (string, error) {
	server := viper.GetString(ServerKey)
	if server == "" {
		return "", fmt.Errorf("server address not configured (use --server or set REALMBROKER_SERVER)")
	}
	return server, nil
}

// getClient returns a client for the remote server, authenticated with the
// saved credential (or REALMBROKER_TOKEN).
func getClient() (*client.Client, error) {
	server, err := serverAddr()
	if err != nil {
		return nil, err
	}

	var opts []client.Option
	realm := viper.GetString(RealmKey)

	cfg, err := cliconfig.Load()
	if err != nil {
		return nil, err
	}
	cred, err := cfg.GetCredential(server)
	switch {
	case err == nil:
		opts = append(opts, client.WithAuthToken(cred.Token))
		if realm == "" {
			realm = cred.Realm
		}
	case !errors.Is(err, cliconfig.ErrCredentialNotFound):
		return nil, err
	}

	if envToken := os.Getenv("REALMBROKER_TOKEN"); envToken != "" {
		opts = append(opts, client.WithAuthToken(envToken))
	}
	if realm != "" {
		opts = append(opts, client.WithRealm(realm))
	}
	return client.New(server, opts...), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func applyTableFormat(t table.Writer) {
	s := table.StyleRounded
	s.Format.Header = text.FormatDefault
	t.SetStyle(s)
}
