package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/darmiel/realmbroker/internal/cliconfig"
	"github.com/darmiel/realmbroker/pkg/client"
)

var (
	loginClientSecret string
	loginScope        string
)

var loginCmd = &cobra.Command{
	Use:   "login <client-id>",
	Short: "Authenticate with a realmbroker server",
	Long: `Exchanges client credentials for a bearer token of the selected realm.
The token is saved locally and used by later remote commands.`,
	Example: `  realmbroker login alice --server http://localhost:8181 --client-secret ...
  REALMBROKER_CLIENT_SECRET=... realmbroker login alice --realm tenant-b`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := serverAddr()
		if err != nil {
			return err
		}
		secret := loginClientSecret
		if secret == "" {
			secret = viper.GetString("client_secret")
		}
		if secret == "" {
			return fmt.Errorf("client secret not provided (use --client-secret or set REALMBROKER_CLIENT_SECRET)")
		}

		realm := viper.GetString(RealmKey)
		var opts []client.Option
		if realm != "" {
			opts = append(opts, client.WithRealm(realm))
		}
		cli := client.New(server, opts...)

		log.Info().Msgf("Requesting token from %s...", server)
		resp, correlation, err := cli.Token(cmd.Context(), client.ClientCredentials{
			ClientID:     args[0],
			ClientSecret: secret,
			Scope:        loginScope,
		})
		if err != nil {
			return logError(err, correlation, "failed to log in")
		}

		cfg, err := cliconfig.Load()
		if err != nil {
			return fmt.Errorf("loading cli config: %w", err)
		}
		cred := &cliconfig.Credential{
			Token:     resp.AccessToken,
			Realm:     realm,
			ClientID:  args[0],
			ExpiresAt: time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		}
		if err := cfg.SetCredential(server, cred); err != nil {
			return err
		}
		if err := cliconfig.Save(cfg); err != nil {
			return logError(err, correlation, "login succeeded but could not save credentials")
		}

		logSuccess("saved credentials for %s (expires in %s)", bold(server),
			(time.Duration(resp.ExpiresIn) * time.Second).String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVar(&loginClientSecret, "client-secret", "", "Client secret of the principal")
	loginCmd.Flags().StringVar(&loginScope, "scope", "", "Scope to request (optional)")
}
