package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/darmiel/realmbroker/internal/buildinfo"
	"github.com/darmiel/realmbroker/internal/logging"
)

const (
	ConfigKey = "config"
	ServerKey = "server"
	RealmKey  = "realm"
)

var rootCmd = &cobra.Command{
	Use:   "realmbroker",
	Short: fmt.Sprintf("realmbroker token broker (version: %s, commit: %s)", buildinfo.Version, buildinfo.CommitHash),
	Long: `realmbroker issues and verifies bearer tokens for the principals of
multiple realms (tenants). Each realm has its own principals; tokens are
signed with a symmetric key and are only valid in the realm they were issued for.`,
	Version: buildinfo.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(nil)
		return nil
	},
}

// BeQuietError signals that the error was already reported to the user.
type BeQuietError struct{}

func (BeQuietError) Error() string {
	return "failed"
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		var quiet BeQuietError
		if !errors.As(err, &quiet) {
			log.Error().Err(err).Msg("execution failed")
		}
		os.Exit(1)
	}
}

func init() {
	// setup pre-flag logger
	logging.InitDefault()

	rootCmd.PersistentFlags().StringP("config", "c", "realmbroker.yaml", "Broker configuration file")
	_ = viper.BindPFlag(ConfigKey, rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag(logging.LevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("log-format", logging.FormatConsole, "Log format (console, json)")
	_ = viper.BindPFlag(logging.FormatKey, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.PersistentFlags().Bool("no-color", false, "Disable color output")
	_ = viper.BindPFlag(logging.NoColorKey, rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.PersistentFlags().String("server", "", "Address of a remote realmbroker server")
	_ = viper.BindPFlag(ServerKey, rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.PersistentFlags().StringP("realm", "r", "", "Realm to operate in (default is the configured default realm)")
	_ = viper.BindPFlag(RealmKey, rootCmd.PersistentFlags().Lookup("realm"))

	viper.SetEnvPrefix("REALMBROKER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))

	viper.AutomaticEnv()

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}
