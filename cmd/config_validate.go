package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darmiel/realmbroker/internal/broker"
	"github.com/darmiel/realmbroker/internal/engine"
	"github.com/darmiel/realmbroker/internal/store"
)

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Parses the configuration file and builds the token broker factory,
which fails if neither a secret nor a secret file is configured, and
compiles the scope rules. The secret itself is not read.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return logError(err, "", "Configuration is invalid.")
		}
		if _, err := broker.BuildFactory(cfg.TokenBroker, store.NewInMemoryEntityManagerFactory()); err != nil {
			return logError(err, "", "Token broker configuration is invalid.")
		}
		if _, err := engine.New(cfg.ScopeRules); err != nil {
			return logError(err, "", "Scope rules are invalid.")
		}

		logSuccess("Configuration is valid.")
		fmt.Printf("  %s: %s\n", faint("Token broker"), cfg.TokenBroker.Type)
		fmt.Printf("  %s:        %s\n", faint("Store"), cfg.Store.Type)
		fmt.Printf("  %s: %s\n", faint("Authenticator"), cfg.Authenticator.Type)
		fmt.Printf("  %s: %s\n", faint("Default realm"), cfg.Server.DefaultRealm)
		fmt.Printf("  %s:  %d\n", faint("Scope rules"), len(cfg.ScopeRules))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
