package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var debugAuthenticateCmd = &cobra.Command{
	Use:   "authenticate <credentials | ->",
	Short: "Run the configured authenticator against a credential string",
	Long: `Builds the authenticator of the configuration file and authenticates the
given credentials in the selected realm, without starting a server.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readArgOrStdin(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		c, err := buildComponents(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		realm := realmFor(c.Config)
		p, err := c.Authenticator.Authenticate(ctx, realm, raw)
		if err != nil {
			return logError(err, "", fmt.Sprintf("authentication in realm %s failed", realm))
		}

		logSuccess("authenticated by %s", bold(c.Authenticator.Name()))
		integration := p.IntegrationID
		if !p.HasIntegrationID() {
			integration = faint("(none, no secrets record)")
		}
		fmt.Printf("  %s:        %s\n", faint("Subject"), bold(p.Subject))
		fmt.Printf("  %s:          %s\n", faint("Scope"), p.Scope)
		fmt.Printf("  %s:          %s\n", faint("Realm"), p.Realm)
		fmt.Printf("  %s: %s\n", faint("Integration ID"), integration)
		fmt.Printf("  %s:  %s\n", faint("Authenticator"), p.Authenticator)
		return nil
	},
}

func init() {
	debugCmd.AddCommand(debugAuthenticateCmd)
}
