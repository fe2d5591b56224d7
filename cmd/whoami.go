package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the principal the saved credentials belong to",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}
		p, correlation, err := cli.WhoAmI(cmd.Context())
		if err != nil {
			return logError(err, correlation, "failed to resolve principal")
		}

		integration := p.IntegrationID
		if !p.HasIntegrationID() {
			integration = faint("(none)")
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
	rootCmd.AddCommand(whoamiCmd)
}
