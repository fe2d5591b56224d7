package cmd

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/darmiel/realmbroker/internal/credentials"
)

var debugClaimsCmd = &cobra.Command{
	Use:   "claims <credentials | ->",
	Short: "Show how a credential string is parsed",
	Long: `Parses a credential string the way the inline authenticator does and
dumps the recognized claims. Nothing is verified.`,
	Example: `  realmbroker debug claims 'principal:alice;realm:ignored;role:admin'`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readArgOrStdin(args[0])
		if err != nil {
			return err
		}
		if !credentials.IsStructured(raw) {
			fmt.Println(faint("credentials are not structured and would be treated as an opaque token"))
			return nil
		}
		claims, err := credentials.Parse(raw)
		if err != nil {
			return logError(err, "", "parsing credentials failed")
		}
		spew.Dump(claims)
		return nil
	},
}

func init() {
	debugCmd.AddCommand(debugClaimsCmd)
}
