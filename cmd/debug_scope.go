package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darmiel/realmbroker/internal/engine"
)

var debugScopeCmd = &cobra.Command{
	Use:   "scope <principal> <scope>",
	Short: "Explain which scope rule grants a scope",
	Long: `Evaluates the scope rules of the configuration file for a principal in the
selected realm and shows why each rule matched or not.`,
	Example: `  realmbroker debug scope alice PRINCIPAL_ROLE:ALL --realm tenant-b`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, err := engine.New(cfg.ScopeRules)
		if err != nil {
			return logError(err, "", "Scope rules are invalid.")
		}

		realm := realmFor(cfg)
		principal, scope := args[0], args[1]
		if eng.Len() == 0 {
			logSuccess("no scope rules configured, every scope is granted")
			return nil
		}

		for _, res := range eng.Explain(realm, principal, scope) {
			mark := redCross
			if res.Matched {
				mark = greenCheck
			}
			fmt.Printf("%s %s\n", mark, bold(res.Rule))
			for _, c := range res.Conditions {
				cmark := redCross
				if c.Matched {
					cmark = greenCheck
				}
				line := fmt.Sprintf("    %s %s", cmark, c.Expression)
				if c.Reason != "" {
					line += faint(" (" + c.Reason + ")")
				}
				fmt.Println(line)
			}
		}

		rule, err := eng.Allow(realm, principal, scope)
		if err != nil {
			return logError(err, "", "scope is not granted")
		}
		logSuccess("scope %s is granted by rule %s", bold(scope), bold(rule))
		return nil
	},
}

func init() {
	debugCmd.AddCommand(debugScopeCmd)
}
