package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darmiel/realmbroker/internal/audit"
)

var fingerprintType string

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint <token | ->",
	Short: "Calculate the audit fingerprint of a token",
	Long: `Prints the fingerprint that audit entries use to identify a token.
Use it to find the entries of a token without sharing the token itself.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := readArgOrStdin(args[0])
		if err != nil {
			return err
		}

		known := false
		for _, t := range audit.RegisteredFingerprinterTypes() {
			if t == fingerprintType {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown fingerprint type '%s' (available: %v)",
				fingerprintType, audit.RegisteredFingerprinterTypes())
		}

		fmt.Println(audit.CalculateFingerprint(fingerprintType, token))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fingerprintCmd)
	fingerprintCmd.Flags().StringVarP(&fingerprintType, "type", "t", audit.BearerFingerprintType, "Token type")
}
