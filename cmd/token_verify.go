package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/darmiel/realmbroker/internal/audit"
)

var tokenVerifyCmd = &cobra.Command{
	Use:   "verify <token | ->",
	Short: "Verify a token and show its claims",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := readArgOrStdin(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		c, err := buildComponents(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		b, err := c.Brokers.Build(ctx, realmFor(c.Config))
		if err != nil {
			return err
		}
		claims, err := b.Verify(ctx, token)
		if err != nil {
			return logError(err, "", "token is invalid")
		}

		logSuccess("token is valid")
		fmt.Printf("  %s:        %s\n", faint("Subject"), bold(claims.Subject))
		fmt.Printf("  %s:          %s\n", faint("Scope"), claims.Scope)
		fmt.Printf("  %s:          %s\n", faint("Realm"), claims.Realm)
		fmt.Printf("  %s: %s\n", faint("Integration ID"), claims.IntegrationID)
		fmt.Printf("  %s:       %s\n", faint("Token ID"), claims.TokenID)
		fmt.Printf("  %s:      %s\n", faint("Issued at"), claims.IssuedAt.Format(time.RFC3339))
		fmt.Printf("  %s:     %s (%s)\n", faint("Expires at"), claims.ExpiresAt.Format(time.RFC3339),
			time.Until(claims.ExpiresAt).Round(time.Second))
		fmt.Printf("  %s:    %s\n", faint("Fingerprint"), audit.CalculateFingerprint(audit.BearerFingerprintType, token))
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenVerifyCmd)
}

// readArgOrStdin returns arg, or the trimmed standard input if arg is "-".
func readArgOrStdin(arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := os.ReadFile("/dev/stdin")
	if err != nil {
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", fmt.Errorf("input cannot be empty")
	}
	return value, nil
}
