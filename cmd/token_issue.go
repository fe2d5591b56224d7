package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/realmbroker/internal/core"
	"github.com/darmiel/realmbroker/internal/service"
)

var (
	tokenIssueScope    string
	tokenIssueLifetime time.Duration
	tokenIssueRaw      bool
)

var tokenIssueCmd = &cobra.Command{
	Use:   "issue <principal>",
	Short: "Issue a token for a principal",
	Long: `Issues a token for an existing principal of the selected realm.
The lifetime is capped by max_token_generation_in_seconds.`,
	Example: `  realmbroker token issue alice --scope catalog:read
  realmbroker token issue alice --realm tenant-b --lifetime 5m --raw`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := buildComponents(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		realm := realmFor(c.Config)
		b, err := c.Brokers.Build(ctx, realm)
		if err != nil {
			return err
		}

		secrets, err := b.MetaStore().LoadPrincipalSecrets(ctx, args[0])
		if err != nil {
			if errors.Is(err, core.ErrPrincipalSecretsNotFound) {
				return logError(err, "", fmt.Sprintf("principal '%s' does not exist in realm '%s'", args[0], realm))
			}
			return err
		}

		scope := tokenIssueScope
		if scope == "" {
			scope = service.DefaultScope
		}
		artifact, err := b.Issue(ctx, core.TokenRequest{
			Subject:       secrets.PrincipalName,
			Scope:         scope,
			IntegrationID: secrets.PrincipalID,
			Lifetime:      tokenIssueLifetime,
		})
		if err != nil {
			return logError(err, "", "issuing token failed")
		}
		log.Debug().Str("fingerprint", artifact.Fingerprint).Msg("issued token")

		if tokenIssueRaw {
			fmt.Println(artifact.Value)
			return nil
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(artifact)
	},
}

func init() {
	tokenCmd.AddCommand(tokenIssueCmd)

	tokenIssueCmd.Flags().StringVar(&tokenIssueScope, "scope", "", "Scope of the token (default "+service.DefaultScope+")")
	tokenIssueCmd.Flags().DurationVar(&tokenIssueLifetime, "lifetime", 0, "Requested lifetime (default is the configured maximum)")
	tokenIssueCmd.Flags().BoolVar(&tokenIssueRaw, "raw", false, "Only print the token")
}
