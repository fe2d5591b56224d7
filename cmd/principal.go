package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var principalCmd = &cobra.Command{
	Use:     "principal",
	Aliases: []string{"principals"},
	Short:   "Manage the principals of a realm",
	Long: `Creates, lists, rotates and deletes principals in the store of the
configuration file. With the memory store, changes are lost when the command exits.`,
}

var principalCreateSecret string

var principalCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a principal and print its client secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := buildComponents(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		ps, realm, err := c.principalStore(ctx)
		if err != nil {
			return err
		}
		secrets, plain, err := ps.CreatePrincipal(ctx, args[0], principalCreateSecret)
		if err != nil {
			return logError(err, "", "creating principal failed")
		}

		logSuccess("created principal %s in realm %s", bold(secrets.PrincipalName), bold(realm))
		fmt.Printf("  %s:     %s\n", faint("Client ID"), secrets.PrincipalName)
		fmt.Printf("  %s: %s\n", faint("Client secret"), plain)
		fmt.Printf("  %s:  %s\n", faint("Principal ID"), secrets.PrincipalID)
		log.Warn().Msg("the client secret is only shown once")
		return nil
	},
}

var principalListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the principals of a realm",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := buildComponents(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		ps, realm, err := c.principalStore(ctx)
		if err != nil {
			return err
		}
		principals, err := ps.ListPrincipals(ctx)
		if err != nil {
			return logError(err, "", "listing principals failed")
		}
		if len(principals) == 0 {
			log.Info().Msgf("No principals in realm %s", realm)
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle("Realm: " + realm.ID())
		t.AppendHeader(table.Row{"Name", "Principal ID", "Created", "Updated", "Secondary"})

		for _, p := range principals {
			secondary := faint("no")
			if p.SecondarySecretHash != "" {
				secondary = "yes"
			}
			t.AppendRow(table.Row{
				bold(truncate(p.PrincipalName, 40)),
				p.PrincipalID,
				p.CreatedAt.Format(time.RFC3339),
				faint(p.UpdatedAt.Format(time.RFC3339)),
				secondary,
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

var principalRotateCmd = &cobra.Command{
	Use:   "rotate <name>",
	Short: "Rotate the client secret of a principal",
	Long: `Generates a new main client secret. The previous secret stays valid as
secondary secret until the next rotation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := buildComponents(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		ps, _, err := c.principalStore(ctx)
		if err != nil {
			return err
		}
		secrets, plain, err := ps.RotatePrincipalSecrets(ctx, args[0])
		if err != nil {
			return logError(err, "", "rotating client secret failed")
		}

		logSuccess("rotated client secret of %s", bold(secrets.PrincipalName))
		fmt.Printf("  %s: %s\n", faint("Client secret"), plain)
		return nil
	},
}

var principalDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a principal",
	Long:    `Deletes a principal. Tokens issued to it are rejected from then on.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := buildComponents(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		ps, realm, err := c.principalStore(ctx)
		if err != nil {
			return err
		}
		if err := ps.DeletePrincipal(ctx, args[0]); err != nil {
			return logError(err, "", "deleting principal failed")
		}
		logSuccess("deleted principal %s from realm %s", bold(args[0]), bold(realm))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(principalCmd)
	principalCmd.AddCommand(principalCreateCmd, principalListCmd, principalRotateCmd, principalDeleteCmd)

	principalCreateCmd.Flags().StringVar(&principalCreateSecret, "client-secret", "",
		"Client secret to use (default is a generated secret)")
}
