package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/realmbroker/pkg/client"
)

var auditLogOpts client.ListAuditsOpts

var auditLogCmd = &cobra.Command{
	Use:     "log",
	Aliases: []string{"ls", "list"},
	Short:   "List recent audit entries of the realm",
	Long:    `Lists recent audit entries. The saved credentials must carry the admin scope.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}
		entries, correlation, err := cli.ListAudits(cmd.Context(), auditLogOpts)
		if err != nil {
			return logError(err, correlation, "failed to list audit entries")
		}
		if len(entries) == 0 {
			log.Info().Msg("No audit entries found")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Time", "Action", "Realm", "Principal", "Granted", "Authenticator", "Error"})

		for _, e := range entries {
			granted := redCross
			if e.Granted {
				granted = greenCheck
			}
			t.AppendRow(table.Row{
				faint(e.Time.Format(time.DateTime)),
				bold(e.Action),
				e.Realm,
				e.Principal,
				granted,
				e.Authenticator,
				truncate(e.Error, 48),
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditLogCmd)

	f := auditLogCmd.Flags()
	f.UintVarP(&auditLogOpts.Limit, "limit", "n", 0, "Maximum number of entries (server default if 0)")
	f.StringVar(&auditLogOpts.CorrelationID, "correlation-id", "", "Only show entries of this request")
	f.StringVar(&auditLogOpts.Principal, "principal", "", "Only show entries of this principal")
	f.StringVar(&auditLogOpts.Action, "action", "", "Only show entries with this action")
	f.StringVar(&auditLogOpts.Fingerprint, "fingerprint", "", "Only show entries of this token fingerprint")
}
