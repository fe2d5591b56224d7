package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/realmbroker/internal/tasks"
)

var tasksListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the server's maintenance tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Retrieving tasks...")
		status, correlation, err := cli.ListTasks(cmd.Context())
		if err != nil {
			return logError(err, correlation, "listing tasks failed")
		}
		if len(status) == 0 {
			log.Info().Msg("No maintenance tasks registered")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Task", "Schedule", "Last Run", "Next Run", "Result"})
		for _, task := range status {
			t.AppendRow(taskRow(task, time.Now()))
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func taskRow(task tasks.TaskStatus, now time.Time) table.Row {
	schedule := faint("on demand")
	if task.Interval > 0 {
		schedule = "every " + task.Interval.String()
	}

	lastRun := faint("never")
	if task.Running {
		lastRun = color.BlueString("running")
	} else if !task.LastRun.IsZero() {
		lastRun = now.Sub(task.LastRun).Round(time.Second).String() + " ago"
	}

	nextRun := "-"
	if !task.NextRun.IsZero() {
		if d := task.NextRun.Sub(now); d > 0 {
			nextRun = "in " + d.Round(time.Second).String()
		} else {
			nextRun = "due"
		}
	}

	var result string
	switch {
	case task.LastResult == "":
	case task.LastResult == "success":
		result = greenCheck + " success"
	default:
		result = redCross + " " + strings.TrimPrefix(task.LastResult, "failed: ")
	}

	return table.Row{bold(task.Name), schedule, lastRun, nextRun, result}
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
}
