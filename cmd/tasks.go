package cmd

import "github.com/spf13/cobra"

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"task"},
	Short:   "Inspect and trigger the background tasks of a remote server",
	Long:    `Lists, triggers and shows the logs of maintenance tasks. The saved credentials must carry the admin scope.`,
}

func init() {
	rootCmd.AddCommand(tasksCmd)
}
