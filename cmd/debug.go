package cmd

import "github.com/spf13/cobra"

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Troubleshoot credentials and authenticator configuration",
}

func init() {
	rootCmd.AddCommand(debugCmd)
}
