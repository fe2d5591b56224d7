package cmd

import "github.com/spf13/cobra"

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit log of a remote server",
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
