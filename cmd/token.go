package cmd

import (
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue and verify tokens locally",
	Long: `Issues and verifies tokens with the token broker of the configuration
file, without a running server.`,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
