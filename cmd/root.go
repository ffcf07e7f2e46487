package cmd

import (
	"fmt"
	"os"

	"playshare/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "playshare",
	Short: "Playshare is a playlist sharing service.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
