package cmd

import (
	"playshare/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the playshare API server",
	Long:  `Start the playshare HTTP server, serving the playlist, song, review and user APIs plus media streaming.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
