package cmd

import (
	"github.com/spf13/cobra"

	"voxcollect/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the collection backend",
	Long: `Run the HTTP backend that serves prompts, mints one-time upload links
and stores uploaded utterances.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
