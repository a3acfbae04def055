package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"voxcollect/logger"
)

var rootCmd = &cobra.Command{
	Use:   "voxcollect",
	Short: "voxcollect records and collects voice utterances.",
	Long: `voxcollect is a voice utterance collection tool: a backend that hands
out prompts and receives recordings, and a client that records, screens
and uploads them.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.InitLogger(logger.Config{
			Level:      logger.InfoLevel,
			OutputPath: os.Getenv("LOG_PATH"),
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
