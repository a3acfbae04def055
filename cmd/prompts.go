package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"voxcollect/config"
	"voxcollect/db"
	"voxcollect/logger"
	"voxcollect/model"
	"voxcollect/repository"
)

var (
	promptsFile  string
	promptsReset bool
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Manage the prompt pool",
	Long: `Seed prompts from a file, reset the pool so it can be collected
again, and inspect how many prompts remain unread. Operates directly on
the database, so it runs wherever the backend runs.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		if err := db.ConnectDB(cfg); err != nil {
			logger.Fatal("failed to connect to database", logger.ErrorField(err))
		}
		defer db.CloseDB()
		if err := db.InitDB(); err != nil {
			logger.Fatal("failed to initialize database schema", logger.ErrorField(err))
		}

		repo := repository.NewPromptRepository(db.DB)

		if promptsReset {
			n, err := repo.ResetAllUnread()
			if err != nil {
				logger.Fatal("resetting prompts failed", logger.ErrorField(err))
			}
			fmt.Printf("Reset %d prompts to unread.\n", n)
			return
		}

		if promptsFile != "" {
			seedPrompts(repo, promptsFile)
		}

		remaining, err := repo.CountUnread()
		if err != nil {
			logger.Fatal("counting prompts failed", logger.ErrorField(err))
		}
		fmt.Printf("%d unread prompts in the pool.\n", remaining)
	},
}

func init() {
	promptsCmd.Flags().StringVarP(&promptsFile, "file", "f", "", "seed prompts from this file, one per line")
	promptsCmd.Flags().BoolVarP(&promptsReset, "reset", "r", false, "mark every prompt unread")
	promptsCmd.Example = `  # seed prompts from a file
  voxcollect prompts -f prompts.txt

  # reset the pool for another collection round
  voxcollect prompts -r

  # show how many prompts remain
  voxcollect prompts`
	rootCmd.AddCommand(promptsCmd)
}

func seedPrompts(repo repository.PromptRepository, path string) {
	f, err := os.Open(path)
	if err != nil {
		logger.Fatal("opening seed file failed", logger.ErrorField(err))
	}
	defer f.Close()

	var imported int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		prompt := &model.Prompt{Type: model.PromptTypeText, Body: line}
		if body, ok := strings.CutPrefix(line, "image:"); ok {
			prompt.Type = model.PromptTypeImage
			prompt.Body = strings.TrimSpace(body)
		}
		if err := repo.SavePrompt(prompt); err != nil {
			logger.Warn("skipping prompt", logger.String("line", line), logger.ErrorField(err))
			continue
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		logger.Fatal("reading seed file failed", logger.ErrorField(err))
	}
	fmt.Printf("Imported %d prompts.\n", imported)
}
