package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"voxcollect/config"
	"voxcollect/core/capture"
	"voxcollect/core/collection"
	"voxcollect/core/promptapi"
	"voxcollect/core/qc"
	"voxcollect/core/upload"
	"voxcollect/core/viz"
	"voxcollect/logger"
	"voxcollect/model"
	"voxcollect/profile"
)

var collectWaveWS string

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Record utterances interactively",
	Long: `Start an interactive collection session against the configured
backend: prompts are shown one at a time, recordings are screened for
length and loudness, and accepted takes are uploaded.`,
	Run: func(cmd *cobra.Command, args []string) {
		runCollect()
	},
}

func init() {
	collectCmd.Flags().StringVar(&collectWaveWS, "wave-ws", "",
		"also publish live soundwave frames to this websocket URL")
	rootCmd.AddCommand(collectCmd)
}

// consoleNotifier prints session output for the terminal collector.
type consoleNotifier struct{}

func (consoleNotifier) StateChanged(s collection.State) {
	switch s {
	case collection.StateRecording:
		fmt.Println("\n● recording... press s to stop")
	case collection.StateBeforeUpload:
		fmt.Println("\n■ recorded. press u to upload, d to re-record")
	case collection.StateUploadError:
		fmt.Println("press t to retry the upload")
	}
}

func (consoleNotifier) ShowPrompt(p *model.Prompt) {
	printPrompt(p)
}

func (consoleNotifier) ShowError(msg string) {
	fmt.Println("\n!", msg)
}

func (consoleNotifier) SessionEnded() {
	fmt.Println("\nAll prompts collected. Thank you!")
}

func printPrompt(p *model.Prompt) {
	if p.Type == model.PromptTypeImage {
		fmt.Printf("\nDescribe this image: %s\n", p.Body)
		return
	}
	fmt.Printf("\nPlease read aloud:\n  %q\n", p.Body)
}

func runCollect() {
	cfg := config.Load()
	ctx := context.Background()

	store := profile.NewStore(cfg.ProfilePath)
	prof, err := store.Load()
	if err != nil {
		logger.Fatal("loading profile failed", logger.ErrorField(err))
	}

	prompts := promptapi.NewClient(cfg.APIBaseURL, cfg.UploadTimeout)
	first := prompts.FetchNext(ctx)
	switch first.Status {
	case promptapi.StatusEmpty:
		fmt.Println("No prompts to collect. Seed some with `voxcollect prompts` first.")
		return
	case promptapi.StatusFailure:
		fmt.Println("Could not reach the collection backend at", cfg.APIBaseURL)
		return
	}

	mic := &capture.FFmpegMicrophone{
		Path:   cfg.FFmpegPath,
		Format: cfg.InputFormat,
		Device: cfg.InputDevice,
	}
	engine := capture.NewEngine(mic, capture.Constraints{
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
	})
	gate := qc.NewGate(qc.WAVDecoder{}, cfg.MinDurationSec, cfg.SilenceCutoff)
	uploader := upload.NewService(cfg.APIBaseURL, cfg.UploadTimeout)

	renderers := viz.MultiRenderer{&viz.TerminalRenderer{W: os.Stdout}}
	if collectWaveWS != "" {
		ws, err := viz.NewWSRenderer(collectWaveWS)
		if err != nil {
			logger.Warn("wave websocket unavailable", logger.ErrorField(err))
		} else {
			defer ws.Close()
			renderers = append(renderers, ws)
		}
	}
	feed := viz.NewFeed(renderers)

	meta := upload.Metadata{
		UserID:     prof.UserID,
		Gender:     prof.Gender,
		UserAge:    strconv.Itoa(prof.UserAge),
		DeviceType: prof.DeviceType,
	}
	session := collection.NewSession(engine, gate, uploader, prompts, feed, consoleNotifier{}, meta)
	defer session.Close()

	printPrompt(first.Prompt)
	fmt.Println("\ncommands: r record, s stop, u upload, d re-record, t retry, q quit")

	scanner := bufio.NewScanner(os.Stdin)
	for session.State() != collection.StateEnded && scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "r":
			session.Dispatch(ctx, collection.RecordPressed{})
		case "s":
			session.Dispatch(ctx, collection.StopPressed{})
		case "u":
			session.Dispatch(ctx, collection.ConfirmPressed{})
		case "d":
			session.Dispatch(ctx, collection.RerecordPressed{})
		case "t":
			session.Dispatch(ctx, collection.RetryPressed{})
		case "q":
			return
		case "":
		default:
			fmt.Println("commands: r record, s stop, u upload, d re-record, t retry, q quit")
		}
	}
}
