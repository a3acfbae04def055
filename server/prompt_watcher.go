package server

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"voxcollect/logger"
	"voxcollect/model"
	"voxcollect/repository"
)

// promptWatcher imports prompts from a seed file and keeps importing as
// the file is edited. One prompt per line; lines prefixed with "image:"
// become IMAGE prompts, blank lines and "#" comments are skipped. Lines
// already imported in this process are not imported again.
type promptWatcher struct {
	path string
	repo repository.PromptRepository
	seen map[string]bool
}

func newPromptWatcher(path string, repo repository.PromptRepository) *promptWatcher {
	return &promptWatcher{path: path, repo: repo, seen: make(map[string]bool)}
}

// run imports the current file contents and then follows edits until the
// stop channel closes. Editors replace files rather than write in place,
// so the watch is on the parent directory.
func (pw *promptWatcher) run(stop <-chan struct{}) {
	if _, err := os.Stat(pw.path); err == nil {
		pw.importFile()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("prompt watcher failed", logger.ErrorField(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(pw.path)); err != nil {
		logger.Error("prompt watcher add failed", logger.ErrorField(err))
		return
	}
	logger.Info("watching prompt seed file", logger.String("path", pw.path))

	for {
		select {
		case event := <-watcher.Events:
			if event.Name != pw.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				pw.importFile()
			}
		case err := <-watcher.Errors:
			logger.Warn("prompt watcher error", logger.ErrorField(err))
		case <-stop:
			return
		}
	}
}

func (pw *promptWatcher) importFile() {
	f, err := os.Open(pw.path)
	if err != nil {
		logger.Warn("opening prompt seed file failed", logger.ErrorField(err))
		return
	}
	defer f.Close()

	var imported int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || pw.seen[line] {
			continue
		}

		prompt := &model.Prompt{Type: model.PromptTypeText, Body: line}
		if body, ok := strings.CutPrefix(line, "image:"); ok {
			prompt.Type = model.PromptTypeImage
			prompt.Body = strings.TrimSpace(body)
		}

		if err := pw.repo.SavePrompt(prompt); err != nil {
			logger.Warn("importing prompt failed",
				logger.String("line", line), logger.ErrorField(err))
			continue
		}
		pw.seen[line] = true
		imported++
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("reading prompt seed file failed", logger.ErrorField(err))
	}
	if imported > 0 {
		logger.Info("imported prompts from seed file", logger.Int("count", imported))
	}
}
