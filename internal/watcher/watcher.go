// Package watcher processes documents dropped into an input directory. It is
// the unattended counterpart of the upload form: same pipeline, same output
// directory, one file at a time.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docveil/docveil/internal/config"
	"github.com/docveil/docveil/internal/logger"
	"github.com/docveil/docveil/internal/pipeline"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches one input directory and runs the pipeline for every new
// document. Files are processed sequentially, start to finish, in event
// order.
type Watcher struct {
	inputDir string
	cfg      config.WatcherConfig
	pipeline *pipeline.Pipeline
	logger   *logger.Logger
}

// New creates a watcher. The input directory is created if missing.
func New(inputDir string, cfg config.WatcherConfig, pipe *pipeline.Pipeline, log *logger.Logger) (*Watcher, error) {
	if err := os.MkdirAll(inputDir, 0755); err != nil {
		return nil, err
	}
	return &Watcher{
		inputDir: inputDir,
		cfg:      cfg,
		pipeline: pipe,
		logger:   log.WithComponent("watcher"),
	}, nil
}

// Run watches until the context is cancelled. Per-file failures are logged
// and never stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.inputDir); err != nil {
		return err
	}
	w.logger.Info("Watching input directory", zap.String("dir", w.inputDir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			w.handle(event.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(path string) {
	if !shouldProcess(path) {
		return
	}
	w.logger.Info("New file detected", zap.String("path", path))

	// Creation events fire while the producing application may still be
	// writing; processing immediately fails with half-written packages.
	if !waitForStable(path, w.cfg.StableAttempts, w.cfg.StableDelay) {
		w.logger.Warn("File never stabilized, skipping", zap.String("path", path))
		return
	}

	if _, err := w.pipeline.Process(path); err != nil {
		// Already logged and broadcast by the pipeline.
		return
	}
}

// shouldProcess filters out non-documents and the droppings other programs
// leave while writing: Office lock files (~$...), hidden files, partial
// downloads.
func shouldProcess(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".docx", ".pdf":
		return true
	default:
		return false
	}
}

// waitForStable polls until the file stops growing and can be opened, or
// gives up after the configured number of attempts.
func waitForStable(path string, attempts int, delay time.Duration) bool {
	for i := 0; i < attempts; i++ {
		before, err := os.Stat(path)
		if err != nil {
			time.Sleep(delay)
			continue
		}

		time.Sleep(delay)

		after, err := os.Stat(path)
		if err != nil {
			continue
		}
		if before.Size() == 0 || before.Size() != after.Size() {
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			continue
		}
		f.Close()
		return true
	}
	return false
}
