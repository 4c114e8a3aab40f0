package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/xraph/beanforge/logger"
)

// watchDebounce collapses the burst of events an editor emits on save.
const watchDebounce = 300 * time.Millisecond

// watch re-runs render whenever one of paths changes, until ctx is done.
// Parent directories are watched so that atomic rename-on-save is seen.
func watch(ctx context.Context, paths []string, render func() error, l logger.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.Close()

	targets := make(map[string]bool, len(paths))
	dirs := map[string]bool{}
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		targets[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
		l.Debug("watching directory", logger.String("dir", dir))
	}

	return watchLoop(ctx, w.Events, w.Errors, targets, watchDebounce, render, l)
}

func watchLoop(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	targets map[string]bool,
	debounce time.Duration,
	render func() error,
	l logger.Logger,
) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !targets[filepath.Clean(event.Name)] {
				continue
			}
			l.Debug("descriptor changed",
				logger.String("file", event.Name),
				logger.String("operation", event.Op.String()),
			)
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			l.Warn("file watcher error", logger.Error(err))

		case <-fire:
			fire = nil
			if err := render(); err != nil {
				l.Error("reclassification failed", logger.Error(err))
			}
		}
	}
}
