package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/zhubert/checkin/logger"
)

// Watcher reloads a Config whenever its backing file changes on disk.
type Watcher struct {
	cfg      *Config
	watcher  *fsnotify.Watcher
	onChange func(*Config)
	done     chan struct{}
}

// Watch starts watching cfg's file. The directory is watched rather than
// the file itself so editors that replace the file atomically are seen.
// onChange, if non-nil, runs after every successful reload. Invalid files
// are logged and ignored; the previous values stay in effect. Cancelling ctx
// stops the watcher and releases it.
func Watch(ctx context.Context, cfg *Config, onChange func(*Config)) (*Watcher, error) {
	path := cfg.FilePath()
	if path == "" {
		return nil, fmt.Errorf("config has no file path")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		cfg:      cfg,
		watcher:  fw,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.loop(ctx, filepath.Clean(path))
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit. It is safe to
// call after the watch context was cancelled.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) loop(ctx context.Context, path string) {
	defer close(w.done)
	log := logger.WithComponent("config")

	for {
		select {
		case <-ctx.Done():
			if err := w.watcher.Close(); err != nil {
				log.Warn("failed to close config watcher", "error", err)
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload(path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload(path string) {
	log := logger.WithComponent("config")

	fresh, err := LoadFrom(path)
	if err != nil {
		log.Warn("ignoring invalid config", "path", path, "error", err)
		return
	}
	w.cfg.replace(fresh)
	log.Info("config reloaded",
		"offerMoveOnPartialCommit", fresh.OfferMoveOnPartialCommit,
		"moveToFailedList", fresh.MoveToFailedList.String(),
	)
	if w.onChange != nil {
		w.onChange(w.cfg)
	}
}
