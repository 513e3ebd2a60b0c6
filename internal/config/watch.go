package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/okian/birdiecount/pkg/logger"
	"github.com/okian/birdiecount/pkg/metrics"
)

// Watch monitors path and calls onChange with the reloaded Config each time
// the file is written or replaced. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file, so saves that rename a
// temp file over path keep being seen.
//
// A reload that fails validation is logged and skipped; onChange is not called
// and the previous config stays in effect.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	const op = "config.Watch"
	log := logger.Get().Named("config")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrWatchConfig, err)
	}
	defer func() { _ = watcher.Close() }()

	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrWatchConfig, err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("%s: %w: watch %s: %w", op, ErrWatchConfig, path, err)
	}

	log.Info(ctx, "watching config file", logger.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			// A rename over path arrives as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := LoadFile(ctx, path)
			if err != nil {
				metrics.RecordConfigReload(false)
				log.Error(ctx, "config reload failed, keeping previous config",
					logger.String("path", path), logger.Error(err))
				continue
			}

			metrics.RecordConfigReload(true)
			log.Info(ctx, "config reloaded", logger.String("path", path))
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(ctx, "config watcher error", logger.Error(err))
		}
	}
}
