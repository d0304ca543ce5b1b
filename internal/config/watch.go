package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/theirongolddev/panewatch/internal/watcher"
)

// Watch reloads path whenever it changes and passes the new config to
// onChange. Reload failures go to onError and keep the previous config in
// effect. It returns a close function to stop watching.
func Watch(path string, onChange func(*Config), onError func(error)) (func(), error) {
	if path == "" {
		path = DefaultPath()
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}

	w, err := watcher.New(func(events []watcher.Event) {
		cfg, err := LoadOrDefault(absPath)
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reloading config: %w", err))
			}
			return
		}
		if onChange != nil {
			onChange(cfg)
		}
	},
		watcher.WithDebounceDuration(500*time.Millisecond),
		watcher.WithEventFilter(watcher.Create|watcher.Write|watcher.Rename|watcher.Remove),
		watcher.WithErrorHandler(func(err error) {
			if onError != nil {
				onError(err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}

	if err := w.Add(absPath); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching config path %s: %w", absPath, err)
	}

	return func() {
		w.Close()
	}, nil
}
