// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

type fileStamp struct {
	mod  time.Time
	size int64
}

// Watcher polls the config files and reloads on change. Only settings that
// are safe to change at runtime should be applied by listeners; the role
// catalog and credential stay fixed for the life of the process.
type Watcher struct {
	mu        sync.RWMutex
	opts      Options
	paths     []string
	interval  time.Duration
	stamps    map[string]fileStamp
	config    *Config
	listeners []func(*Config)
	started   bool
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
	logger    *slog.Logger
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets the polling interval for file changes.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithWatchLogger sets the logger for the watcher.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher loads the configuration described by opts and prepares to watch
// its YAML file and profile overlay.
func NewWatcher(opts Options, wopts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		opts:     opts,
		interval: time.Second,
		stamps:   make(map[string]fileStamp),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   slog.Default(),
	}
	for _, opt := range wopts {
		opt(w)
	}
	if opts.Path != "" {
		w.paths = append(w.paths, opts.Path)
		if overlay := profileConfigPath(opts.Path, opts.Profile); overlay != "" {
			w.paths = append(w.paths, overlay)
		}
	}
	for _, path := range w.paths {
		if st, ok := stat(path); ok {
			w.stamps[path] = st
		}
	}

	cfg, err := LoadWithOptions(opts)
	if err != nil {
		return nil, err
	}
	w.config = cfg
	return w, nil
}

// Paths returns the files being watched.
func (w *Watcher) Paths() []string {
	return append([]string(nil), w.paths...)
}

// OnChange registers a callback to be called when config changes.
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Config returns the current configuration.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Start begins watching for configuration changes. Later calls are no-ops.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	go w.watch(ctx)
}

// Stop stops the watcher and waits for the polling goroutine to exit. It is
// safe to call before Start, and more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	started := w.started
	w.started = true // a Start after Stop must not launch
	w.mu.Unlock()

	w.stopOnce.Do(func() { close(w.stopCh) })
	if started {
		<-w.doneCh
	}
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if w.checkForChanges() {
				w.reload()
			}
		}
	}
}

func (w *Watcher) checkForChanges() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := false
	for _, path := range w.paths {
		st, ok := stat(path)
		if !ok {
			continue
		}
		if prev, seen := w.stamps[path]; !seen || !st.mod.Equal(prev.mod) || st.size != prev.size {
			w.stamps[path] = st
			changed = true
		}
	}
	return changed
}

func (w *Watcher) reload() {
	cfg, err := LoadWithOptions(w.opts)
	if err != nil {
		w.logger.Error("config reload failed, keeping previous settings", "error", err)
		return
	}

	w.mu.Lock()
	w.config = cfg
	listeners := append(([]func(*Config))(nil), w.listeners...)
	w.mu.Unlock()

	w.logger.Info("config reloaded", "log_level", cfg.Log.Level)
	for _, fn := range listeners {
		fn(cfg)
	}
}

func stat(path string) (fileStamp, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, false
	}
	return fileStamp{mod: info.ModTime(), size: info.Size()}, true
}
