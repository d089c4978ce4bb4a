// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits after a removal before
// checking the disk.
const DefaultDebounce = 500 * time.Millisecond

// Watcher notices workspaces deleted outside workdeck and prunes their
// records. It watches the workspace root and each project directory in it.
type Watcher struct {
	mgr      *Manager
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[string]time.Time // path -> last removal event
	pruning map[string]struct{}  // workspace ids with a prune in flight
}

// NewWatcher creates a watcher for the manager's workspace root.
func NewWatcher(mgr *Manager, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		mgr:      mgr,
		watcher:  fw,
		debounce: debounce,
		logger:   logger.Named("watcher"),
		pending:  make(map[string]time.Time),
		pruning:  make(map[string]struct{}),
	}, nil
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	root := w.mgr.Root()
	if err := os.MkdirAll(root, 0755); err != nil {
		return err
	}
	if err := w.watcher.Add(root); err != nil {
		return err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			w.add(filepath.Join(root, e.Name()))
		}
	}

	// A prune pass at startup catches removals made while we were not running
	w.check(ctx, root)

	tick := 100 * time.Millisecond
	if w.debounce < tick {
		tick = w.debounce
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case now := <-ticker.C:
			for _, path := range w.due(now) {
				w.check(ctx, path)
			}
		}
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) add(dir string) {
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Debug("failed to watch directory", zap.String("path", dir), zap.Error(err))
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Create):
		// New project directories directly under the root
		if filepath.Dir(event.Name) != filepath.Clean(w.mgr.Root()) {
			return
		}
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.add(event.Name)
		}

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if w.mgr.IsBusy(event.Name) {
			return
		}
		w.mu.Lock()
		w.pending[event.Name] = time.Now()
		w.mu.Unlock()
	}
}

// due returns and forgets the pending paths whose debounce has elapsed.
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			out = append(out, path)
			delete(w.pending, path)
		}
	}
	return out
}

// check prunes every recorded workspace at or below path that no longer
// exists on disk.
func (w *Watcher) check(ctx context.Context, path string) {
	all, err := w.mgr.Store().AllWorkspaces(ctx)
	if err != nil {
		w.logger.Warn("failed to list workspaces", zap.Error(err))
		return
	}

	prefix := filepath.Clean(path) + string(filepath.Separator)
	for _, ws := range all {
		if ws.Path != path && !strings.HasPrefix(ws.Path, prefix) {
			continue
		}
		if w.mgr.IsBusy(ws.Path) {
			continue
		}
		if _, err := os.Stat(ws.Path); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		w.prune(ws)
	}
}

func (w *Watcher) prune(ws Workspace) {
	w.mu.Lock()
	if _, ok := w.pruning[ws.ID]; ok {
		w.mu.Unlock()
		return
	}
	w.pruning[ws.ID] = struct{}{}
	w.mu.Unlock()

	w.logger.Info("workspace removed externally", zap.String("workspace_id", ws.ID), zap.String("path", ws.Path))
	f := w.mgr.PruneWorkspace(ws, "watcher")
	go func() {
		<-f.Done()
		w.mu.Lock()
		delete(w.pruning, ws.ID)
		w.mu.Unlock()
	}()
}
