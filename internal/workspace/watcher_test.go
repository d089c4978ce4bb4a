// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, fx *managerFixture) {
	t.Helper()
	w, err := NewWatcher(fx.mgr, 20*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
}

func workspaceGone(fx *managerFixture, id string) func() bool {
	return func() bool {
		_, err := fx.store.Workspace(context.Background(), id)
		return errors.Is(err, ErrWorkspaceNotFound)
	}
}

func TestWatcherPrunesExternalRemoval(t *testing.T) {
	fx := newManagerFixture(t, CopyCloner{})
	ctx := context.Background()

	f, err := fx.mgr.CreateWorkspace(ctx, fx.project.ID, "main", "test")
	require.NoError(t, err)
	w, err := await[Workspace](t, f)
	require.NoError(t, err)

	startWatcher(t, fx)
	// Give the watcher time to register its directories
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.RemoveAll(w.Path))
	require.Eventually(t, workspaceGone(fx, w.ID), 3*time.Second, 20*time.Millisecond)

	var pruned bool
	for _, task := range fx.engine.Recent() {
		if task.Target.WorkspaceID == w.ID && task.Origin == "watcher" {
			pruned = true
		}
	}
	assert.True(t, pruned, "prune runs as a watcher task")
}

func TestWatcherPrunesAtStartup(t *testing.T) {
	fx := newManagerFixture(t, CopyCloner{})
	ctx := context.Background()

	stale, err := fx.store.AddWorkspace(ctx, fx.project.ID, "stale", filepath.Join(fx.root, "api", "stale"))
	require.NoError(t, err)

	startWatcher(t, fx)
	require.Eventually(t, workspaceGone(fx, stale.ID), 3*time.Second, 20*time.Millisecond)
}

func TestWatcherIgnoresOwnDeletes(t *testing.T) {
	fx := newManagerFixture(t, CopyCloner{})
	ctx := context.Background()

	f, err := fx.mgr.CreateWorkspace(ctx, fx.project.ID, "main", "test")
	require.NoError(t, err)
	w, err := await[Workspace](t, f)
	require.NoError(t, err)

	startWatcher(t, fx)
	time.Sleep(50 * time.Millisecond)

	del, err := fx.mgr.DeleteWorkspace(ctx, w.ID, "test")
	require.NoError(t, err)
	_, err = await[any](t, del)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	for _, task := range fx.engine.Recent() {
		assert.NotEqual(t, "watcher", task.Origin)
	}
}
