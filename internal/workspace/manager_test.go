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

	"github.com/jeranaias/workdeck/internal/tasks"
)

type failingCloner struct{ err error }

func (f failingCloner) Clone(ctx context.Context, src, dst, branch string, progress func(int)) error {
	if err := os.MkdirAll(filepath.Join(dst, "partial"), 0755); err != nil {
		return err
	}
	progress(30)
	return f.err
}

type managerFixture struct {
	mgr     *Manager
	engine  *tasks.Engine
	store   *Store
	project Project
	root    string
}

func newManagerFixture(t *testing.T, cloner Cloner) *managerFixture {
	t.Helper()
	store := newTestStore(t)
	engine := tasks.New(tasks.WithHeavyLimit(1))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = engine.Wait(ctx)
	})

	src := t.TempDir()
	writeTree(t, src, map[string]string{"go.mod": "module x", "main.go": "package main"})
	p, err := store.AddProject(context.Background(), "api", src)
	require.NoError(t, err)

	root := filepath.Join(t.TempDir(), "workspaces")
	return &managerFixture{
		mgr:     NewManager(store, engine, cloner, root, nil),
		engine:  engine,
		store:   store,
		project: p,
		root:    root,
	}
}

func await[T any](t *testing.T, f *tasks.Future) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := tasks.Await[T](ctx, f)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	return v, err
}

func TestCreateWorkspace(t *testing.T) {
	fx := newManagerFixture(t, CopyCloner{})
	ctx := context.Background()

	f, err := fx.mgr.CreateWorkspace(ctx, fx.project.ID, "feature/login", "test")
	require.NoError(t, err)

	w, err := await[Workspace](t, f)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fx.root, "api", "feature-login"), w.Path)
	assert.Equal(t, "feature/login", w.Branch)
	assert.FileExists(t, filepath.Join(w.Path, "main.go"))

	stored, err := fx.store.Workspace(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.Path, stored.Path)

	task, ok := fx.engine.Task(f.TaskID())
	require.True(t, ok)
	assert.Equal(t, tasks.StatusSuccess, task.Status)
	assert.Equal(t, tasks.LaneHeavy, task.Lane)
	assert.Equal(t, tasks.TargetWorkspace, task.Target.Kind)
	assert.Equal(t, fx.project.ID, task.Target.ProjectID)
	assert.Equal(t, "test", task.Origin)
}

func TestCreateWorkspaceValidatesSynchronously(t *testing.T) {
	fx := newManagerFixture(t, CopyCloner{})
	ctx := context.Background()

	_, err := fx.mgr.CreateWorkspace(ctx, "missing", "main", "test")
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = fx.mgr.CreateWorkspace(ctx, fx.project.ID, "  ", "test")
	assert.Error(t, err)
	assert.Empty(t, fx.engine.Running())
}

func TestCreateWorkspaceExists(t *testing.T) {
	fx := newManagerFixture(t, CopyCloner{})
	dst := fx.mgr.WorkspacePath(fx.project, "main")
	require.NoError(t, os.MkdirAll(dst, 0755))

	f, err := fx.mgr.CreateWorkspace(context.Background(), fx.project.ID, "main", "test")
	require.NoError(t, err)
	_, err = await[Workspace](t, f)
	assert.ErrorIs(t, err, ErrWorkspaceExists)

	var te *tasks.TaskError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, tasks.KindCreateWorkspace, te.Kind)
	assert.True(t, fx.engine.IsDrawerOpen(), "a failure opens the drawer")
}

func TestCreateWorkspaceFailureCleansUp(t *testing.T) {
	fx := newManagerFixture(t, failingCloner{err: errors.New("disk full")})

	f, err := fx.mgr.CreateWorkspace(context.Background(), fx.project.ID, "main", "test")
	require.NoError(t, err)
	_, err = await[Workspace](t, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.NoDirExists(t, fx.mgr.WorkspacePath(fx.project, "main"))
	task, _ := fx.engine.Task(f.TaskID())
	assert.Equal(t, tasks.StatusError, task.Status)
	assert.Equal(t, "disk full", task.Error)
	assert.True(t, task.Retryable)
}

func TestCreateWorkspaceRetry(t *testing.T) {
	cloner := &flakyCloner{failures: 1}
	fx := newManagerFixture(t, cloner)

	f, err := fx.mgr.CreateWorkspace(context.Background(), fx.project.ID, "main", "test")
	require.NoError(t, err)
	_, err = await[Workspace](t, f)
	require.Error(t, err)

	retry, ok := fx.engine.Retry(f.TaskID())
	require.True(t, ok)
	assert.NotEqual(t, f.TaskID(), retry.TaskID())
	w, err := await[Workspace](t, retry)
	require.NoError(t, err)
	assert.DirExists(t, w.Path)
}

type flakyCloner struct {
	failures int
}

func (f *flakyCloner) Clone(ctx context.Context, src, dst, branch string, progress func(int)) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("transient")
	}
	return CopyCloner{}.Clone(ctx, src, dst, branch, progress)
}

func TestDeleteWorkspace(t *testing.T) {
	fx := newManagerFixture(t, CopyCloner{})
	ctx := context.Background()

	f, err := fx.mgr.CreateWorkspace(ctx, fx.project.ID, "main", "test")
	require.NoError(t, err)
	w, err := await[Workspace](t, f)
	require.NoError(t, err)

	del, err := fx.mgr.DeleteWorkspace(ctx, w.ID, "test")
	require.NoError(t, err)
	_, err = await[any](t, del)
	require.NoError(t, err)

	assert.NoDirExists(t, w.Path)
	_, err = fx.store.Workspace(ctx, w.ID)
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)

	_, err = fx.mgr.DeleteWorkspace(ctx, w.ID, "test")
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestRemoveProject(t *testing.T) {
	fx := newManagerFixture(t, CopyCloner{})
	ctx := context.Background()

	var paths []string
	for _, branch := range []string{"a", "b"} {
		f, err := fx.mgr.CreateWorkspace(ctx, fx.project.ID, branch, "test")
		require.NoError(t, err)
		w, err := await[Workspace](t, f)
		require.NoError(t, err)
		paths = append(paths, w.Path)
	}

	f, err := fx.mgr.RemoveProject(ctx, fx.project.ID, "test")
	require.NoError(t, err)
	_, err = await[any](t, f)
	require.NoError(t, err)

	for _, p := range paths {
		assert.NoDirExists(t, p)
	}
	assert.NoDirExists(t, filepath.Join(fx.root, "api"))
	assert.DirExists(t, fx.project.Path, "source repository is untouched")

	_, err = fx.store.Project(ctx, fx.project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestHeavyOperationsQueue(t *testing.T) {
	gate := make(chan struct{})
	fx := newManagerFixture(t, &gatedCloner{gate: gate})
	ctx := context.Background()

	first, err := fx.mgr.CreateWorkspace(ctx, fx.project.ID, "one", "test")
	require.NoError(t, err)
	second, err := fx.mgr.CreateWorkspace(ctx, fx.project.ID, "two", "test")
	require.NoError(t, err)

	t1, _ := fx.engine.Task(first.TaskID())
	t2, _ := fx.engine.Task(second.TaskID())
	assert.Equal(t, tasks.StatusRunning, t1.Status)
	assert.Equal(t, tasks.StatusQueued, t2.Status)
	assert.Equal(t, "Waiting for disk", t2.Phase)

	close(gate)
	_, err = await[Workspace](t, first)
	require.NoError(t, err)
	_, err = await[Workspace](t, second)
	require.NoError(t, err)
}

type gatedCloner struct {
	gate chan struct{}
}

func (g *gatedCloner) Clone(ctx context.Context, src, dst, branch string, progress func(int)) error {
	<-g.gate
	return CopyCloner{}.Clone(ctx, src, dst, branch, progress)
}

func TestPruneWorkspace(t *testing.T) {
	fx := newManagerFixture(t, CopyCloner{})
	ctx := context.Background()

	gone, err := fx.store.AddWorkspace(ctx, fx.project.ID, "gone", filepath.Join(fx.root, "api", "gone"))
	require.NoError(t, err)

	f := fx.mgr.PruneWorkspace(gone, "test")
	_, err = await[any](t, f)
	require.NoError(t, err)
	_, err = fx.store.Workspace(ctx, gone.ID)
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)

	task, _ := fx.engine.Task(f.TaskID())
	assert.Equal(t, tasks.LaneLight, task.Lane)
	assert.Equal(t, tasks.KindPruneWorkspace, task.Kind)
}

func TestPruneWorkspaceStillOnDisk(t *testing.T) {
	fx := newManagerFixture(t, CopyCloner{})
	ctx := context.Background()

	path := t.TempDir()
	w, err := fx.store.AddWorkspace(ctx, fx.project.ID, "here", path)
	require.NoError(t, err)

	_, err = await[any](t, fx.mgr.PruneWorkspace(w, "test"))
	assert.Error(t, err)
	_, err = fx.store.Workspace(ctx, w.ID)
	assert.NoError(t, err)
}

func TestCreateWorkspaceRejectsProjectDirBranch(t *testing.T) {
	fx := newManagerFixture(t, CopyCloner{})
	ctx := context.Background()

	f, err := fx.mgr.CreateWorkspace(ctx, fx.project.ID, "main", "test")
	require.NoError(t, err)
	first, err := await[Workspace](t, f)
	require.NoError(t, err)

	for _, branch := range []string{".", " . "} {
		f, err := fx.mgr.CreateWorkspace(ctx, fx.project.ID, branch, "test")
		assert.ErrorIs(t, err, ErrInvalidName, "branch %q", branch)
		assert.Nil(t, f)
	}

	assert.FileExists(t, filepath.Join(first.Path, "go.mod"))
	list, err := fx.store.ListWorkspaces(ctx, fx.project.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCheckBelow(t *testing.T) {
	root := filepath.Join("srv", "ws")
	assert.NoError(t, checkBelow(root, filepath.Join(root, "api"), "api"))
	assert.ErrorIs(t, checkBelow(root, filepath.Join(root, "."), "."), ErrInvalidName)
	assert.ErrorIs(t, checkBelow(root, filepath.Join(root, ".."), ".."), ErrInvalidName)
	assert.ErrorIs(t, checkBelow(root, filepath.Join(root, "a", "b"), "a/b"), ErrInvalidName)
}

func TestRemoveProjectNamedDotKeepsRoot(t *testing.T) {
	fx := newManagerFixture(t, CopyCloner{})
	ctx := context.Background()

	f, err := fx.mgr.CreateWorkspace(ctx, fx.project.ID, "main", "test")
	require.NoError(t, err)
	_, err = await[Workspace](t, f)
	require.NoError(t, err)

	dot, err := fx.store.AddProject(ctx, ".", t.TempDir())
	require.NoError(t, err)
	f, err = fx.mgr.RemoveProject(ctx, dot.ID, "test")
	require.NoError(t, err)
	_, err = await[any](t, f)
	require.NoError(t, err)

	assert.DirExists(t, filepath.Join(fx.root, "api", "main"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "feature-login", sanitize("feature/login"))
	assert.Equal(t, "a-b", sanitize(" a b "))
	assert.Equal(t, "-", sanitize(".."))
}
