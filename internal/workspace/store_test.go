// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "data", "workdeck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dir := t.TempDir()

	p, err := s.AddProject(ctx, "api", dir)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, dir, p.Path)

	got, err := s.Project(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestAddProjectInvalidPath(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddProject(ctx, "missing", filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrInvalidPath)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))
	_, err = s.AddProject(ctx, "file", file)
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestProjectNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Project(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.ErrorIs(t, s.RemoveProject(context.Background(), "nope"), ErrProjectNotFound)
}

func TestListProjectsOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"web", "api", "cli"} {
		_, err := s.AddProject(ctx, name, t.TempDir())
		require.NoError(t, err)
	}

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, "api", projects[0].Name)
	assert.Equal(t, "cli", projects[1].Name)
	assert.Equal(t, "web", projects[2].Name)
}

func TestWorkspaceLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.AddProject(ctx, "api", t.TempDir())
	require.NoError(t, err)

	w, err := s.AddWorkspace(ctx, p.ID, "feature", "/ws/api/feature")
	require.NoError(t, err)

	byPath, err := s.WorkspaceByPath(ctx, "/ws/api/feature")
	require.NoError(t, err)
	assert.Equal(t, w.ID, byPath.ID)

	_, err = s.AddWorkspace(ctx, p.ID, "feature", "/ws/api/feature-2")
	assert.Error(t, err, "branch is unique per project")

	list, err := s.ListWorkspaces(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteWorkspace(ctx, w.ID))
	assert.ErrorIs(t, s.DeleteWorkspace(ctx, w.ID), ErrWorkspaceNotFound)
	_, err = s.Workspace(ctx, w.ID)
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestRemoveProjectRemovesWorkspaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.AddProject(ctx, "api", t.TempDir())
	require.NoError(t, err)
	other, err := s.AddProject(ctx, "web", t.TempDir())
	require.NoError(t, err)

	_, err = s.AddWorkspace(ctx, p.ID, "a", "/ws/api/a")
	require.NoError(t, err)
	_, err = s.AddWorkspace(ctx, other.ID, "b", "/ws/web/b")
	require.NoError(t, err)

	require.NoError(t, s.RemoveProject(ctx, p.ID))

	all, err := s.AllWorkspaces(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "/ws/web/b", all[0].Path)
}
