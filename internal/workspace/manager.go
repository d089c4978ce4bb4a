// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/workdeck/internal/tasks"
)

// Manager turns workspace operations into engine submissions. Lookups that
// only read the database happen synchronously; everything touching the
// filesystem runs as a task body.
type Manager struct {
	store  *Store
	engine *tasks.Engine
	cloner Cloner
	root   string
	logger *zap.Logger

	// busy holds paths a task of ours is creating or removing, so the
	// watcher does not treat them as external changes.
	mu   sync.Mutex
	busy map[string]struct{}
}

// NewManager creates a manager that clones workspaces under root.
func NewManager(store *Store, engine *tasks.Engine, cloner Cloner, root string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:  store,
		engine: engine,
		cloner: cloner,
		root:   root,
		logger: logger.Named("workspace"),
		busy:   make(map[string]struct{}),
	}
}

// Store returns the underlying project store.
func (m *Manager) Store() *Store {
	return m.store
}

// ListProjects lists registered projects.
func (m *Manager) ListProjects(ctx context.Context) ([]Project, error) {
	return m.store.ListProjects(ctx)
}

// ListWorkspaces lists the workspaces of one project.
func (m *Manager) ListWorkspaces(ctx context.Context, projectID string) ([]Workspace, error) {
	return m.store.ListWorkspaces(ctx, projectID)
}

// Root returns the workspace root directory.
func (m *Manager) Root() string {
	return m.root
}

// WorkspacePath returns where the workspace for project/branch lives.
func (m *Manager) WorkspacePath(p Project, branch string) string {
	return filepath.Join(m.projectDir(p), sanitize(branch))
}

func (m *Manager) projectDir(p Project) string {
	return filepath.Join(m.root, sanitize(p.Name))
}

func sanitize(name string) string {
	r := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-", "..", "-")
	return r.Replace(strings.TrimSpace(name))
}

// checkBelow returns ErrInvalidName unless path is a direct child of parent.
// Names like "." would otherwise map a workspace onto its project directory.
func checkBelow(parent, path, name string) error {
	rel, err := filepath.Rel(parent, path)
	if err != nil || rel == "." || rel == ".." || strings.ContainsRune(rel, filepath.Separator) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (m *Manager) markBusy(path string) {
	m.mu.Lock()
	m.busy[path] = struct{}{}
	m.mu.Unlock()
}

func (m *Manager) unmarkBusy(path string) {
	m.mu.Lock()
	delete(m.busy, path)
	m.mu.Unlock()
}

// IsBusy reports whether a workdeck task is currently changing path.
func (m *Manager) IsBusy(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.busy[path]
	return ok
}

// =============================================================================
// OPERATIONS
// =============================================================================

// CreateWorkspace clones a project into a new branch workspace. The future
// resolves to the created Workspace.
func (m *Manager) CreateWorkspace(ctx context.Context, projectID, branch, origin string) (*tasks.Future, error) {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return nil, errors.New("branch name is required")
	}
	p, err := m.store.Project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := checkBelow(m.root, m.projectDir(p), p.Name); err != nil {
		return nil, err
	}
	dst := m.WorkspacePath(p, branch)
	if err := checkBelow(m.projectDir(p), dst, branch); err != nil {
		return nil, err
	}

	return m.engine.Submit(tasks.Options{
		Kind:   tasks.KindCreateWorkspace,
		Title:  fmt.Sprintf("Create %s/%s", p.Name, branch),
		Origin: origin,
		Lane:   tasks.LaneHeavy,
		Target: tasks.Target{
			Kind:      tasks.TargetWorkspace,
			ProjectID: p.ID,
			Label:     branch,
		},
		InitialPhase:   "Waiting for disk",
		SuccessMessage: fmt.Sprintf("Workspace %s is ready", branch),
		Body: tasks.Typed(func(ctx context.Context, c tasks.Controls) (Workspace, error) {
			return m.createWorkspace(ctx, c, p, branch, dst)
		}),
	}), nil
}

func (m *Manager) createWorkspace(ctx context.Context, c tasks.Controls, p Project, branch, dst string) (Workspace, error) {
	c.SetPhase("Preparing")
	if _, err := os.Stat(dst); err == nil {
		return Workspace{}, fmt.Errorf("%w: %s", ErrWorkspaceExists, dst)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return Workspace{}, fmt.Errorf("failed to create project directory: %w", err)
	}

	m.markBusy(dst)
	defer m.unmarkBusy(dst)

	phase := "Cloning " + branch
	c.SetProgress(phase, 0)
	if err := m.cloner.Clone(ctx, p.Path, dst, branch, func(pct int) {
		c.SetProgress(phase, pct)
	}); err != nil {
		if rmErr := os.RemoveAll(dst); rmErr != nil {
			m.logger.Warn("failed to clean partial clone", zap.String("path", dst), zap.Error(rmErr))
		}
		return Workspace{}, err
	}

	c.SetPhase("Recording workspace")
	w, err := m.store.AddWorkspace(ctx, p.ID, branch, dst)
	if err != nil {
		return Workspace{}, err
	}
	m.logger.Info("workspace created", zap.String("workspace_id", w.ID), zap.String("path", dst))
	return w, nil
}

// DeleteWorkspace removes a workspace directory and its record.
func (m *Manager) DeleteWorkspace(ctx context.Context, workspaceID, origin string) (*tasks.Future, error) {
	w, err := m.store.Workspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	return m.engine.Submit(tasks.Options{
		Kind:   tasks.KindDeleteWorkspace,
		Title:  "Delete " + w.Branch,
		Origin: origin,
		Lane:   tasks.LaneHeavy,
		Target: tasks.Target{
			Kind:        tasks.TargetWorkspace,
			ProjectID:   w.ProjectID,
			WorkspaceID: w.ID,
			Label:       w.Branch,
		},
		Body: func(ctx context.Context, c tasks.Controls) (any, error) {
			return nil, m.deleteWorkspace(ctx, c, w)
		},
	}), nil
}

func (m *Manager) deleteWorkspace(ctx context.Context, c tasks.Controls, w Workspace) error {
	m.markBusy(w.Path)
	defer m.unmarkBusy(w.Path)

	c.SetPhase("Removing files")
	if err := os.RemoveAll(w.Path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", w.Path, err)
	}

	c.SetPhase("Updating database")
	if err := m.store.DeleteWorkspace(ctx, w.ID); err != nil && !errors.Is(err, ErrWorkspaceNotFound) {
		return err
	}
	m.logger.Info("workspace deleted", zap.String("workspace_id", w.ID))
	return nil
}

// RemoveProject deletes every workspace of a project, the project's
// directory under the workspace root, and finally the project record. The
// source repository itself is left alone.
func (m *Manager) RemoveProject(ctx context.Context, projectID, origin string) (*tasks.Future, error) {
	p, err := m.store.Project(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return m.engine.Submit(tasks.Options{
		Kind:   tasks.KindRemoveProject,
		Title:  "Remove " + p.Name,
		Origin: origin,
		Lane:   tasks.LaneHeavy,
		Target: tasks.Target{
			Kind:      tasks.TargetProject,
			ProjectID: p.ID,
			Label:     p.Name,
		},
		SuccessMessage: fmt.Sprintf("Project %s removed", p.Name),
		Body: func(ctx context.Context, c tasks.Controls) (any, error) {
			return nil, m.removeProject(ctx, c, p)
		},
	}), nil
}

func (m *Manager) removeProject(ctx context.Context, c tasks.Controls, p Project) error {
	c.SetPhase("Listing workspaces")
	workspaces, err := m.store.ListWorkspaces(ctx, p.ID)
	if err != nil {
		return err
	}

	for i, w := range workspaces {
		c.SetProgress("Removing "+w.Branch, i*100/(len(workspaces)+1))
		m.markBusy(w.Path)
		err := os.RemoveAll(w.Path)
		m.unmarkBusy(w.Path)
		if err != nil {
			return fmt.Errorf("failed to remove %s: %w", w.Path, err)
		}
		if err := m.store.DeleteWorkspace(ctx, w.ID); err != nil && !errors.Is(err, ErrWorkspaceNotFound) {
			return err
		}
	}

	dir := m.projectDir(p)
	c.SetProgress("Removing derived state", len(workspaces)*100/(len(workspaces)+1))
	// A name that does not map below the root never had a directory of its own
	if checkBelow(m.root, dir, p.Name) == nil {
		m.markBusy(dir)
		err = os.RemoveAll(dir)
		m.unmarkBusy(dir)
		if err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
	}

	c.SetPhase("Updating database")
	if err := m.store.RemoveProject(ctx, p.ID); err != nil {
		return err
	}
	m.logger.Info("project removed", zap.String("project_id", p.ID), zap.Int("workspaces", len(workspaces)))
	return nil
}

// PruneWorkspace drops the record of a workspace whose directory is gone.
// It is cheap and runs in the light lane.
func (m *Manager) PruneWorkspace(w Workspace, origin string) *tasks.Future {
	return m.engine.Submit(tasks.Options{
		Kind:   tasks.KindPruneWorkspace,
		Title:  "Forget " + w.Branch,
		Origin: origin,
		Lane:   tasks.LaneLight,
		Target: tasks.Target{
			Kind:        tasks.TargetWorkspace,
			ProjectID:   w.ProjectID,
			WorkspaceID: w.ID,
			Label:       w.Branch,
		},
		SuccessMessage: fmt.Sprintf("Workspace %s was removed outside workdeck", w.Branch),
		Body: func(ctx context.Context, c tasks.Controls) (any, error) {
			c.SetPhase("Updating database")
			if _, err := os.Stat(w.Path); err == nil {
				return nil, fmt.Errorf("workspace %s still exists on disk", w.Path)
			}
			return nil, m.store.DeleteWorkspace(ctx, w.ID)
		},
	})
}
