// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/workdeck/internal/config"
	"github.com/jeranaias/workdeck/internal/tasks"
	"github.com/jeranaias/workdeck/internal/workspace"
)

// Env is what command handlers operate on.
type Env struct {
	Config  *config.Config
	Store   *workspace.Store
	Manager *workspace.Manager
	Engine  *tasks.Engine
	Out     io.Writer
	Quiet   bool
	JSON    bool
}

// FollowTask prints the phases of the task behind f until it settles and
// returns its result.
func FollowTask(ctx context.Context, env *Env, f *tasks.Future) (any, error) {
	last := ""
	report := func() {
		if env.Quiet {
			return
		}
		t, ok := env.Engine.Task(f.TaskID())
		if !ok {
			return
		}
		line := t.Phase
		if t.Progress != nil && t.Status == tasks.StatusRunning {
			// One line per 10% keeps piped output readable
			line = fmt.Sprintf("%s (%d%%)", t.Phase, *t.Progress/10*10)
		}
		if line != last {
			fmt.Fprintf(env.Out, "  %s %s\n", DimStyle.Render("-"), line)
			last = line
		}
	}

	report()
	for {
		select {
		case <-f.Done():
			report()
			return f.Wait(ctx)
		case <-env.Engine.Changes():
			report()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// resolveProject finds a project by id, unique id prefix, or name.
func resolveProject(ctx context.Context, store *workspace.Store, ref string) (workspace.Project, error) {
	if p, err := store.Project(ctx, ref); err == nil {
		return p, nil
	}
	projects, err := store.ListProjects(ctx)
	if err != nil {
		return workspace.Project{}, err
	}

	var matches []workspace.Project
	for _, p := range projects {
		if p.Name == ref {
			return p, nil
		}
		if strings.HasPrefix(p.ID, ref) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return workspace.Project{}, fmt.Errorf("%w: %s", workspace.ErrProjectNotFound, ref)
	default:
		return workspace.Project{}, fmt.Errorf("project id prefix %q is ambiguous", ref)
	}
}

// resolveWorkspace finds a workspace by id or unique id prefix.
func resolveWorkspace(ctx context.Context, store *workspace.Store, ref string) (workspace.Workspace, error) {
	if w, err := store.Workspace(ctx, ref); err == nil {
		return w, nil
	}
	all, err := store.AllWorkspaces(ctx)
	if err != nil {
		return workspace.Workspace{}, err
	}

	var matches []workspace.Workspace
	for _, w := range all {
		if strings.HasPrefix(w.ID, ref) {
			matches = append(matches, w)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return workspace.Workspace{}, fmt.Errorf("%w: %s", workspace.ErrWorkspaceNotFound, ref)
	default:
		return workspace.Workspace{}, fmt.Errorf("workspace id prefix %q is ambiguous", ref)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
