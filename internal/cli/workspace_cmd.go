// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// workspace_cmd.go - workdeck workspace create|delete|list.
package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/jeranaias/workdeck/internal/tasks"
	"github.com/jeranaias/workdeck/internal/workspace"
)

// HandleWorkspace runs a workspace subcommand.
func HandleWorkspace(ctx context.Context, env *Env, args Args) error {
	p := NewArgParser(args.Raw)
	switch p.Subcommand() {
	case "create", "new":
		if err := p.Require(3, "workdeck workspace create <project> <branch>"); err != nil {
			return err
		}
		return NewCommandError("workspace", "create", workspaceCreate(ctx, env, p.Positional(1), p.Positional(2)))
	case "delete", "rm":
		if err := p.Require(2, "workdeck workspace delete <workspace>"); err != nil {
			return err
		}
		return NewCommandError("workspace", "delete", workspaceDelete(ctx, env, p.Positional(1)))
	case "list", "ls":
		if err := p.Require(2, "workdeck workspace list <project>"); err != nil {
			return err
		}
		return NewCommandError("workspace", "list", workspaceList(ctx, env, p.Positional(1)))
	default:
		return &UsageError{Usage: "workdeck workspace create|delete|list"}
	}
}

func workspaceCreate(ctx context.Context, env *Env, ref, branch string) error {
	proj, err := resolveProject(ctx, env.Store, ref)
	if err != nil {
		return err
	}
	f, err := env.Manager.CreateWorkspace(ctx, proj.ID, branch, "cli")
	if err != nil {
		return err
	}
	if !env.Quiet {
		fmt.Fprintf(env.Out, "Creating %s/%s\n", proj.Name, branch)
	}
	if _, err := FollowTask(ctx, env, f); err != nil {
		return err
	}
	w, err := tasks.Await[workspace.Workspace](ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "%s %s %s\n", SuccessStyle.Render("Created"), w.Path, DimStyle.Render(shortID(w.ID)))
	return nil
}

func workspaceDelete(ctx context.Context, env *Env, ref string) error {
	w, err := resolveWorkspace(ctx, env.Store, ref)
	if err != nil {
		return err
	}
	f, err := env.Manager.DeleteWorkspace(ctx, w.ID, "cli")
	if err != nil {
		return err
	}
	if !env.Quiet {
		fmt.Fprintf(env.Out, "Deleting %s\n", w.Path)
	}
	if _, err := FollowTask(ctx, env, f); err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "%s workspace %s\n", SuccessStyle.Render("Deleted"), w.Branch)
	return nil
}

func workspaceList(ctx context.Context, env *Env, ref string) error {
	proj, err := resolveProject(ctx, env.Store, ref)
	if err != nil {
		return err
	}
	list, err := env.Store.ListWorkspaces(ctx, proj.ID)
	if err != nil {
		return err
	}

	if env.JSON {
		out := make([]workspaceJSON, len(list))
		for i, w := range list {
			out[i] = workspaceJSON{ID: w.ID, ProjectID: w.ProjectID, Branch: w.Branch, Path: w.Path, CreatedAt: w.CreatedAt}
		}
		return NewJSONResponse("workspace list", out).Write(env.Out)
	}

	if len(list) == 0 {
		fmt.Fprintf(env.Out, "%s\n", DimStyle.Render("No workspaces for "+proj.Name))
		return nil
	}
	tw := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, LabelStyle.Render("ID")+"\t"+LabelStyle.Render("BRANCH")+"\t"+LabelStyle.Render("PATH"))
	for _, w := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", shortID(w.ID), w.Branch, w.Path)
	}
	return tw.Flush()
}
