// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// project_cmd.go - workdeck project add|list|remove.
package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/jeranaias/workdeck/internal/util"
)

// HandleProject runs a project subcommand.
func HandleProject(ctx context.Context, env *Env, args Args) error {
	p := NewArgParser(args.Raw)
	switch p.Subcommand() {
	case "add":
		if err := p.Require(3, "workdeck project add <name> <path>"); err != nil {
			return err
		}
		return NewCommandError("project", "add", projectAdd(ctx, env, p.Positional(1), p.Positional(2)))
	case "list", "ls", "":
		return NewCommandError("project", "list", projectList(ctx, env))
	case "remove", "rm":
		if err := p.Require(2, "workdeck project remove <project>"); err != nil {
			return err
		}
		return NewCommandError("project", "remove", projectRemove(ctx, env, p.Positional(1)))
	default:
		return &UsageError{Usage: "workdeck project add|list|remove"}
	}
}

func projectAdd(ctx context.Context, env *Env, name, path string) error {
	proj, err := env.Store.AddProject(ctx, name, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "%s project %s %s\n", SuccessStyle.Render("Added"), proj.Name, DimStyle.Render(shortID(proj.ID)))
	return nil
}

func projectList(ctx context.Context, env *Env) error {
	projects, err := env.Store.ListProjects(ctx)
	if err != nil {
		return err
	}

	counts := make([]int, len(projects))
	for i, proj := range projects {
		ws, err := env.Store.ListWorkspaces(ctx, proj.ID)
		if err != nil {
			return err
		}
		counts[i] = len(ws)
	}

	if env.JSON {
		out := make([]projectJSON, len(projects))
		for i, proj := range projects {
			out[i] = projectJSON{ID: proj.ID, Name: proj.Name, Path: proj.Path, Workspaces: counts[i], CreatedAt: proj.CreatedAt}
		}
		return NewJSONResponse("project list", out).Write(env.Out)
	}

	if len(projects) == 0 {
		fmt.Fprintln(env.Out, DimStyle.Render("No projects. Add one with: workdeck project add <name> <path>"))
		return nil
	}

	tw := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, LabelStyle.Render("ID")+"\t"+LabelStyle.Render("NAME")+"\t"+LabelStyle.Render("WORKSPACES")+"\t"+LabelStyle.Render("PATH"))
	for i, proj := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			shortID(proj.ID), proj.Name, counts[i], util.TruncateWidth(proj.Path, GetTerminalWidth()/2))
	}
	return tw.Flush()
}

func projectRemove(ctx context.Context, env *Env, ref string) error {
	proj, err := resolveProject(ctx, env.Store, ref)
	if err != nil {
		return err
	}
	f, err := env.Manager.RemoveProject(ctx, proj.ID, "cli")
	if err != nil {
		return err
	}
	if !env.Quiet {
		fmt.Fprintf(env.Out, "Removing project %s\n", proj.Name)
	}
	if _, err := FollowTask(ctx, env, f); err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "%s project %s\n", SuccessStyle.Render("Removed"), proj.Name)
	return nil
}
