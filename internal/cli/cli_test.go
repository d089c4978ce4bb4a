// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/workdeck/internal/config"
	"github.com/jeranaias/workdeck/internal/tasks"
	"github.com/jeranaias/workdeck/internal/workspace"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		cmd  Command
		sub  string
	}{
		{"empty starts tui", nil, CmdTUI, ""},
		{"tui", []string{"tui"}, CmdTUI, ""},
		{"project list", []string{"project", "list"}, CmdProject, "list"},
		{"project alias", []string{"p", "add", "api", "."}, CmdProject, "add"},
		{"workspace alias", []string{"ws", "create", "api", "main"}, CmdWorkspace, "create"},
		{"config", []string{"config", "show"}, CmdConfig, "show"},
		{"version flag", []string{"--version"}, CmdVersion, ""},
		{"help", []string{"-h"}, CmdHelp, ""},
		{"unknown", []string{"frobnicate"}, CmdUnknown, "frobnicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.args)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.sub, args.Subcommand)
		})
	}
}

func TestParseArgsGlobalFlags(t *testing.T) {
	cmd, args := ParseArgs([]string{"--json", "project", "list", "-q", "--config=/tmp/c.toml"})
	assert.Equal(t, CmdProject, cmd)
	assert.True(t, args.JSON)
	assert.True(t, args.Quiet)
	assert.Equal(t, "/tmp/c.toml", args.ConfigPath)
	assert.Equal(t, []string{"list"}, args.Raw)

	_, args = ParseArgs([]string{"-v", "--config", "other.toml"})
	assert.True(t, args.Verbose)
	assert.Equal(t, "other.toml", args.ConfigPath)
}

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"Create", "api", "--depth", "1", "main", "--mode=fast", "--dry=false", "--force"})

	assert.Equal(t, "create", p.Subcommand())
	assert.Equal(t, "api", p.Positional(1))
	assert.Equal(t, "main", p.Positional(2))
	assert.Equal(t, "", p.Positional(9))
	assert.Equal(t, 3, p.PositionalCount())
	assert.Equal(t, "1", p.Flag("depth"))
	assert.Equal(t, "fast", p.Flag("mode"))
	assert.True(t, p.BoolFlag("force"))
	assert.False(t, p.BoolFlag("dry"))

	assert.NoError(t, p.Require(3, "x"))
	var usage *UsageError
	assert.ErrorAs(t, p.Require(4, "workdeck x <a> <b> <c>"), &usage)
	assert.Equal(t, "workdeck x <a> <b> <c>", usage.Usage)
}

func TestArgParserDoubleDash(t *testing.T) {
	p := NewArgParser([]string{"create", "--", "--weird-branch"})
	assert.Equal(t, "--weird-branch", p.Positional(1))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", &UsageError{Usage: "x"}, ExitUsageError},
		{"config", config.ValidateErrors{{Field: "tasks.heavy_limit", Message: "must be at least 1"}}, ExitConfigError},
		{"project not found", NewCommandError("project", "remove", fmt.Errorf("%w: api", workspace.ErrProjectNotFound)), ExitNotFoundError},
		{"workspace not found", workspace.ErrWorkspaceNotFound, ExitNotFoundError},
		{"task failed", NewCommandError("workspace", "create", &tasks.TaskError{TaskID: "t1", Message: "boom"}), ExitTaskFailed},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ExitCode(tt.err))
		})
	}
}

func TestNewCommandErrorNil(t *testing.T) {
	assert.NoError(t, NewCommandError("project", "list", nil))
}

func TestVersionString(t *testing.T) {
	assert.Contains(t, VersionString(), "workdeck "+Version)
}
