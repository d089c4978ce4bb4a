// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for CLI commands.
//
// Handlers always return errors; main decides how to display them and
// which exit code to use.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/workdeck/internal/config"
	"github.com/jeranaias/workdeck/internal/tasks"
	"github.com/jeranaias/workdeck/internal/workspace"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitTaskFailed    = 4
	ExitNotFoundError = 7
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports a malformed command line.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Usage
}

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // e.g. "project"
	Action  string // e.g. "add"
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError wraps err with the command it came from.
func NewCommandError(command, action string, err error) error {
	if err == nil {
		return nil
	}
	return &CommandError{Command: command, Action: action, Err: err}
}

// =============================================================================
// DISPLAY
// =============================================================================

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	var usage *UsageError
	var verrs config.ValidateErrors
	var taskErr *tasks.TaskError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &usage):
		return ExitUsageError
	case errors.As(err, &verrs):
		return ExitConfigError
	case errors.Is(err, workspace.ErrProjectNotFound), errors.Is(err, workspace.ErrWorkspaceNotFound):
		return ExitNotFoundError
	case errors.As(err, &taskErr):
		return ExitTaskFailed
	default:
		return ExitGeneralError
	}
}

// DisplayError writes an error in a consistent format.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}
