// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides the background task engine for workspace operations.
package tasks

import (
	"fmt"
	"time"
)

// =============================================================================
// TASK STATUS
// =============================================================================

// Status represents the lifecycle state of a task.
type Status string

const (
	// StatusQueued indicates the task is waiting for admission
	StatusQueued Status = "queued"

	// StatusRunning indicates the task body is executing
	StatusRunning Status = "running"

	// StatusSuccess indicates the task body returned without error
	StatusSuccess Status = "success"

	// StatusError indicates the task body failed
	StatusError Status = "error"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for success and error.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusError
}

// IsActive returns true for queued and running.
func (s Status) IsActive() bool {
	return s == StatusQueued || s == StatusRunning
}

// validTransition reports whether from -> to is allowed.
// Valid transitions: queued -> running -> success/error
func validTransition(from, to Status) bool {
	switch from {
	case StatusQueued:
		return to == StatusRunning
	case StatusRunning:
		return to == StatusSuccess || to == StatusError
	default:
		return false
	}
}

// =============================================================================
// KIND, LANE, TARGET
// =============================================================================

// Kind tags the category of operation a task performs. It is informational
// and never affects scheduling.
type Kind string

const (
	KindCreateWorkspace Kind = "create-workspace"
	KindDeleteWorkspace Kind = "delete-workspace"
	KindRemoveProject   Kind = "remove-project"
	KindPruneWorkspace  Kind = "prune-workspace"
)

// Lane selects the admission class of a task.
type Lane int

const (
	// LaneLight tasks start as soon as they are submitted.
	LaneLight Lane = iota
	// LaneHeavy tasks are filesystem intensive and share a bounded number
	// of slots.
	LaneHeavy
)

// String returns "light" or "heavy".
func (l Lane) String() string {
	if l == LaneHeavy {
		return "heavy"
	}
	return "light"
}

// TargetKind identifies what a task operates on.
type TargetKind string

const (
	TargetProject   TargetKind = "project"
	TargetWorkspace TargetKind = "workspace"
	TargetSystem    TargetKind = "system"
)

// Target describes the subject of a task for display. The engine never
// interprets it.
type Target struct {
	Kind        TargetKind
	ProjectID   string
	WorkspaceID string
	Label       string
}

// =============================================================================
// TASK RECORD
// =============================================================================

// Task is the observable record of one submitted unit of work. Values
// returned by the engine are snapshots; mutating them has no effect.
type Task struct {
	// ID is assigned at submission and never changes
	ID string

	// Kind is the operation category
	Kind Kind

	// Status is the current lifecycle state
	Status Status

	// Title is the human label shown in the UI
	Title string

	// Phase is a free-form progress label, updated while running
	Phase string

	// Progress is an optional 0-100 percentage; nil when not reported
	Progress *int

	// Lane is fixed at creation and selects the admission class
	Lane Lane

	// Retryable is true only while Status is error and a retry entry exists
	Retryable bool

	// Origin names the UI surface that submitted the task
	Origin string

	// Target is passed through for rendering
	Target Target

	// CreatedAt, StartedAt and EndedAt; zero means unset
	CreatedAt time.Time
	StartedAt time.Time
	EndedAt   time.Time

	// Error is the user-facing message, set only when Status is error
	Error string

	// seq orders tasks submitted at the same instant
	seq uint64
}

// FSHeavy reports whether the task runs in the heavy lane.
func (t Task) FSHeavy() bool {
	return t.Lane == LaneHeavy
}

// Duration returns how long the task has been running or took to complete.
func (t Task) Duration(now time.Time) time.Duration {
	if t.StartedAt.IsZero() {
		return 0
	}
	if t.EndedAt.IsZero() {
		return now.Sub(t.StartedAt)
	}
	return t.EndedAt.Sub(t.StartedAt)
}

// Summary returns a one-line summary of the task.
func (t Task) Summary(now time.Time) string {
	id := t.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("[%s] %s - %s (%s)", id, t.Title, StatusLabel(t.Status), Elapsed(t.StartedAt, t.EndedAt, now))
}

// clone returns an independent copy of the record.
func (t *Task) clone() Task {
	c := *t
	if t.Progress != nil {
		p := *t.Progress
		c.Progress = &p
	}
	return c
}

// sortKey is the timestamp recent history is ordered by.
func (t *Task) sortKey() time.Time {
	if !t.EndedAt.IsZero() {
		return t.EndedAt
	}
	return t.CreatedAt
}
