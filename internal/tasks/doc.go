// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides the background task engine for workspace operations.
//
// Long-running operations such as cloning or deleting a workspace are
// submitted to an Engine, which records them, admits them through one of two
// lanes, runs them off the caller's goroutine, and reports the outcome as a
// record update, a toast, and a resolved Future.
//
// # Key Types
//
//   - Engine: admission, execution, retry, toasts and drawer state
//   - Task: snapshot of a task record (queued, running, success, error)
//   - Options: one submission; reused verbatim by Retry
//   - Future: the pending result of a submission
//   - Toast: a notification with its own expiry timer
//
// # Lanes
//
// LaneLight tasks start as soon as they are submitted. LaneHeavy tasks wait
// in FIFO order until fewer than the heavy limit (default 2) are running.
//
// # Usage
//
//	engine := tasks.New(tasks.WithHeavyLimit(2))
//	f := engine.Submit(tasks.Options{
//	    Kind:  tasks.KindDeleteWorkspace,
//	    Title: "Delete feature-x",
//	    Lane:  tasks.LaneHeavy,
//	    Body: func(ctx context.Context, c tasks.Controls) (any, error) {
//	        c.SetPhase("Removing files")
//	        return nil, os.RemoveAll(dir)
//	    },
//	})
//	if _, err := f.Wait(ctx); err != nil {
//	    // the record is "error" and engine.Retry(f.TaskID()) re-submits it
//	}
package tasks
