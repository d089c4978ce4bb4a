// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"fmt"
)

// Future is the pending result of a submitted task.
type Future struct {
	taskID string
	done   chan struct{}
	value  any
	err    error
}

func newFuture(taskID string) *Future {
	return &Future{taskID: taskID, done: make(chan struct{})}
}

// resolve is called once, by the settlement path.
func (f *Future) resolve(value any, err *TaskError) {
	f.value = value
	if err != nil {
		f.err = err
	}
	close(f.done)
}

// TaskID returns the id of the record this future belongs to.
func (f *Future) TaskID() string {
	return f.taskID
}

// Done is closed once the task settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the task settles or ctx is done. A failed task returns
// a *TaskError.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Typed adapts a body with a concrete result type.
func Typed[T any](body func(ctx context.Context, c Controls) (T, error)) Body {
	return func(ctx context.Context, c Controls) (any, error) {
		return body(ctx, c)
	}
}

// Await waits for f and asserts its value to T.
func Await[T any](ctx context.Context, f *Future) (T, error) {
	var zero T
	v, err := f.Wait(ctx)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	tv, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("task %s returned %T, want %T", f.taskID, v, zero)
	}
	return tv, nil
}
