// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"time"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind is the kind of a toast notification.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a short-lived notification emitted when a task settles. TaskID
// is a lookup key only; the task may already be gone from history.
type Toast struct {
	ID        string
	TaskID    string
	Kind      ToastKind
	Message   string
	CreatedAt time.Time
}

type toastEntry struct {
	toast Toast
	timer Timer
}

// toastList holds visible toasts oldest first. Callers hold the engine lock.
type toastList struct {
	entries []*toastEntry
	max     int
}

func newToastList(max int) *toastList {
	return &toastList{max: max}
}

// push appends a toast, first evicting the oldest entries while the list is
// full. It returns the evicted toasts.
func (l *toastList) push(e *toastEntry) []Toast {
	var evicted []Toast
	for len(l.entries) >= l.max {
		old := l.entries[0]
		if old.timer != nil {
			old.timer.Stop()
		}
		l.entries[0] = nil
		l.entries = l.entries[1:]
		evicted = append(evicted, old.toast)
	}
	l.entries = append(l.entries, e)
	return evicted
}

// remove drops the toast with the given id and stops its timer. It returns
// false if the toast is not present, making dismissal idempotent.
func (l *toastList) remove(id string) bool {
	for i, e := range l.entries {
		if e.toast.ID != id {
			continue
		}
		if e.timer != nil {
			e.timer.Stop()
		}
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
		return true
	}
	return false
}

func (l *toastList) snapshot() []Toast {
	out := make([]Toast, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.toast
	}
	return out
}
