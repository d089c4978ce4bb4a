// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

// drawer is the open/closed and focus state of the task drawer. It has no
// say over execution. Callers hold the engine lock.
type drawer struct {
	open       bool
	focused    string
	focusTimer Timer
	// focusGen invalidates a focus timer that fired after being replaced.
	focusGen uint64
}

func (d *drawer) clearFocusTimer() {
	if d.focusTimer != nil {
		d.focusTimer.Stop()
		d.focusTimer = nil
	}
}

// OpenDrawer opens the task drawer.
func (e *Engine) OpenDrawer() {
	e.mu.Lock()
	e.drawer.open = true
	e.mu.Unlock()
	e.changed()
}

// CloseDrawer closes the task drawer.
func (e *Engine) CloseDrawer() {
	e.mu.Lock()
	e.drawer.open = false
	e.mu.Unlock()
	e.changed()
}

// ToggleDrawer flips the drawer and returns the new state.
func (e *Engine) ToggleDrawer() bool {
	e.mu.Lock()
	e.drawer.open = !e.drawer.open
	open := e.drawer.open
	e.mu.Unlock()
	e.changed()
	return open
}

// IsDrawerOpen reports whether the drawer is open.
func (e *Engine) IsDrawerOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drawer.open
}

// FocusedTaskID returns the focused task, or "" when nothing is focused.
func (e *Engine) FocusedTaskID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drawer.focused
}

// ViewTask opens the drawer and focuses taskID for FocusTTL. A later call
// replaces the focus and restarts the timer.
func (e *Engine) ViewTask(taskID string) {
	e.mu.Lock()
	d := &e.drawer
	d.open = true
	d.focused = taskID
	d.clearFocusTimer()
	d.focusGen++
	gen := d.focusGen
	d.focusTimer = e.clock.AfterFunc(FocusTTL, func() {
		e.expireFocus(gen)
	})
	e.mu.Unlock()
	e.changed()
}

func (e *Engine) expireFocus(gen uint64) {
	e.mu.Lock()
	if e.drawer.focusGen != gen {
		e.mu.Unlock()
		return
	}
	e.drawer.focused = ""
	e.drawer.focusTimer = nil
	e.mu.Unlock()
	e.changed()
}
