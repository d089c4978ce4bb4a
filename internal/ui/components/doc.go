// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the UI components of the workdeck TUI.

Components render snapshots taken from the task engine; they never call
into it. The deck model refreshes them whenever the engine reports a change.

# Task Drawer (task_drawer.go)

TaskDrawer lists running tasks followed by recent ones, with a selection
cursor and a highlight for the focused task:

	drawer := components.NewTaskDrawer(theme)
	drawer.SetSize(56, 30)
	drawer.SetTasks(engine.Running(), engine.Recent())
	drawer.SetFocused(engine.FocusedTaskID())
	view := drawer.View()

# Toast Stack (toast_stack.go)

RenderToastStack renders the engine's toasts in the bottom-right corner,
newest at the bottom, with the time left before each auto-dismisses.
*/
package components
