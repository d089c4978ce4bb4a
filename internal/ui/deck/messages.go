// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package deck

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/workdeck/internal/tasks"
	"github.com/jeranaias/workdeck/internal/workspace"
)

// EngineChangedMsg is sent when the task engine reports a state change.
type EngineChangedMsg struct{}

// TickMsg refreshes elapsed times and toast countdowns.
type TickMsg struct {
	Time time.Time
}

// ProjectsLoadedMsg carries a fresh project listing.
type ProjectsLoadedMsg struct {
	Projects []ProjectEntry
	Err      error
}

// ProjectEntry is a project with its workspaces.
type ProjectEntry struct {
	Project    workspace.Project
	Workspaces []workspace.Workspace
}

// waitForChange blocks on the engine's change channel.
func waitForChange(e *tasks.Engine) tea.Cmd {
	return func() tea.Msg {
		<-e.Changes()
		return EngineChangedMsg{}
	}
}

// tick returns a command that ticks every second.
func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
