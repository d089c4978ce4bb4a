// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package deck

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/workdeck/internal/tasks"
	"github.com/jeranaias/workdeck/internal/ui/styles"
	"github.com/jeranaias/workdeck/internal/workspace"
)

// origin tags every task the deck submits.
const origin = "deck"

// row is one line of the project pane: a project, or one of its workspaces
// when ws >= 0.
type row struct {
	project int
	ws      int
}

func (m Model) rows() []row {
	var out []row
	for i, p := range m.projects {
		out = append(out, row{project: i, ws: -1})
		for j := range p.Workspaces {
			out = append(out, row{project: i, ws: j})
		}
	}
	return out
}

// selectedRow returns the row under the cursor.
func (m Model) selectedRow() (row, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return row{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.rows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// =============================================================================
// PROMPTS
// =============================================================================

type promptKind int

const (
	promptNone promptKind = iota
	promptBranch
	promptConfirm
)

// prompt is the pending question at the bottom of the screen.
type prompt struct {
	kind     promptKind
	question string
	run      func(ctx context.Context, input string) (*tasks.Future, error)
}

func newBranchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "branch name"
	ti.CharLimit = 200
	ti.Width = 40
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	return ti
}

// startCreate asks for a branch of the selected project.
func (m Model) startCreate() (Model, tea.Cmd) {
	r, ok := m.selectedRow()
	if !ok {
		m.notice = "Add a project first: workdeck project add <name> <path>"
		return m, nil
	}
	p := m.projects[r.project].Project
	ops := m.ops
	m.prompt = prompt{
		kind:     promptBranch,
		question: fmt.Sprintf("New workspace of %s:", p.Name),
		run: func(ctx context.Context, branch string) (*tasks.Future, error) {
			return ops.CreateWorkspace(ctx, p.ID, branch, origin)
		},
	}
	m.input.Reset()
	cmd := m.input.Focus()
	return m, cmd
}

// startDelete asks to confirm deleting the selected workspace, or removing
// the selected project with all of its workspaces.
func (m Model) startDelete() Model {
	r, ok := m.selectedRow()
	if !ok {
		return m
	}
	entry := m.projects[r.project]
	ops := m.ops

	if r.ws >= 0 {
		w := entry.Workspaces[r.ws]
		m.prompt = prompt{
			kind:     promptConfirm,
			question: fmt.Sprintf("Delete workspace %s of %s? (y/n)", w.Branch, entry.Project.Name),
			run: func(ctx context.Context, _ string) (*tasks.Future, error) {
				return ops.DeleteWorkspace(ctx, w.ID, origin)
			},
		}
		return m
	}

	p := entry.Project
	m.prompt = prompt{
		kind:     promptConfirm,
		question: fmt.Sprintf("Remove project %s and its %d workspaces? (y/n)", p.Name, len(entry.Workspaces)),
		run: func(ctx context.Context, _ string) (*tasks.Future, error) {
			return ops.RemoveProject(ctx, p.ID, origin)
		},
	}
	return m
}

// handlePrompt routes keys while a prompt is open.
func (m Model) handlePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Cancel) || msg.Type == tea.KeyCtrlC {
		m.closePrompt()
		return m, nil
	}

	switch m.prompt.kind {
	case promptBranch:
		if msg.Type == tea.KeyEnter {
			branch := strings.TrimSpace(m.input.Value())
			if branch == "" {
				return m, nil
			}
			return m.submit(branch), nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	default:
		if key.Matches(msg, m.keys.Confirm) {
			return m.submit(""), nil
		}
		m.closePrompt()
		return m, nil
	}
}

// submit runs the prompt's action. Lookup and validation errors come back
// synchronously and are shown as a notice; everything else is a task.
func (m Model) submit(input string) Model {
	run := m.prompt.run
	m.closePrompt()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f, err := run(ctx, input)
	if err != nil {
		m.notice = err.Error()
		return m
	}
	m.refresh()
	m.drawer.SelectTask(f.TaskID())
	return m
}

func (m *Model) closePrompt() {
	m.prompt = prompt{}
	m.input.Blur()
	m.input.Reset()
}

func (m Model) renderPrompt() string {
	switch m.prompt.kind {
	case promptBranch:
		return m.theme.Prompt.Render(m.prompt.question) + " " + m.input.View()
	case promptConfirm:
		return m.theme.Prompt.Render(m.prompt.question)
	}
	if m.notice != "" {
		return m.theme.Notice.Render(styles.StatusIndicators.Error + " " + m.notice)
	}
	return ""
}

// Workspaces is what the deck lists and operates on.
type Workspaces interface {
	ListProjects(ctx context.Context) ([]workspace.Project, error)
	ListWorkspaces(ctx context.Context, projectID string) ([]workspace.Workspace, error)
	CreateWorkspace(ctx context.Context, projectID, branch, origin string) (*tasks.Future, error)
	DeleteWorkspace(ctx context.Context, workspaceID, origin string) (*tasks.Future, error)
	RemoveProject(ctx context.Context, projectID, origin string) (*tasks.Future, error)
}
