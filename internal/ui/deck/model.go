// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package deck provides the main workdeck TUI: the project list, the task
// drawer and the toast stack, all driven by the task engine.
package deck

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/workdeck/internal/config"
	"github.com/jeranaias/workdeck/internal/tasks"
	"github.com/jeranaias/workdeck/internal/ui/components"
	"github.com/jeranaias/workdeck/internal/ui/styles"
	"github.com/jeranaias/workdeck/internal/util"
)

// Model is the root bubbletea model.
type Model struct {
	engine *tasks.Engine
	ops    Workspaces
	theme  *styles.Theme
	keys   KeyMap

	drawer  *components.TaskDrawer
	spinner spinner.Model
	input   textinput.Model

	projects     []ProjectEntry
	cursor       int
	focusTasks   bool
	prompt       prompt
	notice       string
	err          error
	recentHidden bool

	drawerWidth int
	width       int
	height      int
	now         func() time.Time
}

// New creates the deck model. ops may be nil, which leaves the project
// pane empty.
func New(engine *tasks.Engine, ops Workspaces, theme *styles.Theme, cfg config.UIConfig) Model {
	if theme == nil {
		theme = styles.NewTheme()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = theme.Spinner

	drawer := components.NewTaskDrawer(theme)
	drawer.SetShowRecent(cfg.ShowRecent)
	drawer.SetSpinner(sp.View())

	width := cfg.DrawerWidth
	if width <= 0 {
		width = 56
	}

	return Model{
		engine:       engine,
		ops:          ops,
		theme:        theme,
		keys:         DefaultKeyMap(),
		drawer:       drawer,
		spinner:      sp,
		input:        newBranchInput(),
		recentHidden: !cfg.ShowRecent,
		drawerWidth:  width,
		now:          time.Now,
	}
}

// Init starts listening to the engine.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForChange(m.engine),
		m.spinner.Tick,
		tick(),
		m.loadProjects(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refresh()
		return m, nil

	case EngineChangedMsg:
		m.refresh()
		return m, tea.Batch(waitForChange(m.engine), m.loadProjects())

	case TickMsg:
		m.refresh()
		return m, tick()

	case ProjectsLoadedMsg:
		m.projects = msg.Projects
		m.err = msg.Err
		m.clampCursor()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.drawer.SetSpinner(m.spinner.View())
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt.kind != promptNone {
		return m.handlePrompt(msg)
	}
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		m.engine.ToggleDrawer()
		m.focusTasks = m.engine.IsDrawerOpen()

	case key.Matches(msg, m.keys.Switch):
		m.focusTasks = !m.focusTasks && m.engine.IsDrawerOpen()

	case key.Matches(msg, m.keys.Up):
		if m.tasksFocused() {
			m.drawer.MoveUp()
		} else if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.tasksFocused() {
			m.drawer.MoveDown()
		} else if m.cursor < len(m.rows())-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.New):
		return m.startCreate()

	case key.Matches(msg, m.keys.Delete):
		m = m.startDelete()

	case key.Matches(msg, m.keys.View):
		if id := m.viewTarget(); id != "" {
			m.engine.ViewTask(id)
			m.refresh()
			m.drawer.SelectTask(id)
		}

	case key.Matches(msg, m.keys.Retry):
		if t, ok := m.drawer.Selected(); ok && t.Retryable {
			if f, ok := m.engine.Retry(t.ID); ok {
				m.refresh()
				m.drawer.SelectTask(f.TaskID())
			}
		}

	case key.Matches(msg, m.keys.Dismiss):
		if toasts := m.engine.Toasts(); len(toasts) > 0 {
			m.engine.DismissToast(toasts[len(toasts)-1].ID)
		}

	case key.Matches(msg, m.keys.Recent):
		m.toggleRecent()
	}
	m.refresh()
	return m, nil
}

// tasksFocused reports whether selection keys move the drawer cursor.
func (m Model) tasksFocused() bool {
	return m.focusTasks && m.engine.IsDrawerOpen()
}

// viewTarget is the selected task while the drawer is open, otherwise the
// task of the newest toast.
func (m Model) viewTarget() string {
	if m.engine.IsDrawerOpen() {
		if t, ok := m.drawer.Selected(); ok {
			return t.ID
		}
	}
	if toasts := m.engine.Toasts(); len(toasts) > 0 {
		return toasts[len(toasts)-1].TaskID
	}
	return ""
}

func (m *Model) toggleRecent() {
	m.recentHidden = !m.recentHidden
	m.drawer.SetShowRecent(!m.recentHidden)
}

// refresh copies the engine's views into the drawer.
func (m *Model) refresh() {
	m.drawer.SetNow(m.now())
	m.drawer.SetTasks(m.engine.Running(), m.engine.Recent())
	m.drawer.SetFocused(m.engine.FocusedTaskID())
}

func (m Model) loadProjects() tea.Cmd {
	if m.ops == nil {
		return nil
	}
	catalog := m.ops
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		projects, err := catalog.ListProjects(ctx)
		if err != nil {
			return ProjectsLoadedMsg{Err: err}
		}
		entries := make([]ProjectEntry, 0, len(projects))
		for _, p := range projects {
			ws, err := catalog.ListWorkspaces(ctx, p.ID)
			if err != nil {
				return ProjectsLoadedMsg{Err: err}
			}
			entries = append(entries, ProjectEntry{Project: p, Workspaces: ws})
		}
		return ProjectsLoadedMsg{Projects: entries}
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the deck.
func (m Model) View() string {
	header := m.renderHeader()
	status := m.renderStatusBar()
	toasts := components.RenderToastStack(m.theme, m.engine.Toasts(), m.now(), m.width, 0)
	promptLine := m.renderPrompt()

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(status)
	if toasts != "" {
		bodyHeight -= lipgloss.Height(toasts)
	}
	if promptLine != "" {
		bodyHeight -= lipgloss.Height(promptLine)
	}
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	var body string
	if m.engine.IsDrawerOpen() {
		drawerWidth := m.drawerWidth
		if m.width > 0 && drawerWidth > m.width/2 {
			drawerWidth = max(m.width/2, 24)
		}
		m.drawer.SetSize(drawerWidth, bodyHeight)
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderProjects(m.width-drawerWidth, bodyHeight),
			m.drawer.View())
	} else {
		body = m.renderProjects(m.width, bodyHeight)
	}

	parts := []string{header, body}
	if toasts != "" {
		parts = append(parts, toasts)
	}
	if promptLine != "" {
		parts = append(parts, lipgloss.NewStyle().Padding(0, 1).Render(promptLine))
	}
	parts = append(parts, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("workdeck")
	summary := m.engine.Summary()
	return m.theme.Header.Width(max(m.width, 1)).Render(brand + "  " + summary)
}

func (m Model) renderProjects(width, height int) string {
	var b strings.Builder
	switch {
	case m.err != nil:
		b.WriteString(styles.RenderError(m.err.Error()))
	case len(m.projects) == 0:
		b.WriteString(m.theme.DrawerEmpty.Render("No projects. Add one with: workdeck project add <name> <path>"))
	default:
		marker := func(i int) string {
			if i == m.cursor && !m.tasksFocused() {
				return m.theme.RowCursor.Render("> ")
			}
			return "  "
		}
		i := 0
		for _, p := range m.projects {
			b.WriteString(marker(i))
			b.WriteString(m.theme.ProjectName.Render(p.Project.Name))
			b.WriteString(" ")
			b.WriteString(m.theme.ProjectPath.Render(p.Project.Path))
			b.WriteString("\n")
			i++
			for _, w := range p.Workspaces {
				line := fmt.Sprintf("%s  %s", w.Branch, w.Path)
				b.WriteString(marker(i))
				b.WriteString(m.theme.Workspace.Render(util.TruncateWidth(line, max(width-6, 8))))
				b.WriteString("\n")
				i++
			}
		}
	}

	style := lipgloss.NewStyle().Padding(0, 1).Height(height).MaxHeight(height)
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderStatusBar() string {
	var hints []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	stats := m.engine.Stats()
	disk := fmt.Sprintf("disk %d/%d", stats.HeavyRunning, stats.HeavyLimit)
	if stats.HeavyWaiting > 0 {
		disk += fmt.Sprintf(" (+%d)", stats.HeavyWaiting)
	}
	return m.theme.StatusBar.Width(max(m.width, 1)).Render(strings.Join(hints, "  ") + "  " + disk)
}
