// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/workdeck/internal/tasks"
	"github.com/jeranaias/workdeck/internal/ui/styles"
	"github.com/jeranaias/workdeck/internal/util"
)

// =============================================================================
// TASK DRAWER COMPONENT
// =============================================================================

// TaskDrawer renders the running and recent task lists.
type TaskDrawer struct {
	theme  *styles.Theme
	width  int
	height int

	running []tasks.Task
	recent  []tasks.Task

	showRecent bool
	focused    string
	selected   int
	now        time.Time
	spinner    string
}

// NewTaskDrawer creates a new task drawer component.
func NewTaskDrawer(theme *styles.Theme) *TaskDrawer {
	if theme == nil {
		theme = styles.NewTheme()
	}
	return &TaskDrawer{
		theme:      theme,
		width:      56,
		showRecent: true,
		now:        time.Now(),
		spinner:    "*",
	}
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// SetSize sets the component dimensions.
func (d *TaskDrawer) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// SetShowRecent sets whether settled tasks are listed.
func (d *TaskDrawer) SetShowRecent(show bool) {
	d.showRecent = show
	d.clampSelection()
}

// SetTasks replaces the listed tasks. The selection follows the selected
// task when it is still listed.
func (d *TaskDrawer) SetTasks(running, recent []tasks.Task) {
	prev, hadPrev := d.Selected()
	d.running = running
	d.recent = recent
	if hadPrev && d.SelectTask(prev.ID) {
		return
	}
	d.clampSelection()
}

// SetFocused sets the task highlighted by "view task"; empty clears it.
func (d *TaskDrawer) SetFocused(taskID string) {
	d.focused = taskID
}

// SetNow sets the time elapsed durations are measured against.
func (d *TaskDrawer) SetNow(now time.Time) {
	d.now = now
}

// SetSpinner sets the frame drawn next to running tasks.
func (d *TaskDrawer) SetSpinner(frame string) {
	d.spinner = frame
}

// =============================================================================
// SELECTION
// =============================================================================

func (d *TaskDrawer) items() []tasks.Task {
	if !d.showRecent {
		return d.running
	}
	out := make([]tasks.Task, 0, len(d.running)+len(d.recent))
	out = append(out, d.running...)
	return append(out, d.recent...)
}

func (d *TaskDrawer) clampSelection() {
	n := len(d.items())
	if d.selected >= n {
		d.selected = n - 1
	}
	if d.selected < 0 {
		d.selected = 0
	}
}

// MoveUp moves the selection up one row.
func (d *TaskDrawer) MoveUp() {
	if d.selected > 0 {
		d.selected--
	}
}

// MoveDown moves the selection down one row.
func (d *TaskDrawer) MoveDown() {
	if d.selected < len(d.items())-1 {
		d.selected++
	}
}

// Selected returns the selected task.
func (d *TaskDrawer) Selected() (tasks.Task, bool) {
	items := d.items()
	if d.selected < 0 || d.selected >= len(items) {
		return tasks.Task{}, false
	}
	return items[d.selected], true
}

// SelectTask moves the selection to taskID and reports whether it is listed.
func (d *TaskDrawer) SelectTask(taskID string) bool {
	for i, t := range d.items() {
		if t.ID == taskID {
			d.selected = i
			return true
		}
	}
	return false
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the drawer.
func (d *TaskDrawer) View() string {
	inner := d.width - 4 // border + padding
	if inner < 16 {
		inner = 16
	}

	var b strings.Builder
	b.WriteString(d.theme.DrawerTitle.Render("Tasks"))
	b.WriteString("\n")

	b.WriteString(d.theme.DrawerSection.Render(fmt.Sprintf("Running (%d)", len(d.running))))
	b.WriteString("\n")
	if len(d.running) == 0 {
		b.WriteString(d.theme.DrawerEmpty.Render("No background tasks"))
		b.WriteString("\n")
	}
	for i, t := range d.running {
		b.WriteString(d.renderTask(t, i == d.selected, inner))
		b.WriteString("\n")
	}

	if d.showRecent {
		b.WriteString(d.theme.DrawerSection.Render("Recent"))
		b.WriteString("\n")
		if len(d.recent) == 0 {
			b.WriteString(d.theme.DrawerEmpty.Render("Nothing finished yet"))
			b.WriteString("\n")
		}
		for i, t := range d.recent {
			b.WriteString(d.renderTask(t, len(d.running)+i == d.selected, inner))
			b.WriteString("\n")
		}
	}

	box := d.theme.DrawerBox.Width(d.width - 2)
	if d.height > 2 {
		box = box.MaxHeight(d.height)
	}
	return box.Render(strings.TrimRight(b.String(), "\n"))
}

// renderTask renders one task as a title line and a detail line.
func (d *TaskDrawer) renderTask(t tasks.Task, selected bool, width int) string {
	if t.ID == d.focused {
		width-- // focus border
	}
	icon := styles.StatusIndicator(t.Status)
	if t.Status == tasks.StatusRunning && d.spinner != "" {
		icon = "[" + d.spinner + "]"
	}
	iconStyle := lipgloss.NewStyle().Foreground(styles.ToneColor(tasks.StatusTone(t.Status)))

	elapsed := tasks.Elapsed(t.StartedAt, t.EndedAt, d.now)
	titleWidth := width - util.StringWidth(icon) - util.StringWidth(elapsed) - 2
	title := util.PadRight(util.TruncateWidth(t.Title, titleWidth), titleWidth)

	head := iconStyle.Render(icon) + " " + title + " " + d.theme.TaskElapsed.Render(elapsed)
	detail := "    " + d.renderDetail(t, width-4)

	row := d.theme.TaskRow
	switch {
	case t.ID == d.focused:
		row = d.theme.TaskFocused
	case selected:
		row = d.theme.TaskSelected
	}
	return row.Render(head + "\n" + detail)
}

func (d *TaskDrawer) renderDetail(t tasks.Task, width int) string {
	switch t.Status {
	case tasks.StatusError:
		msg := t.Error
		if t.Retryable {
			msg += "  [r] retry"
		}
		return d.theme.TaskError.Render(util.TruncateWidth(msg, width))

	case tasks.StatusRunning:
		if t.Progress == nil {
			return d.theme.TaskPhase.Render(util.TruncateWidth(t.Phase, width))
		}
		pct := fmt.Sprintf(" %3d%%", *t.Progress)
		barWidth := width / 3
		phaseWidth := width - barWidth - len(pct) - 1
		phase := util.PadRight(util.TruncateWidth(t.Phase, phaseWidth), phaseWidth)
		bar := lipgloss.NewStyle().Foreground(styles.Cyan).Render(progressBar(barWidth, *t.Progress))
		return d.theme.TaskPhase.Render(phase) + " " + bar + pct

	default:
		return d.theme.TaskPhase.Render(util.TruncateWidth(t.Phase, width))
	}
}

// progressBar renders an ASCII bar of width cells filled to pct.
func progressBar(width, pct int) string {
	if width < 3 {
		return ""
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	cells := width - 2
	filled := cells * pct / 100
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", cells-filled) + "]"
}
