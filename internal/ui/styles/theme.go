// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for workdeck TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER AND STATUS BAR
	// ==========================================================================

	Header       lipgloss.Style
	HeaderBrand  lipgloss.Style
	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// TASK DRAWER
	// ==========================================================================

	DrawerBox     lipgloss.Style
	DrawerTitle   lipgloss.Style
	DrawerSection lipgloss.Style
	DrawerEmpty   lipgloss.Style
	TaskRow       lipgloss.Style
	TaskSelected  lipgloss.Style
	TaskFocused   lipgloss.Style
	TaskPhase     lipgloss.Style
	TaskElapsed   lipgloss.Style
	TaskError     lipgloss.Style
	Spinner       lipgloss.Style

	// ==========================================================================
	// TOASTS
	// ==========================================================================

	Toast     lipgloss.Style
	ToastHint lipgloss.Style

	// ==========================================================================
	// PROJECT LIST
	// ==========================================================================

	ProjectName lipgloss.Style
	ProjectPath lipgloss.Style
	Workspace   lipgloss.Style
	RowCursor   lipgloss.Style

	// ==========================================================================
	// PROMPT
	// ==========================================================================

	Prompt lipgloss.Style
	Notice lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Drawer
	t.DrawerBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.DrawerTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.DrawerSection = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary).
		MarginTop(1)

	t.DrawerEmpty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.TaskRow = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.TaskSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg)

	t.TaskFocused = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(Amber)

	t.TaskPhase = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.TaskElapsed = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.TaskError = lipgloss.NewStyle().
		Foreground(Rose)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Cyan)

	// Toasts
	t.Toast = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 2)

	t.ToastHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Projects
	t.ProjectName = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.ProjectPath = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Workspace = lipgloss.NewStyle().
		Foreground(TextSecondary).
		PaddingLeft(2)

	t.RowCursor = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	// Prompt
	t.Prompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Notice = lipgloss.NewStyle().
		Foreground(Rose)
}
