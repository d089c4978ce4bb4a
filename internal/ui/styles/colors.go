// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for workdeck TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/workdeck/internal/tasks"
)

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Purple - Primary accent, selections
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan - Running tasks, info
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - Success states
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - Errors, failed tasks
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Focus highlight
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE AND TEXT COLORS
// =============================================================================

// SurfaceDim - Toast and status bar background
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// SelectionBg - Selected drawer row
var SelectionBg = lipgloss.AdaptiveColor{Light: "#BFDBFE", Dark: "#1E3A5F"}

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - Labels, phases
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// TextMuted - Hints, elapsed times
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// =============================================================================
// TONES
// =============================================================================

// ToneColor maps a task tone to its color.
func ToneColor(tone tasks.Tone) lipgloss.AdaptiveColor {
	switch tone {
	case tasks.ToneAccent:
		return Cyan
	case tasks.ToneSuccess:
		return Emerald
	case tasks.ToneError:
		return Rose
	default:
		return TextMuted
	}
}

// =============================================================================
// ACCESSIBILITY: Shapes for colorblind users
// =============================================================================

// StatusIndicatorSet contains text indicators for task states.
type StatusIndicatorSet struct {
	Queued  string
	Running string
	Success string
	Error   string
}

// StatusIndicators are ASCII-only so they render on every terminal.
var StatusIndicators = StatusIndicatorSet{
	Queued:  "[ ]",
	Running: "[*]",
	Success: "[OK]",
	Error:   "[X]",
}

// StatusIndicator returns the indicator for a task status.
func StatusIndicator(s tasks.Status) string {
	switch s {
	case tasks.StatusRunning:
		return StatusIndicators.Running
	case tasks.StatusSuccess:
		return StatusIndicators.Success
	case tasks.StatusError:
		return StatusIndicators.Error
	default:
		return StatusIndicators.Queued
	}
}

// RenderStatus renders a status label with its indicator in its tone color.
func RenderStatus(s tasks.Status) string {
	style := lipgloss.NewStyle().
		Foreground(ToneColor(tasks.StatusTone(s))).
		Bold(s == tasks.StatusError)
	return style.Render(StatusIndicator(s) + " " + tasks.StatusLabel(s))
}

// RenderError renders an error message with X mark indicator.
func RenderError(message string) string {
	style := lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)
	return style.Render(StatusIndicators.Error + " " + message)
}

// RenderSuccess renders a success message with checkmark indicator.
func RenderSuccess(message string) string {
	style := lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)
	return style.Render(StatusIndicators.Success + " " + message)
}
