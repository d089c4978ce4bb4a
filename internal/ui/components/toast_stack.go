// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/workdeck/internal/tasks"
	"github.com/jeranaias/workdeck/internal/ui/styles"
)

// TimeRemaining returns how long until toast auto-dismisses.
func TimeRemaining(toast tasks.Toast, now time.Time) time.Duration {
	remaining := tasks.ToastTTL(toast.Kind) - now.Sub(toast.CreatedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RenderToast renders a single toast notification.
func RenderToast(theme *styles.Theme, toast tasks.Toast, now time.Time, width int) string {
	maxWidth := 60
	if width > 0 && width-8 < maxWidth {
		maxWidth = width - 8
	}
	if maxWidth < 30 {
		maxWidth = 30
	}

	color := styles.Emerald
	icon := styles.StatusIndicators.Success
	if toast.Kind == tasks.ToastError {
		color = styles.Rose
		icon = styles.StatusIndicators.Error
	}

	iconStyle := lipgloss.NewStyle().
		Foreground(color).
		Bold(true)

	messageStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 8)

	content := iconStyle.Render(icon+" ") + messageStyle.Render(wrapToastText(toast.Message, maxWidth-10))

	hints := []string{"[x] Dismiss"}
	if toast.Kind == tasks.ToastError {
		hints = append([]string{"[enter] View"}, hints...)
	}
	if secs := int(TimeRemaining(toast, now).Seconds()); secs > 0 {
		hints = append(hints, strconv.Itoa(secs)+"s")
	}
	content += "\n" + theme.ToastHint.Render(strings.Join(hints, "  "))

	return theme.Toast.
		BorderForeground(color).
		MaxWidth(maxWidth).
		Render(content)
}

// RenderToastStack renders toasts stacked vertically, newest at the bottom,
// in the bottom-right corner of a width x height area.
func RenderToastStack(theme *styles.Theme, toasts []tasks.Toast, now time.Time, width, height int) string {
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, toast := range toasts {
		rendered = append(rendered, RenderToast(theme, toast, now, width))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)

	positioned := lipgloss.NewStyle().
		MarginRight(2).
		MarginBottom(1).
		Render(stack)

	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Right, lipgloss.Bottom, positioned)
	}
	return positioned
}

// wrapToastText performs simple word wrapping for toast messages.
func wrapToastText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var lines []string
	var line strings.Builder
	for _, word := range words {
		switch {
		case line.Len() == 0:
			line.WriteString(word)
		case line.Len()+1+len(word) <= maxWidth:
			line.WriteString(" ")
			line.WriteString(word)
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
