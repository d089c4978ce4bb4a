// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the workdeck TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Purple - Primary accent, selections and the drawer border
  - Cyan - Running tasks and informational text
  - Emerald - Successful tasks and success toasts
  - Rose - Failed tasks and error toasts
  - Amber - The focus highlight after "view task"

Task tones map to colors through ToneColor, and every status also has an
ASCII indicator (StatusIndicators) so state never depends on color alone.

# Theme (theme.go)

Theme bundles the lipgloss styles of the drawer, toasts and status bar:

	theme := styles.NewTheme()
	title := theme.DrawerTitle.Render("Tasks")
*/
package styles
