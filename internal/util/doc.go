// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across workdeck.
//
//   - TruncateWidth, PadRight, StringWidth: terminal-width aware string
//     fitting for the task drawer and toasts
//   - AtomicWriteFile: crash-safe file writing with fsync, used when saving
//     the configuration
package util
