// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"fmt"
	"time"
)

// =============================================================================
// LIMITS
// =============================================================================

const (
	// DefaultHeavyLimit is the number of heavy tasks allowed to run at once.
	DefaultHeavyLimit = 2

	// DefaultRecentLimit is how many settled tasks the recent view shows.
	DefaultRecentLimit = 30

	// historyHeadroom is how many settled records are kept beyond the
	// recent limit before the oldest are dropped.
	historyHeadroom = 20

	// SuccessToastTTL is how long a success toast stays up.
	SuccessToastTTL = 5 * time.Second

	// ErrorToastTTL is how long an error toast stays up.
	ErrorToastTTL = 10 * time.Second

	// MaxToasts is the number of toasts visible at once.
	MaxToasts = 6

	// FocusTTL is how long a task stays focused after ViewTask.
	FocusTTL = 4 * time.Second
)

// =============================================================================
// DISPLAY POLICY
// =============================================================================

// Tone is the display tone a renderer maps to a color.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneAccent  Tone = "accent"
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
)

// Elapsed formats the run time of a task. It returns "waiting" if the task
// never started; otherwise (endedAt, or now if unset) minus startedAt as
// "Ns" or "Mm Ss".
func Elapsed(startedAt, endedAt, now time.Time) string {
	if startedAt.IsZero() {
		return "waiting"
	}
	end := endedAt
	if end.IsZero() {
		end = now
	}
	secs := int(end.Sub(startedAt) / time.Second)
	if secs < 0 {
		secs = 0
	}
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}

// StatusLabel returns the label shown for a status.
func StatusLabel(s Status) string {
	switch s {
	case StatusQueued:
		return "Queued"
	case StatusRunning:
		return "Running"
	case StatusSuccess:
		return "Success"
	case StatusError:
		return "Failed"
	default:
		return string(s)
	}
}

// StatusTone returns the display tone for a status.
func StatusTone(s Status) Tone {
	switch s {
	case StatusRunning:
		return ToneAccent
	case StatusSuccess:
		return ToneSuccess
	case StatusError:
		return ToneError
	default:
		return ToneNeutral
	}
}

// ToastTTL returns how long a toast of the given kind stays visible.
func ToastTTL(kind ToastKind) time.Duration {
	if kind == ToastError {
		return ErrorToastTTL
	}
	return SuccessToastTTL
}
