// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"sort"
)

// =============================================================================
// TASK STORE
// =============================================================================

// store keeps in-flight records apart from settled history so that trimming
// history can never drop a task that has yet to report its result.
type store struct {
	active  map[string]*Task
	history []*Task

	recentLimit int
}

func newStore(recentLimit int) *store {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &store{
		active:      make(map[string]*Task),
		recentLimit: recentLimit,
	}
}

func (s *store) add(t *Task) {
	s.active[t.ID] = t
}

// get looks a record up in either partition.
func (s *store) get(id string) *Task {
	if t, ok := s.active[id]; ok {
		return t
	}
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].ID == id {
			return s.history[i]
		}
	}
	return nil
}

// settle moves a terminal record into history and returns the old records
// trimmed from the front to keep history bounded.
func (s *store) settle(t *Task) []*Task {
	delete(s.active, t.ID)
	s.history = append(s.history, t)

	max := s.recentLimit + historyHeadroom
	if len(s.history) <= max {
		return nil
	}
	n := len(s.history) - max
	trimmed := make([]*Task, n)
	copy(trimmed, s.history[:n])
	for i := 0; i < n; i++ {
		s.history[i] = nil
	}
	s.history = s.history[n:]
	return trimmed
}

// running returns queued and running records, newest first.
func (s *store) running() []Task {
	out := make([]Task, 0, len(s.active))
	for _, t := range s.active {
		out = append(out, t.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].seq > out[j].seq
	})
	return out
}

// recent returns settled records, most recently ended first, truncated to
// the recent limit.
func (s *store) recent() []Task {
	out := make([]Task, 0, len(s.history))
	for i := len(s.history) - 1; i >= 0; i-- {
		out = append(out, s.history[i].clone())
	}
	// Stable so records settled at the same instant stay newest first.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].sortKey().After(out[j].sortKey())
	})
	if len(out) > s.recentLimit {
		out = out[:s.recentLimit]
	}
	return out
}
