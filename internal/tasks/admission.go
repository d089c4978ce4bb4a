// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"golang.org/x/sync/semaphore"
)

// =============================================================================
// ADMISSION QUEUE
// =============================================================================

// queueItem is one unit waiting for admission. run is invoked exactly once,
// synchronously, when the item is admitted and must not block.
type queueItem struct {
	lane Lane
	run  func()
}

// admission holds the two FIFO lanes. It is not safe for concurrent use;
// the engine serializes every call under its own mutex.
type admission struct {
	light []queueItem
	heavy []queueItem

	// slots bounds the heavy lane. TryAcquire on admission, Release on
	// settlement; releasing more than was acquired panics.
	slots        *semaphore.Weighted
	limit        int
	runningHeavy int
}

func newAdmission(limit int) *admission {
	if limit <= 0 {
		limit = DefaultHeavyLimit
	}
	return &admission{
		slots: semaphore.NewWeighted(int64(limit)),
		limit: limit,
	}
}

// enqueue appends the item to its lane and pumps.
func (a *admission) enqueue(item queueItem) {
	if item.lane == LaneHeavy {
		a.heavy = append(a.heavy, item)
	} else {
		a.light = append(a.light, item)
	}
	a.pump()
}

// release frees one heavy slot and pumps. It must be called exactly once
// per admitted heavy item, after that item settled.
func (a *admission) release() {
	a.runningHeavy--
	a.slots.Release(1)
	a.pump()
}

// pump drains the light lane, then admits heavy items while slots remain.
func (a *admission) pump() {
	for len(a.light) > 0 {
		item := a.light[0]
		a.light[0] = queueItem{}
		a.light = a.light[1:]
		item.run()
	}

	for len(a.heavy) > 0 && a.slots.TryAcquire(1) {
		item := a.heavy[0]
		a.heavy[0] = queueItem{}
		a.heavy = a.heavy[1:]
		a.runningHeavy++
		item.run()
	}
}

// waiting returns the number of heavy items not yet admitted.
func (a *admission) waiting() int {
	return len(a.heavy)
}
