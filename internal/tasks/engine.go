// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// =============================================================================
// SUBMISSION TYPES
// =============================================================================

// Controls is the narrow handle a task body uses to report progress. Updates
// are ignored unless the task is running.
type Controls interface {
	// SetPhase updates the phase label and keeps any reported progress.
	SetPhase(phase string)
	// SetProgress updates the phase label and a 0-100 percentage.
	SetProgress(phase string, progress int)
}

// Body is the asynchronous work of a task.
type Body func(ctx context.Context, c Controls) (any, error)

// Options describe one submission. The same Options are reused verbatim
// when a failed task is retried.
type Options struct {
	Kind         Kind
	Title        string
	Target       Target
	Origin       string
	Lane         Lane
	InitialPhase string
	Body         Body

	// SuccessMessage replaces the default "<title> completed" toast text.
	SuccessMessage string
	// ErrorMessage replaces the failure message on the record and toast.
	ErrorMessage string
}

// retryEntry is the stored recipe for re-submitting a failed task.
type retryEntry struct {
	opts Options
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine admits, runs, tracks and retries background tasks. All exported
// methods are safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	clock  Clock
	logger *zap.Logger

	queue   *admission
	store   *store
	retries map[string]retryEntry
	toasts  *toastList
	drawer  drawer
	seq     uint64

	// wg tracks bodies that have been admitted and not yet settled
	wg sync.WaitGroup

	changes chan struct{}
}

// Option configures an Engine.
type Option func(*config)

type config struct {
	heavyLimit  int
	recentLimit int
	clock       Clock
	logger      *zap.Logger
}

// WithHeavyLimit sets how many heavy tasks may run at once. Values below 1
// fall back to DefaultHeavyLimit.
func WithHeavyLimit(n int) Option {
	return func(c *config) { c.heavyLimit = n }
}

// WithRecentLimit sets the length of the recent view.
func WithRecentLimit(n int) Option {
	return func(c *config) { c.recentLimit = n }
}

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(c *config) { c.clock = clock }
}

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// New creates an engine.
func New(opts ...Option) *Engine {
	cfg := config{
		heavyLimit:  DefaultHeavyLimit,
		recentLimit: DefaultRecentLimit,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.clock == nil {
		cfg.clock = SystemClock{}
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	return &Engine{
		clock:   cfg.clock,
		logger:  cfg.logger.Named("tasks"),
		queue:   newAdmission(cfg.heavyLimit),
		store:   newStore(cfg.recentLimit),
		retries: make(map[string]retryEntry),
		toasts:  newToastList(MaxToasts),
		changes: make(chan struct{}, 1),
	}
}

// HeavyLimit returns the heavy-lane concurrency limit.
func (e *Engine) HeavyLimit() int {
	return e.queue.limit
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Submit records a queued task, registers its retry entry and hands it to
// admission. Light tasks are running by the time Submit returns.
func (e *Engine) Submit(opts Options) *Future {
	id := uuid.New().String()
	f := newFuture(id)

	phase := opts.InitialPhase
	if phase == "" {
		phase = "Queued"
	}

	e.mu.Lock()
	e.seq++
	t := &Task{
		ID:        id,
		Kind:      opts.Kind,
		Status:    StatusQueued,
		Title:     opts.Title,
		Phase:     phase,
		Lane:      opts.Lane,
		Origin:    opts.Origin,
		Target:    opts.Target,
		CreatedAt: e.clock.Now(),
		seq:       e.seq,
	}
	e.store.add(t)
	e.retries[id] = retryEntry{opts: opts}
	e.logger.Debug("task queued",
		zap.String("task_id", id),
		zap.String("kind", string(opts.Kind)),
		zap.Stringer("lane", opts.Lane),
		zap.String("origin", opts.Origin))
	e.queue.enqueue(queueItem{
		lane: opts.Lane,
		run:  func() { e.start(t, opts, f) },
	})
	e.mu.Unlock()

	e.changed()
	return f
}

// start moves a record to running and launches its body. Called by
// admission with e.mu held.
func (e *Engine) start(t *Task, opts Options, f *Future) {
	if !validTransition(t.Status, StatusRunning) {
		e.logger.Error("invalid task transition",
			zap.String("task_id", t.ID),
			zap.Stringer("from", t.Status),
			zap.Stringer("to", StatusRunning))
		return
	}
	t.Status = StatusRunning
	t.StartedAt = e.clock.Now()
	t.Progress = nil
	t.Error = ""
	t.Retryable = false

	e.logger.Debug("task started", zap.String("task_id", t.ID), zap.Stringer("lane", t.Lane))

	e.wg.Add(1)
	go e.execute(t, opts, f)
}

func (e *Engine) execute(t *Task, opts Options, f *Future) {
	defer e.wg.Done()
	value, err := e.invoke(t.ID, opts)
	e.settle(t, opts, f, value, err)
}

// invoke runs the body, turning a panic into a failure.
func (e *Engine) invoke(id string, opts Options) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = normalizeFailure(id, opts.Kind, r)
		}
	}()
	if opts.Body == nil {
		return nil, ErrNoBody
	}
	return opts.Body(context.Background(), &controls{engine: e, taskID: id})
}

// settle is the single completion path of a task. It is the only place a
// heavy slot is released.
func (e *Engine) settle(t *Task, opts Options, f *Future, value any, bodyErr error) {
	var failure *TaskError
	if bodyErr != nil {
		failure = normalizeFailure(t.ID, opts.Kind, bodyErr)
	}

	e.mu.Lock()
	now := e.clock.Now()
	if failure == nil {
		t.Status = StatusSuccess
		t.Phase = "Done"
		done := 100
		t.Progress = &done
		t.EndedAt = now
		delete(e.retries, t.ID)

		msg := opts.SuccessMessage
		if msg == "" {
			msg = t.Title + " completed"
		}
		e.pushToast(t.ID, ToastSuccess, msg, now)
	} else {
		t.Status = StatusError
		t.Phase = "Failed"
		t.EndedAt = now
		t.Error = opts.ErrorMessage
		if t.Error == "" {
			t.Error = failure.Message
		}
		_, t.Retryable = e.retries[t.ID]
		e.drawer.open = true
		e.pushToast(t.ID, ToastError, t.Error, now)
	}

	for _, old := range e.store.settle(t) {
		delete(e.retries, old.ID)
	}
	if t.Lane == LaneHeavy {
		e.queue.release()
	}
	e.mu.Unlock()

	fields := []zap.Field{
		zap.String("task_id", t.ID),
		zap.String("kind", string(t.Kind)),
		zap.Stringer("lane", t.Lane),
		zap.Duration("duration", t.EndedAt.Sub(t.StartedAt)),
	}
	if failure != nil {
		e.logger.Warn("task failed", append(fields, zap.Error(failure.Err))...)
	} else {
		e.logger.Info("task completed", fields...)
	}

	e.changed()
	if failure != nil {
		f.resolve(nil, failure)
	} else {
		f.resolve(value, nil)
	}
}

// =============================================================================
// RETRY
// =============================================================================

// Retry re-submits the original options of a failed task as a new task with
// a new id. The failed record stays in history and loses its retry entry.
// It returns false, doing nothing, when taskID has no retry entry or has not
// failed.
func (e *Engine) Retry(taskID string) (*Future, bool) {
	e.mu.Lock()
	entry, ok := e.retries[taskID]
	t := e.store.get(taskID)
	if !ok || t == nil || t.Status != StatusError {
		e.mu.Unlock()
		return nil, false
	}
	delete(e.retries, taskID)
	t.Retryable = false
	e.mu.Unlock()

	f := e.Submit(entry.opts)
	e.logger.Info("task retried", zap.String("task_id", taskID), zap.String("new_task_id", f.TaskID()))
	return f, true
}

// =============================================================================
// TOASTS
// =============================================================================

// pushToast must be called with e.mu held.
func (e *Engine) pushToast(taskID string, kind ToastKind, message string, now time.Time) {
	entry := &toastEntry{toast: Toast{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
	}}
	for _, old := range e.toasts.push(entry) {
		e.logger.Debug("toast evicted", zap.String("toast_id", old.ID))
	}
	id := entry.toast.ID
	entry.timer = e.clock.AfterFunc(ToastTTL(kind), func() {
		e.DismissToast(id)
	})
}

// DismissToast removes a toast and cancels its timer. Unknown or already
// dismissed ids are ignored.
func (e *Engine) DismissToast(toastID string) bool {
	e.mu.Lock()
	removed := e.toasts.remove(toastID)
	e.mu.Unlock()
	if removed {
		e.changed()
	}
	return removed
}

// Toasts returns the visible toasts, oldest first.
func (e *Engine) Toasts() []Toast {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.toasts.snapshot()
}

// =============================================================================
// VIEWS
// =============================================================================

// Task returns a snapshot of one record.
func (e *Engine) Task(id string) (Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.store.get(id)
	if t == nil {
		return Task{}, false
	}
	return t.clone(), true
}

// Running returns queued and running tasks, newest first.
func (e *Engine) Running() []Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.running()
}

// Recent returns settled tasks, most recently ended first.
func (e *Engine) Recent() []Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.recent()
}

// RunningCount returns the number of queued and running tasks.
func (e *Engine) RunningCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.store.active)
}

// Stats is a point-in-time view of the admission lanes.
type Stats struct {
	Active       int
	HeavyRunning int
	HeavyWaiting int
	HeavyLimit   int
}

// Stats returns lane occupancy.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Active:       len(e.store.active),
		HeavyRunning: e.queue.runningHeavy,
		HeavyWaiting: e.queue.waiting(),
		HeavyLimit:   e.queue.limit,
	}
}

// Summary returns a formatted summary of the engine.
func (e *Engine) Summary() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	queued, running, failed := 0, 0, 0
	for _, t := range e.store.active {
		if t.Status == StatusQueued {
			queued++
		} else {
			running++
		}
	}
	for _, t := range e.store.history {
		if t.Status == StatusError {
			failed++
		}
	}
	return fmt.Sprintf("Running: %d | Queued: %d | Finished: %d | Failed: %d",
		running, queued, len(e.store.history), failed)
}

// Changes returns a channel that receives a value after state changes.
// Signals are coalesced; readers should re-read the views on receipt.
func (e *Engine) Changes() <-chan struct{} {
	return e.changes
}

func (e *Engine) changed() {
	select {
	case e.changes <- struct{}{}:
	default:
	}
}

// Wait blocks until every admitted task has settled or ctx is done. Heavy
// tasks still waiting are admitted as slots free up and are waited for too.
func (e *Engine) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================
// CONTROLS
// =============================================================================

type controls struct {
	engine *Engine
	taskID string
}

func (c *controls) SetPhase(phase string) {
	c.engine.setPhase(c.taskID, phase, nil)
}

func (c *controls) SetProgress(phase string, progress int) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	c.engine.setPhase(c.taskID, phase, &progress)
}

func (e *Engine) setPhase(id, phase string, progress *int) {
	e.mu.Lock()
	t, ok := e.store.active[id]
	if !ok || t.Status != StatusRunning {
		e.mu.Unlock()
		return
	}
	t.Phase = phase
	if progress != nil {
		t.Progress = progress
	}
	e.mu.Unlock()
	e.changed()
}
