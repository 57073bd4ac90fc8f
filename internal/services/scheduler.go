package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ClearScheduler runs deferred cart clearing. Tasks fire once after their delay,
// can be cancelled while pending, and are run early by Flush on shutdown.
// Clearing is best effort: a task lost to a crash is never retried.
type ClearScheduler struct {
	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]*Task
	log     *zap.SugaredLogger
}

// Task is one scheduled function.
type Task struct {
	id        uint64
	scheduler *ClearScheduler
	timer     *time.Timer
	fn        func()
	once      sync.Once
}

// NewClearScheduler returns a scheduler with no pending tasks.
func NewClearScheduler(log *zap.SugaredLogger) *ClearScheduler {
	return &ClearScheduler{
		pending: map[uint64]*Task{},
		log:     log,
	}
}

// Schedule runs fn after delay.
func (s *ClearScheduler) Schedule(delay time.Duration, fn func()) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	t := &Task{id: s.nextID, scheduler: s, fn: fn}
	t.timer = time.AfterFunc(delay, t.run)
	s.pending[t.id] = t
	return t
}

func (s *ClearScheduler) forget(id uint64) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// Pending returns the number of tasks that have neither run nor been cancelled.
func (s *ClearScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush runs every pending task now, stopping early if ctx is done.
func (s *ClearScheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	tasks := make([]*Task, 0, len(s.pending))
	for _, t := range s.pending {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	if len(tasks) > 0 {
		s.log.Infof("ClearScheduler.Flush - Running %d pending tasks", len(tasks))
	}
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		t.timer.Stop()
		t.run()
	}
	return nil
}

func (t *Task) run() {
	t.once.Do(func() {
		t.scheduler.forget(t.id)
		t.fn()
	})
}

// Cancel stops the task if it has not run yet and reports whether it did.
func (t *Task) Cancel() bool {
	cancelled := false
	t.once.Do(func() {
		cancelled = true
	})
	if cancelled {
		t.timer.Stop()
		t.scheduler.forget(t.id)
	}
	return cancelled
}
