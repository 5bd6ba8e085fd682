package worker

import (
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// ReplyScheduler owns the deferred tasks behind simulated counterpart
// replies. Each task is an explicit, individually cancellable timer; Stop
// cancels everything that has not fired, for process shutdown.
type ReplyScheduler struct {
	logger  *slog.Logger
	mu      sync.Mutex
	timers  map[string]*time.Timer
	nextSeq int
	stopped bool
}

// NewReplyScheduler creates an idle scheduler
func NewReplyScheduler(logger *slog.Logger) *ReplyScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReplyScheduler{
		logger: logger,
		timers: map[string]*time.Timer{},
	}
}

// Schedule runs fn after delay and returns a cancel function. Cancelling
// after the task fired is a no-op; a task that already started is allowed to
// run to completion.
func (s *ReplyScheduler) Schedule(delay time.Duration, fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return func() {}
	}

	s.nextSeq++
	id := s.nextSeq
	key := taskKey(id)

	timer := time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()
		fn()
	})
	s.timers[key] = timer

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t, ok := s.timers[key]; ok {
			t.Stop()
			delete(s.timers, key)
		}
	}
}

// Pending reports the number of tasks that have not fired yet
func (s *ReplyScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending task and rejects new ones
func (s *ReplyScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
	s.logger.Info("reply scheduler stopped")
}

func taskKey(id int) string {
	// Keys only need to be unique within the process lifetime.
	return "task-" + strconv.Itoa(id)
}
