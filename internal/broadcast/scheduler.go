package broadcast

import (
	"sync"
	"time"
)

// TimerScheduler fires callbacks once at a wall-clock instant. Instants in
// the past fire immediately. Pending timers can be stopped in bulk on
// shutdown; callbacks already started are not interrupted.
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[*time.Timer]struct{}
	closed bool
}

// NewTimerScheduler builds an empty scheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[*time.Timer]struct{})}
}

// ScheduleAt arranges for run to be called once at t on its own goroutine.
func (s *TimerScheduler) ScheduleAt(t time.Time, run func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(time.Until(t), func() {
		s.mu.Lock()
		delete(s.timers, timer)
		s.mu.Unlock()
		run()
	})
	s.timers[timer] = struct{}{}
	s.mu.Unlock()
}

// Stop drops all pending timers and rejects further scheduling.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for timer := range s.timers {
		timer.Stop()
	}
	s.timers = make(map[*time.Timer]struct{})
}
