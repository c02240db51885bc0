package notify

import (
	"context"
	"sync"
	"time"
)

// TimerScheduler is an in-process LocalScheduler backed by one time.Timer
// per pending request.
type TimerScheduler struct {
	mu      sync.Mutex
	pending map[string]*pendingTimer
	gen     uint64
	handler func(Delivery)

	// now is a seam for tests.
	now func() time.Time
}

// pendingTimer ties a timer to the registration that created it. The
// generation lets a fired callback recognize that its registration was
// replaced under the same ID while it waited for the mutex.
type pendingTimer struct {
	timer *time.Timer
	gen   uint64
}

var _ LocalScheduler = (*TimerScheduler)(nil)

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{
		pending: make(map[string]*pendingTimer),
		now:     time.Now,
	}
}

func (s *TimerScheduler) OnDelivered(fn func(Delivery)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = fn
}

// Schedule registers req, replacing any pending timer with the same ID.
func (s *TimerScheduler) Schedule(ctx context.Context, req Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delay := req.FireAt.Sub(s.now())
	if delay <= 0 {
		return ErrPastFireTime
	}

	if p, ok := s.pending[req.ID]; ok {
		p.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.pending[req.ID] = &pendingTimer{
		gen: gen,
		timer: time.AfterFunc(delay, func() {
			s.fire(req, gen)
		}),
	}
	return nil
}

// Cancel stops and removes the pending timer for id, if any.
func (s *TimerScheduler) Cancel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[id]; ok {
		p.timer.Stop()
		delete(s.pending, id)
	}
	return nil
}

// PendingIDs returns the ids of currently pending requests, primarily for
// inspection in the CLI and in tests.
func (s *TimerScheduler) PendingIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	return ids
}

// Close cancels all pending timers.
func (s *TimerScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, id)
	}
}

func (s *TimerScheduler) fire(req Request, gen uint64) {
	s.mu.Lock()
	// A timer that fired after Cancel removed it, or after Schedule
	// replaced it under the same ID, must not be delivered.
	if p, ok := s.pending[req.ID]; !ok || p.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.pending, req.ID)
	handler := s.handler
	now := s.now()
	s.mu.Unlock()

	if handler != nil {
		handler(Delivery{ID: req.ID, Title: req.Title, Body: req.Body, DeliveredAt: now})
	}
}
