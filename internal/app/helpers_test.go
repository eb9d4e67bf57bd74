package app_test

import (
	"sync"
	"time"

	"actuator-quiz/internal/app"
	"actuator-quiz/internal/domain"
)

// fakeClock is a settable time source shared by engine, tracker and ranker.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeTimer struct {
	mu      sync.Mutex
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (t *fakeTimer) active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped
}

// fakeScheduler records countdowns instead of running them.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) After(d time.Duration, f func()) app.Stopper {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) last() *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return nil
	}
	return s.timers[len(s.timers)-1]
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// fireLatest runs the newest countdown as if it had expired.
func (s *fakeScheduler) fireLatest() {
	t := s.last()
	if t == nil {
		return
	}
	t.Stop()
	t.f()
}

func correctAnswer(q domain.Question) string {
	if full, ok := domain.DefaultBank().Lookup(q.ID); ok {
		return full.CorrectAnswer
	}
	return q.CorrectAnswer
}

func wrongAnswer(q domain.Question) string {
	right := correctAnswer(q)
	if q.Type == domain.TypeTrueFalse {
		if right == domain.AnswerTrue {
			return domain.AnswerFalse
		}
		return domain.AnswerTrue
	}
	for i := range q.Options {
		if letter := string(rune('A' + i)); letter != right {
			return letter
		}
	}
	return ""
}

func identity(id, name string) domain.UserIdentity {
	return domain.UserIdentity{ID: id, Name: name, Company: "Acme Motion", Email: id + "@example.com"}
}
