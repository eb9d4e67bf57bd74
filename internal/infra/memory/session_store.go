package memory

import (
	"context"
	"sync"
	"time"

	"actuator-quiz/internal/app"
	"actuator-quiz/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Sessions expire ttl after their last change.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.RWMutex
	sessions map[string]*storedSession
}

type storedSession struct {
	tracker   *app.Tracker
	expiresAt time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]*storedSession),
	}
}

func (s *SessionStore) Put(_ context.Context, t *app.Tracker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[t.ID()] = &storedSession{tracker: t, expiresAt: s.expiry()}
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*app.Tracker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.sessions[id]
	if !ok || (s.ttl > 0 && !stored.expiresAt.After(s.clock())) {
		return nil, domain.ErrSessionNotFound
	}
	return stored.tracker, nil
}

func (s *SessionStore) Sync(_ context.Context, t *app.Tracker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.sessions[t.ID()]; ok {
		stored.expiresAt = s.expiry()
	}
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and stops their countdowns. It returns the
// number of sessions removed.
func (s *SessionStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.clock()
	s.mu.Lock()
	var expired []*app.Tracker
	for id, stored := range s.sessions {
		if !stored.expiresAt.After(now) {
			expired = append(expired, stored.tracker)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
	for _, t := range expired {
		t.Stop()
	}
	return len(expired)
}

func (s *SessionStore) expiry() time.Time {
	return s.clock().Add(s.ttl)
}
