package redis

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"actuator-quiz/internal/app"
	"actuator-quiz/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Trackers own countdown timers, so they stay in a local map; requests
//     for a session must reach the instance that started it.
//   - Every change writes a JSON snapshot to Redis with the session TTL. The
//     snapshot key doubles as the liveness marker: once it expires the local
//     tracker is dropped by the next Get or Sweep.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Tracker
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Tracker),
	}
}

func (s *SessionStore) Put(ctx context.Context, t *app.Tracker) error {
	if err := s.writeSnapshot(ctx, t); err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[t.ID()] = t
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*app.Tracker, error) {
	s.mu.RLock()
	t, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	n, err := s.client.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return nil, domain.Persistence("check session", err)
	}
	if n == 0 {
		s.drop(id)
		return nil, domain.ErrSessionNotFound
	}
	return t, nil
}

func (s *SessionStore) Sync(ctx context.Context, t *app.Tracker) error {
	return s.writeSnapshot(ctx, t)
}

// Snapshot reads the stored copy of a session, from any instance.
func (s *SessionStore) Snapshot(ctx context.Context, id string) (domain.GameSession, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return domain.GameSession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.GameSession{}, domain.Persistence("read session", err)
	}
	var snap domain.GameSession
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.GameSession{}, domain.Persistence("decode session", err)
	}
	return snap, nil
}

// Sweep drops local trackers whose snapshot key has expired and stops their
// countdowns. It returns the number of trackers removed.
func (s *SessionStore) Sweep(ctx context.Context) (int, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	if len(ids) == 0 {
		return 0, nil
	}

	pipe := s.client.Pipeline()
	exists := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		exists[i] = pipe.Exists(ctx, s.key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, domain.Persistence("check sessions", err)
	}

	removed := 0
	for i, id := range ids {
		if exists[i].Val() == 0 {
			s.drop(id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of locally held trackers.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) writeSnapshot(ctx context.Context, t *app.Tracker) error {
	raw, err := json.Marshal(t.Snapshot())
	if err != nil {
		return domain.Persistence("encode session", err)
	}
	if err := s.client.Set(ctx, s.key(t.ID()), raw, s.ttl).Err(); err != nil {
		return domain.Persistence("write session", err)
	}
	return nil
}

func (s *SessionStore) drop(id string) {
	s.mu.Lock()
	t, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		t.Stop()
	}
}

func (s *SessionStore) key(id string) string {
	return "actuator:session:" + id
}
