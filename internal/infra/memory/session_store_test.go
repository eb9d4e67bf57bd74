package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"actuator-quiz/internal/app"
	"actuator-quiz/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewSessionStore(time.Minute)
	store.clock = func() time.Time { return now }
	ctx := context.Background()

	tracker := newTracker("s1")
	if err := store.Put(ctx, tracker); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.Get(ctx, "s1")
	if err != nil || got != tracker {
		t.Fatalf("expected stored tracker, got %v %v", got, err)
	}

	now = now.Add(50 * time.Second)
	if err := store.Sync(ctx, tracker); err != nil {
		t.Fatalf("sync: %v", err)
	}
	now = now.Add(50 * time.Second)
	if _, err := store.Get(ctx, "s1"); err != nil {
		t.Fatalf("expected sync to extend expiry, got %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
	if n := store.Sweep(); n != 1 {
		t.Fatalf("expected one swept session, got %d", n)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store after sweep")
	}
}

func TestSessionStoreUnknown(t *testing.T) {
	store := NewSessionStore(time.Minute)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type staticChecker struct{}

func (staticChecker) CheckAnswer(domain.Question, string) (bool, error) { return true, nil }

func newTracker(id string) *app.Tracker {
	session := &domain.GameSession{
		ID:     id,
		UserID: "u1",
		Questions: []domain.Question{{
			ID: "q1", Type: domain.TypeTrueFalse, Difficulty: domain.DifficultyEasy,
			CorrectAnswer: domain.AnswerTrue, TimeLimitSeconds: 10,
		}},
		Answers:   []domain.UserAnswer{},
		StartTime: time.Now(),
	}
	return app.NewTracker(session, domain.UserIdentity{ID: "u1"}, staticChecker{}, domain.DefaultScoreTable())
}
