package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"actuator-quiz/internal/app"
	"actuator-quiz/internal/domain"
	"actuator-quiz/internal/infra/memory"
	"go.uber.org/zap"
)

// completedSession builds a finished session whose answers earn points[i].
func completedSession(t *testing.T, id, userID string, points []int, ms int64, end time.Time) domain.GameSession {
	t.Helper()
	s := *fixedSession(t, end.Add(-time.Duration(ms)*time.Millisecond))
	s.ID, s.UserID = id, userID
	total, final := 0, 0
	for i, p := range points {
		s.Answers = append(s.Answers, domain.UserAnswer{
			QuestionID:   s.Questions[i].ID,
			IsCorrect:    p > 0,
			Difficulty:   s.Questions[i].Difficulty,
			PointsEarned: p,
			Timestamp:    end,
		})
		if p > 0 {
			total++
		}
		final += p
	}
	s.CurrentQuestionIndex = len(s.Questions) - 1
	s.EndTime, s.TotalScore, s.FinalScore, s.CompletionTimeMs = &end, &total, &final, &ms
	return s
}

type rankFailStore struct {
	*memory.ResultStore
}

func (rankFailStore) RankOf(context.Context, string, time.Time, time.Time) (int, error) {
	return 0, errors.New("ranking query timed out")
}

func TestSubmitScoreRanksByScoreThenTime(t *testing.T) {
	clock := newFakeClock()
	ranker := app.NewRanker(memory.NewResultStore(), zap.NewNop(), app.WithRankerClock(clock.Now))
	ctx := context.Background()

	players := []struct {
		id, name string
		points   []int
		ms       int64
	}{
		{"ada", "Ada", []int{30, 20, 20, 10, 0}, 1000},
		{"bo", "Bo", []int{30, 20, 20, 20, 5}, 2000},
		{"cy", "Cy", []int{30, 20, 20, 20, 5}, 1500},
	}
	ranks := map[string]int{}
	for _, p := range players {
		clock.Advance(time.Minute)
		session := completedSession(t, "s-"+p.id, p.id, p.points, p.ms, clock.Now())
		entry, err := ranker.SubmitScore(ctx, session, identity(p.id, p.name))
		if err != nil {
			t.Fatalf("submit %s: %v", p.id, err)
		}
		ranks[p.id] = entry.Rank
	}
	if ranks["ada"] != 1 || ranks["bo"] != 1 || ranks["cy"] != 1 {
		t.Fatalf("each new leader should rank first on submit, got %v", ranks)
	}

	entries, err := ranker.GetTopEntries(ctx, 10)
	if err != nil {
		t.Fatalf("top entries: %v", err)
	}
	want := []string{"Cy", "Bo", "Ada"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, name := range want {
		if entries[i].PlayerName != name || entries[i].Rank != i+1 {
			t.Fatalf("position %d: expected %s, got %+v", i+1, name, entries[i])
		}
	}
	if entries[0].FinalScore != 95 || entries[2].Score != 4 {
		t.Fatalf("unexpected entry totals: %+v", entries)
	}
}

func TestSubmitScoreReportsRankAmongToday(t *testing.T) {
	clock := newFakeClock()
	ranker := app.NewRanker(memory.NewResultStore(), zap.NewNop(), app.WithRankerClock(clock.Now))
	ctx := context.Background()

	if _, err := ranker.SubmitScore(ctx, completedSession(t, "s1", "u1", []int{30, 20, 20, 20, 10}, 5000, clock.Now()), identity("u1", "Ada")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	entry, err := ranker.SubmitScore(ctx, completedSession(t, "s2", "u2", []int{10, 0, 0, 0, 0}, 5000, clock.Now()), identity("u2", "Bo"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if entry.Rank != 2 || entry.PlayerName != "Bo" || entry.Company != "Acme Motion" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestSubmitScoreDegradesWhenRankingFails(t *testing.T) {
	clock := newFakeClock()
	store := rankFailStore{memory.NewResultStore()}
	ranker := app.NewRanker(store, zap.NewNop(), app.WithRankerClock(clock.Now))

	entry, err := ranker.SubmitScore(context.Background(), completedSession(t, "s1", "u1", []int{10, 20, 30, 20, 20}, 8000, clock.Now()), identity("u1", "Ada"))
	if err != nil {
		t.Fatalf("expected persisted result despite rank failure, got %v", err)
	}
	if entry.Rank != 0 || entry.FinalScore != 100 {
		t.Fatalf("expected unranked entry, got %+v", entry)
	}
}

func TestSubmitScoreRejects(t *testing.T) {
	clock := newFakeClock()
	ranker := app.NewRanker(memory.NewResultStore(), zap.NewNop(), app.WithRankerClock(clock.Now))
	ctx := context.Background()
	session := completedSession(t, "s1", "u1", []int{10, 0, 0, 0, 0}, 3000, clock.Now())

	if _, err := ranker.SubmitScore(ctx, session, identity("u1", "Ada")); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := ranker.SubmitScore(ctx, session, identity("u1", "Ada"))
	if !app.IsDuplicate(err) {
		t.Fatalf("expected duplicate result, got %v", err)
	}

	open := *fixedSession(t, clock.Now())
	if _, err := ranker.SubmitScore(ctx, open, identity("u1", "Ada")); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state for an open session, got %v", err)
	}

	other := completedSession(t, "s2", "u1", []int{10, 0, 0, 0, 0}, 3000, clock.Now())
	if _, err := ranker.SubmitScore(ctx, other, identity("u2", "Bo")); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for a foreign session, got %v", err)
	}

	bad := identity("u1", "Ada")
	bad.Email = "nope"
	if _, err := ranker.SubmitScore(ctx, other, bad); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for a bad identity, got %v", err)
	}
}

func TestGetTopEntriesFallsBackToMaskedWindow(t *testing.T) {
	clock := newFakeClock()
	store := memory.NewResultStore()
	ranker := app.NewRanker(store, zap.NewNop(), app.WithRankerClock(clock.Now), app.WithFallbackWindow(7*24*time.Hour))
	ctx := context.Background()

	clock.Advance(-10 * 24 * time.Hour)
	if _, err := ranker.SubmitScore(ctx, completedSession(t, "old", "u0", []int{30, 30, 30, 0, 0}, 4000, clock.Now()), identity("u0", "Ancient")); err != nil {
		t.Fatalf("submit old: %v", err)
	}
	clock.Advance(8 * 24 * time.Hour)
	if _, err := ranker.SubmitScore(ctx, completedSession(t, "recent", "u1", []int{10, 20, 0, 0, 0}, 4000, clock.Now()), identity("u1", "Alice")); err != nil {
		t.Fatalf("submit recent: %v", err)
	}
	clock.Advance(2 * 24 * time.Hour)

	entries, err := ranker.GetTopEntries(ctx, 10)
	if err != nil {
		t.Fatalf("top entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the in-window result, got %+v", entries)
	}
	if entries[0].PlayerName != "A***e" || entries[0].Rank != 1 {
		t.Fatalf("expected masked fallback entry, got %+v", entries[0])
	}
}

func TestGetTopEntriesDefaultLimit(t *testing.T) {
	clock := newFakeClock()
	ranker := app.NewRanker(memory.NewResultStore(), zap.NewNop(), app.WithRankerClock(clock.Now))
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("u%02d", i)
		session := completedSession(t, "s"+id, id, []int{10, 0, 0, 0, 0}, int64(1000+i), clock.Now())
		if _, err := ranker.SubmitScore(ctx, session, identity(id, "Player "+id)); err != nil {
			t.Fatalf("submit %s: %v", id, err)
		}
	}
	entries, err := ranker.GetTopEntries(ctx, 0)
	if err != nil {
		t.Fatalf("top entries: %v", err)
	}
	if len(entries) != app.DefaultLeaderboardLimit {
		t.Fatalf("expected %d entries, got %d", app.DefaultLeaderboardLimit, len(entries))
	}
	if entries[0].PlayerName != "Player u00" {
		t.Fatalf("expected fastest player first, got %s", entries[0].PlayerName)
	}
}
