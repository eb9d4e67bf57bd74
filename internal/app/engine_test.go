package app_test

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"actuator-quiz/internal/app"
	"actuator-quiz/internal/domain"
	"actuator-quiz/internal/infra/memory"
)

func newEngine(t *testing.T, bank domain.QuestionBank, opts ...app.EngineOption) *app.Engine {
	t.Helper()
	repo := memory.NewBankRepository(memory.NewStaticBankLoader(bank), time.Minute)
	opts = append([]app.EngineOption{app.WithRand(rand.New(rand.NewSource(7)))}, opts...)
	engine, err := app.NewEngine(repo, bank.ID, domain.DefaultBlueprint(), domain.DefaultScoreTable(), opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestGenerateGameSessionFollowsBlueprint(t *testing.T) {
	engine := newEngine(t, domain.DefaultBank())
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		session, err := engine.GenerateGameSession(ctx, "u1")
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(session.Questions) != domain.QuestionsPerSession {
			t.Fatalf("expected %d questions, got %d", domain.QuestionsPerSession, len(session.Questions))
		}
		seen := map[string]bool{}
		slots := map[domain.Slot]int{}
		total := 0
		for _, q := range session.Questions {
			if seen[q.ID] {
				t.Fatalf("question %s drawn twice", q.ID)
			}
			seen[q.ID] = true
			slots[domain.Slot{Type: q.Type, Difficulty: q.Difficulty}]++
			total += q.MaxPoints
		}
		want := map[domain.Slot]int{}
		for _, s := range domain.DefaultBlueprint() {
			want[s]++
		}
		for slot, n := range want {
			if slots[slot] != n {
				t.Fatalf("expected %d %v questions, got %d", n, slot, slots[slot])
			}
		}
		if total != domain.MaxFinalScore {
			t.Fatalf("expected max points %d, got %d", domain.MaxFinalScore, total)
		}
		if session.CurrentQuestionIndex != 0 || len(session.Answers) != 0 || session.Completed() {
			t.Fatalf("expected a fresh session, got %+v", session)
		}
	}
}

func TestGenerateGameSessionUsesInjectedClockAndIDs(t *testing.T) {
	clock := newFakeClock()
	engine := newEngine(t, domain.DefaultBank(),
		app.WithEngineClock(clock.Now),
		app.WithSessionIDs(func() string { return "fixed-id" }),
	)
	session, err := engine.GenerateGameSession(context.Background(), "u1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if session.ID != "fixed-id" || !session.StartTime.Equal(clock.Now()) || session.UserID != "u1" {
		t.Fatalf("unexpected session header: %s %s %s", session.ID, session.StartTime, session.UserID)
	}
}

func TestGenerateGameSessionRejectsEmptyUser(t *testing.T) {
	engine := newEngine(t, domain.DefaultBank())
	if _, err := engine.GenerateGameSession(context.Background(), ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEngineUndersizedBank(t *testing.T) {
	full := domain.DefaultBank()
	small := domain.QuestionBank{ID: "small", Questions: full.Questions[:3]}
	engine := newEngine(t, small)
	if err := engine.Preload(context.Background()); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error for a 3-question bank, got %v", err)
	}

	var onlyTF []domain.Question
	for _, q := range full.Questions {
		if q.Type == domain.TypeTrueFalse {
			onlyTF = append(onlyTF, q)
		}
	}
	engine = newEngine(t, domain.QuestionBank{ID: "tf", Questions: onlyTF})
	if _, err := engine.GenerateGameSession(context.Background(), "u1"); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error without multiple-choice questions, got %v", err)
	}
}

func TestNewEngineRejectsBadSetup(t *testing.T) {
	repo := memory.NewBankRepository(memory.NewStaticBankLoader(domain.DefaultBank()), time.Minute)
	if _, err := app.NewEngine(repo, "default", domain.DefaultBlueprint()[:2], domain.DefaultScoreTable()); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error for short blueprint, got %v", err)
	}
	flat := domain.ScoreTable{domain.DifficultyEasy: 10, domain.DifficultyMedium: 10, domain.DifficultyHard: 10}
	if _, err := app.NewEngine(repo, "default", domain.DefaultBlueprint(), flat); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error for flat scores, got %v", err)
	}
}

func TestCheckAnswer(t *testing.T) {
	engine := newEngine(t, domain.DefaultBank())
	bank := domain.DefaultBank()

	cases := []struct {
		id, answer string
		want       bool
	}{
		{"mc-easy-printer", "A", true},
		{"mc-easy-printer", "a", false},
		{"mc-easy-printer", "B", false},
		{"tf-easy-stepper", domain.AnswerFalse, true},
		{"tf-easy-stepper", "", false},
	}
	for _, tc := range cases {
		q, ok := bank.Lookup(tc.id)
		if !ok {
			t.Fatalf("fixture question %s missing", tc.id)
		}
		got, err := engine.CheckAnswer(q, tc.answer)
		if err != nil {
			t.Fatalf("check %s/%q: %v", tc.id, tc.answer, err)
		}
		if got != tc.want {
			t.Fatalf("check %s/%q = %v, want %v", tc.id, tc.answer, got, tc.want)
		}
	}
	if _, err := engine.CheckAnswer(domain.Question{}, "A"); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := engine.CheckAnswer(domain.Question{ID: "broken"}, "A"); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

// swapLoader serves whichever bank was set last.
type swapLoader struct {
	mu   sync.Mutex
	bank domain.QuestionBank
}

func (l *swapLoader) LoadBank(_ context.Context, _ string) (domain.QuestionBank, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bank, nil
}

func (l *swapLoader) set(bank domain.QuestionBank) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bank = bank
}

// revisedBank renames every question and flips every true-false answer.
func revisedBank() domain.QuestionBank {
	bank := domain.DefaultBank()
	questions := make([]domain.Question, len(bank.Questions))
	for i, q := range bank.Questions {
		q.ID += "-v2"
		if q.Type == domain.TypeTrueFalse {
			if q.CorrectAnswer == domain.AnswerTrue {
				q.CorrectAnswer = domain.AnswerFalse
			} else {
				q.CorrectAnswer = domain.AnswerTrue
			}
		}
		questions[i] = q
	}
	bank.Questions = questions
	return bank
}

func TestBankReloadKeepsRunningSessions(t *testing.T) {
	ctx := context.Background()
	loader := &swapLoader{bank: domain.DefaultBank()}
	repo := memory.NewBankRepository(loader, time.Minute)
	engine, err := app.NewEngine(repo, "default", domain.DefaultBlueprint(), domain.DefaultScoreTable(),
		app.WithRand(rand.New(rand.NewSource(7))))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	session, err := engine.GenerateGameSession(ctx, "u1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	served := append([]domain.Question(nil), session.Questions...)
	clock := newFakeClock()
	tracker := app.NewTracker(session, identity("u1", "Ada"), engine, engine.Scores(),
		app.WithTrackerClock(clock.Now),
		app.WithAfterFunc((&fakeScheduler{}).After),
	)
	tracker.Start()

	loader.set(revisedBank())
	repo.Invalidate("default")
	next, err := engine.GenerateGameSession(ctx, "u2")
	if err != nil {
		t.Fatalf("generate after reload: %v", err)
	}
	if !strings.HasSuffix(next.Questions[0].ID, "-v2") {
		t.Fatalf("expected the new session to use the reloaded bank, got %s", next.Questions[0].ID)
	}

	for i, q := range served {
		adv, err := tracker.Submit(i, q.CorrectAnswer)
		if err != nil {
			t.Fatalf("submit %d after reload: %v", i, err)
		}
		if !adv.Answer.IsCorrect {
			t.Fatalf("answer %d graded against the reloaded bank: %+v", i, adv.Answer)
		}
	}
	snap := tracker.Snapshot()
	if *snap.TotalScore != domain.QuestionsPerSession || *snap.FinalScore != domain.MaxFinalScore {
		t.Fatalf("expected a perfect game, got score %d final %d", *snap.TotalScore, *snap.FinalScore)
	}
}
