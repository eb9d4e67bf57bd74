package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"actuator-quiz/internal/domain"
	"github.com/google/uuid"
)

// BankRepository loads question banks (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.QuestionBank, error)
}

// Engine builds randomized sessions over a fixed blueprint and checks answers
// against the questions a session was generated with. A bank reload only
// affects sessions generated after it.
type Engine struct {
	banks     BankRepository
	bankID    string
	blueprint domain.Blueprint
	scores    domain.ScoreTable
	now       func() time.Time
	newID     func() string

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithRand fixes the randomness source, mainly for tests.
func WithRand(rnd *rand.Rand) EngineOption {
	return func(e *Engine) { e.rnd = rnd }
}

// WithEngineClock overrides time.Now.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithSessionIDs overrides session id generation.
func WithSessionIDs(newID func() string) EngineOption {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine validates the blueprint and score table up front; both are fatal
// when wrong.
func NewEngine(banks BankRepository, bankID string, blueprint domain.Blueprint, scores domain.ScoreTable, opts ...EngineOption) (*Engine, error) {
	if err := blueprint.Validate(); err != nil {
		return nil, err
	}
	if err := scores.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		banks:     banks,
		bankID:    bankID,
		blueprint: blueprint,
		scores:    scores,
		now:       time.Now,
		newID:     uuid.NewString,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Scores returns the engine's score table.
func (e *Engine) Scores() domain.ScoreTable {
	return e.scores
}

// Preload loads the bank and checks that the blueprint can be filled.
func (e *Engine) Preload(ctx context.Context) error {
	_, err := e.load(ctx)
	return err
}

// GenerateGameSession draws one question per blueprint slot without repeating a
// question id, preferring applications not drawn yet, then shuffles the order.
func (e *Engine) GenerateGameSession(ctx context.Context, userID string) (*domain.GameSession, error) {
	if userID == "" {
		return nil, domain.Validationf("user id is required")
	}
	idx, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	e.rndMu.Lock()
	defer e.rndMu.Unlock()

	used := make(map[string]struct{}, len(e.blueprint))
	apps := make(map[string]struct{}, len(e.blueprint))
	questions := make([]domain.Question, 0, len(e.blueprint))
	for _, slot := range e.blueprint {
		var fresh, rest []domain.Question
		for _, q := range idx.bySlot[slot] {
			if _, taken := used[q.ID]; taken {
				continue
			}
			if _, seen := apps[q.ApplicationName]; seen {
				rest = append(rest, q)
			} else {
				fresh = append(fresh, q)
			}
		}
		candidates := fresh
		if len(candidates) == 0 {
			candidates = rest
		}
		if len(candidates) == 0 {
			return nil, domain.Configurationf("no %s %s question left in bank %q", slot.Difficulty, slot.Type, e.bankID)
		}
		pick := candidates[e.rnd.Intn(len(candidates))]
		pick.MaxPoints = e.scores[pick.Difficulty]
		used[pick.ID] = struct{}{}
		apps[pick.ApplicationName] = struct{}{}
		questions = append(questions, pick)
	}
	e.rnd.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	return &domain.GameSession{
		ID:                   e.newID(),
		UserID:               userID,
		Questions:            questions,
		CurrentQuestionIndex: 0,
		Answers:              []domain.UserAnswer{},
		StartTime:            e.now(),
	}, nil
}

// CheckAnswer compares selected with the correct answer of the session's copy
// of q exactly.
func (e *Engine) CheckAnswer(q domain.Question, selected string) (bool, error) {
	if q.ID == "" {
		return false, domain.ErrQuestionNotFound
	}
	if q.CorrectAnswer == "" {
		return false, domain.Configurationf("question %s has no correct answer", q.ID)
	}
	return selected == q.CorrectAnswer, nil
}

type bankIndex struct {
	bySlot map[domain.Slot][]domain.Question
}

func (e *Engine) load(ctx context.Context) (*bankIndex, error) {
	bank, err := e.banks.GetBank(ctx, e.bankID)
	if err != nil {
		return nil, err
	}
	if err := bank.Validate(); err != nil {
		return nil, err
	}
	if len(bank.Questions) < domain.QuestionsPerSession {
		return nil, domain.Configurationf("bank %q has %d questions, need at least %d",
			e.bankID, len(bank.Questions), domain.QuestionsPerSession)
	}

	idx := &bankIndex{
		bySlot: make(map[domain.Slot][]domain.Question),
	}
	for _, q := range bank.Questions {
		slot := domain.Slot{Type: q.Type, Difficulty: q.Difficulty}
		idx.bySlot[slot] = append(idx.bySlot[slot], q)
	}

	need := make(map[domain.Slot]int)
	for _, slot := range e.blueprint {
		need[slot]++
	}
	for slot, n := range need {
		if have := len(idx.bySlot[slot]); have < n {
			return nil, domain.Configurationf("bank %q has %d %s %s questions, need %d",
				e.bankID, have, slot.Difficulty, slot.Type, n)
		}
	}

	return idx, nil
}
