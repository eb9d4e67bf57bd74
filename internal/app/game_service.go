package app

import (
	"context"
	"sync"
	"time"

	"actuator-quiz/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRepository abstracts where live game trackers are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(ctx context.Context, t *Tracker) error
	// Get returns domain.ErrSessionNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (*Tracker, error)
	// Sync is called after every state change of t.
	Sync(ctx context.Context, t *Tracker) error
}

// UserStore keeps registered participants.
type UserStore interface {
	// PersistUser reports true only for the call that created the participant.
	PersistUser(ctx context.Context, identity domain.UserIdentity) (bool, error)
	FindUser(ctx context.Context, id string) (domain.UserIdentity, error)
}

const (
	notifyTimeout   = 30 * time.Second
	finalizeTimeout = 10 * time.Second
)

// GameService contains the quiz use cases exposed to the transports.
type GameService struct {
	engine   *Engine
	ranker   *Ranker
	counter  *ParticipantCounter
	users    UserStore
	sessions SessionRepository
	catalog  domain.Catalog
	feed     *Feed
	log      *zap.Logger

	notifier         ResultNotifier
	observer         Observer
	after            AfterFunc
	now              func() time.Time
	leaderboardLimit int

	bg sync.WaitGroup
}

// ServiceOption customizes a GameService.
type ServiceOption func(*GameService)

// WithNotifier sends every finished result to the participant.
func WithNotifier(n ResultNotifier) ServiceOption {
	return func(s *GameService) { s.notifier = n }
}

// WithObserver reports game events, typically to metrics.
func WithObserver(o Observer) ServiceOption {
	return func(s *GameService) { s.observer = o }
}

// WithCatalog replaces the built-in component catalog.
func WithCatalog(c domain.Catalog) ServiceOption {
	return func(s *GameService) { s.catalog = c }
}

// WithServiceClock overrides time.Now for trackers.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *GameService) { s.now = now }
}

// WithServiceAfterFunc overrides the countdown scheduler for trackers.
func WithServiceAfterFunc(after AfterFunc) ServiceOption {
	return func(s *GameService) { s.after = after }
}

// WithLeaderboardLimit sets how many entries the live feed carries.
func WithLeaderboardLimit(n int) ServiceOption {
	return func(s *GameService) {
		if n > 0 {
			s.leaderboardLimit = n
		}
	}
}

func NewGameService(engine *Engine, ranker *Ranker, counter *ParticipantCounter, users UserStore, sessions SessionRepository, log *zap.Logger, opts ...ServiceOption) *GameService {
	s := &GameService{
		engine:           engine,
		ranker:           ranker,
		counter:          counter,
		users:            users,
		sessions:         sessions,
		catalog:          domain.DefaultCatalog(),
		feed:             NewFeed(),
		log:              log,
		observer:         nopObserver{},
		after:            realAfterFunc,
		now:              time.Now,
		leaderboardLimit: DefaultLeaderboardLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	counter.OnChange(func(n int64) {
		s.observer.Participants(n)
		s.feed.PublishParticipants(n)
	})
	return s
}

// Prime runs the startup work: bank preload, counter reconciliation and the
// first leaderboard snapshot.
func (s *GameService) Prime(ctx context.Context) error {
	if err := s.engine.Preload(ctx); err != nil {
		return err
	}
	if err := s.counter.Reconcile(ctx); err != nil {
		return err
	}
	s.observer.Participants(s.counter.Cached())
	s.feed.PublishParticipants(s.counter.Cached())
	s.refreshLeaderboard(ctx)
	return nil
}

// Close waits for background notifications.
func (s *GameService) Close() {
	s.bg.Wait()
}

// Register stores a participant. New participants bump the counter; a known
// id only has its details refreshed.
func (s *GameService) Register(ctx context.Context, identity domain.UserIdentity) (domain.UserIdentity, int64, error) {
	identity = identity.Normalize()
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}
	if err := identity.Validate(); err != nil {
		return domain.UserIdentity{}, 0, err
	}

	created, err := s.users.PersistUser(ctx, identity)
	if err != nil {
		return domain.UserIdentity{}, 0, err
	}

	var count int64
	if created {
		count, err = s.counter.Increment(ctx)
	} else {
		count, err = s.counter.Value(ctx)
	}
	if err != nil {
		return domain.UserIdentity{}, 0, err
	}
	s.log.Info("participant registered",
		zap.String("user_id", identity.ID),
		zap.Bool("returning", !created),
		zap.Int64("participants", count),
	)
	return identity, count, nil
}

// Start creates a session for a registered participant and starts the first
// countdown.
func (s *GameService) Start(ctx context.Context, userID string) (SessionView, error) {
	identity, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return SessionView{}, err
	}
	session, err := s.engine.GenerateGameSession(ctx, identity.ID)
	if err != nil {
		return SessionView{}, err
	}
	t := NewTracker(session, identity, s.engine, s.engine.Scores(),
		WithTrackerClock(s.now),
		WithAfterFunc(s.after),
		WithTimeoutHandler(s.onTimeout),
	)
	if err := s.sessions.Put(ctx, t); err != nil {
		return SessionView{}, err
	}
	t.Start()
	s.observer.GameStarted()
	s.log.Info("game started", zap.String("session_id", session.ID), zap.String("user_id", identity.ID))
	return newSessionView(t), nil
}

// GetSession returns the participant-facing state of a session.
func (s *GameService) GetSession(ctx context.Context, sessionID string) (SessionView, error) {
	t, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	return newSessionView(t), nil
}

// Select records the highlighted answer; it is submitted if the countdown
// runs out.
func (s *GameService) Select(ctx context.Context, sessionID string, index int, answer string) error {
	t, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	return t.Select(index, answer)
}

// Submit records the answer for question index and finalizes the session
// after the last question.
func (s *GameService) Submit(ctx context.Context, sessionID string, index int, answer string) (AnswerView, error) {
	t, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return AnswerView{}, err
	}
	adv, err := t.Submit(index, answer)
	if err != nil {
		return AnswerView{}, err
	}
	view := s.afterAdvance(ctx, t, adv)
	view.QuestionIndex = index
	return view, nil
}

// Result returns the finalized result of a completed session.
func (s *GameService) Result(ctx context.Context, sessionID string) (GameResult, error) {
	t, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return GameResult{}, err
	}
	result, ok := t.Result()
	if !ok {
		return GameResult{}, domain.InvalidStatef("session %s is not completed", sessionID)
	}
	return result, nil
}

// Leaderboard lists today's best results.
func (s *GameService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	return s.ranker.GetTopEntries(ctx, limit)
}

// Grade maps a final score to its letter grade.
func (s *GameService) Grade(finalScore int) domain.RankInfo {
	return domain.GetRankInfo(finalScore)
}

// Catalog returns the component catalog.
func (s *GameService) Catalog() domain.Catalog {
	return s.catalog
}

// CompatibilityView answers a compatibility check.
type CompatibilityView struct {
	Application string   `json:"application,omitempty"`
	Compatible  bool     `json:"compatible"`
	Unlocked    []string `json:"unlocked"`
}

// Compatibility checks a component selection. With an empty application only
// the unlocked applications are reported.
func (s *GameService) Compatibility(application string, selection []string) (CompatibilityView, error) {
	unlocked, err := s.catalog.UnlockedApplications(selection)
	if err != nil {
		return CompatibilityView{}, err
	}
	view := CompatibilityView{Application: application, Unlocked: unlocked}
	if application == "" {
		return view, nil
	}
	view.Compatible, err = s.catalog.Compatible(application, selection)
	if err != nil {
		return CompatibilityView{}, err
	}
	return view, nil
}

// ParticipantCount returns the global participant count.
func (s *GameService) ParticipantCount(ctx context.Context) (int64, error) {
	return s.counter.Value(ctx)
}

// Subscribe returns a channel that receives live feed snapshots.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(_ context.Context) (<-chan FeedSnapshot, func()) {
	return s.feed.Subscribe()
}

func (s *GameService) onTimeout(t *Tracker, adv Advance) {
	s.log.Info("question timed out",
		zap.String("session_id", t.ID()),
		zap.String("question_id", adv.Question.ID),
		zap.String("selected", adv.Answer.SelectedAnswer),
	)
	s.afterAdvance(context.Background(), t, adv)
}

func (s *GameService) afterAdvance(ctx context.Context, t *Tracker, adv Advance) AnswerView {
	s.observer.AnswerRecorded(adv.Answer)
	if err := s.sessions.Sync(ctx, t); err != nil {
		s.log.Warn("session sync failed", zap.String("session_id", t.ID()), zap.Error(err))
	}
	view := newAnswerView(adv)
	if adv.Completed {
		result := s.finalize(ctx, t)
		view.Result = &result
	}
	return view
}

// finalize persists and ranks a completed session. Persistence failures are
// not surfaced to the participant; they get an unranked result instead. The
// caller's cancellation is ignored: a client that disconnects on its last
// answer still gets its result stored.
func (s *GameService) finalize(ctx context.Context, t *Tracker) GameResult {
	if result, ok := t.Result(); ok {
		return result
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()
	snap := t.Snapshot()
	identity := t.Identity()

	result := GameResult{}
	entry, err := s.ranker.SubmitScore(ctx, snap, identity)
	switch {
	case err == nil:
		result.Entry = entry
		if entry.Rank > 0 {
			s.observer.ResultSubmitted(OutcomeRanked)
		} else {
			s.observer.ResultSubmitted(OutcomeUnranked)
		}
	default:
		outcome := OutcomeFailed
		if IsDuplicate(err) {
			outcome = OutcomeDuplicate
		}
		s.observer.ResultSubmitted(outcome)
		s.log.Error("result submission failed",
			zap.String("session_id", snap.ID),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
		result.Degraded = true
		result.Entry = domain.LeaderboardEntry{
			PlayerName:       identity.Name,
			Company:          identity.Company,
			Score:            *snap.TotalScore,
			CompletionTimeMs: *snap.CompletionTimeMs,
			FinalScore:       *snap.FinalScore,
			PlayedAt:         *snap.EndTime,
		}
	}
	result.Grade = domain.GetRankInfo(*snap.FinalScore)
	t.SetResult(result)
	if err := s.sessions.Sync(ctx, t); err != nil {
		s.log.Warn("session sync failed", zap.String("session_id", snap.ID), zap.Error(err))
	}

	if !result.Degraded {
		s.refreshLeaderboard(ctx)
	}
	s.notify(identity, snap, result)
	return result
}

func (s *GameService) refreshLeaderboard(ctx context.Context) {
	entries, err := s.ranker.GetTopEntries(ctx, s.leaderboardLimit)
	if err != nil {
		s.log.Warn("leaderboard refresh failed", zap.Error(err))
		return
	}
	s.feed.PublishLeaderboard(entries)
}

func (s *GameService) notify(identity domain.UserIdentity, session domain.GameSession, result GameResult) {
	if s.notifier == nil {
		return
	}
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyResult(ctx, identity, session, result); err != nil {
			s.log.Warn("result notification failed",
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
		}
	}()
}
