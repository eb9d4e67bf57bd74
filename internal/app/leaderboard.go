package app

import (
	"context"
	"errors"
	"time"

	"actuator-quiz/internal/domain"
	"go.uber.org/zap"
)

// DefaultLeaderboardLimit is used when callers pass a non-positive limit.
const DefaultLeaderboardLimit = 10

// ResultStore is the persistence collaborator for participants and results.
type ResultStore interface {
	// PersistUser upserts the identity by id and reports whether a new
	// participant was created.
	PersistUser(ctx context.Context, identity domain.UserIdentity) (bool, error)
	// FindUser returns domain.ErrUserNotFound for unknown ids.
	FindUser(ctx context.Context, id string) (domain.UserIdentity, error)
	// PersistResult writes the aggregate row and every answer row atomically
	// and returns the new result id. A second write for the same session
	// returns domain.ErrDuplicateResult.
	PersistResult(ctx context.Context, record domain.ResultRecord) (string, error)
	// QueryRanked returns results played in [from, to), ordered by final score
	// desc, completion time asc, played at asc.
	QueryRanked(ctx context.Context, from, to time.Time, limit int) ([]domain.RankedRow, error)
	// RankOf returns the 1-based position of resultID in the same ordering.
	RankOf(ctx context.Context, resultID string, from, to time.Time) (int, error)
	// CountParticipants counts registered participants.
	CountParticipants(ctx context.Context) (int64, error)
}

// Ranker persists completed sessions and ranks them on the daily leaderboard.
type Ranker struct {
	store          ResultStore
	log            *zap.Logger
	now            func() time.Time
	fallbackWindow time.Duration
}

// RankerOption customizes a Ranker.
type RankerOption func(*Ranker)

// WithRankerClock overrides time.Now.
func WithRankerClock(now func() time.Time) RankerOption {
	return func(r *Ranker) { r.now = now }
}

// WithFallbackWindow sets how far back the public listing looks when nobody
// has played today.
func WithFallbackWindow(d time.Duration) RankerOption {
	return func(r *Ranker) {
		if d > 0 {
			r.fallbackWindow = d
		}
	}
}

func NewRanker(store ResultStore, log *zap.Logger, opts ...RankerOption) *Ranker {
	r := &Ranker{
		store:          store,
		log:            log,
		now:            time.Now,
		fallbackWindow: 7 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SubmitScore persists the identity and the completed session, then ranks the
// new result among today's results. A ranking failure after a successful
// write degrades to rank 0 instead of failing.
func (r *Ranker) SubmitScore(ctx context.Context, session domain.GameSession, identity domain.UserIdentity) (domain.LeaderboardEntry, error) {
	if !session.Completed() {
		return domain.LeaderboardEntry{}, domain.InvalidStatef("session %s is not completed", session.ID)
	}
	identity = identity.Normalize()
	if err := identity.Validate(); err != nil {
		return domain.LeaderboardEntry{}, err
	}
	if identity.ID != session.UserID {
		return domain.LeaderboardEntry{}, domain.Validationf("session %s belongs to another participant", session.ID)
	}
	rate, err := domain.SuccessRate(session.CorrectCount(), len(session.Questions))
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}

	if _, err := r.store.PersistUser(ctx, identity); err != nil {
		return domain.LeaderboardEntry{}, err
	}

	playedAt := r.now().UTC()
	record := domain.ResultRecord{
		SessionID:        session.ID,
		UserID:           identity.ID,
		Score:            session.CorrectCount(),
		FinalScore:       session.PointsTotal(),
		CompletionTimeMs: *session.CompletionTimeMs,
		SuccessRate:      rate.StringFixed(2),
		Answers:          session.Answers,
		PlayedAt:         playedAt,
	}
	resultID, err := r.store.PersistResult(ctx, record)
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}

	entry := domain.LeaderboardEntry{
		PlayerName:       identity.Name,
		Company:          identity.Company,
		Score:            record.Score,
		CompletionTimeMs: record.CompletionTimeMs,
		FinalScore:       record.FinalScore,
		PlayedAt:         playedAt,
	}
	from, to := dayBounds(playedAt)
	rank, err := r.store.RankOf(ctx, resultID, from, to)
	if err != nil {
		r.log.Warn("rank lookup failed, returning unranked result",
			zap.String("result_id", resultID),
			zap.Error(err),
		)
		rank = 0
	}
	entry.Rank = rank
	r.log.Info("result submitted",
		zap.String("session_id", session.ID),
		zap.String("result_id", resultID),
		zap.Int("final_score", record.FinalScore),
		zap.Int("rank", rank),
	)
	return entry, nil
}

// GetTopEntries lists today's best results. When nobody has played today it
// falls back to a wider window and masks player names.
func (r *Ranker) GetTopEntries(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	now := r.now().UTC()
	from, to := dayBounds(now)
	rows, err := r.store.QueryRanked(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	masked := false
	if len(rows) == 0 {
		rows, err = r.store.QueryRanked(ctx, now.Add(-r.fallbackWindow), to, limit)
		if err != nil {
			return nil, err
		}
		masked = true
	}
	return toEntries(rows, masked), nil
}

func toEntries(rows []domain.RankedRow, masked bool) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		name := row.PlayerName
		if masked {
			name = domain.MaskName(name)
		}
		entries = append(entries, domain.LeaderboardEntry{
			Rank:             i + 1,
			PlayerName:       name,
			Company:          row.Company,
			Score:            row.Score,
			CompletionTimeMs: row.CompletionTimeMs,
			FinalScore:       row.FinalScore,
			PlayedAt:         row.PlayedAt,
		})
	}
	return entries
}

// dayBounds returns the UTC calendar day containing t as [start, end).
func dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// IsDuplicate reports whether err means the session was already submitted.
func IsDuplicate(err error) bool {
	return errors.Is(err, domain.ErrDuplicateResult)
}
