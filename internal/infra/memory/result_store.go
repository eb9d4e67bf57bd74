package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"actuator-quiz/internal/domain"
	"github.com/google/uuid"
)

// ResultStore keeps participants and game results in memory. It backs demos
// and tests; results are lost on restart.
type ResultStore struct {
	mu        sync.RWMutex
	users     map[string]domain.UserIdentity
	results   map[string]storedResult
	bySession map[string]string
}

type storedResult struct {
	id     string
	record domain.ResultRecord
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		users:     make(map[string]domain.UserIdentity),
		results:   make(map[string]storedResult),
		bySession: make(map[string]string),
	}
}

func (s *ResultStore) PersistUser(_ context.Context, identity domain.UserIdentity) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, known := s.users[identity.ID]
	s.users[identity.ID] = identity
	return !known, nil
}

func (s *ResultStore) FindUser(_ context.Context, id string) (domain.UserIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.users[id]
	if !ok {
		return domain.UserIdentity{}, domain.ErrUserNotFound
	}
	return identity, nil
}

func (s *ResultStore) PersistResult(_ context.Context, record domain.ResultRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[record.UserID]; !ok {
		return "", domain.ErrUserNotFound
	}
	if _, dup := s.bySession[record.SessionID]; dup {
		return "", domain.ErrDuplicateResult
	}
	id := uuid.NewString()
	record.Answers = append([]domain.UserAnswer(nil), record.Answers...)
	s.results[id] = storedResult{id: id, record: record}
	s.bySession[record.SessionID] = id
	return id, nil
}

func (s *ResultStore) QueryRanked(_ context.Context, from, to time.Time, limit int) ([]domain.RankedRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.rankedLocked(from, to)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *ResultStore) RankOf(_ context.Context, resultID string, from, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, row := range s.rankedLocked(from, to) {
		if row.ResultID == resultID {
			return i + 1, nil
		}
	}
	return 0, domain.Validationf("result %s is outside the ranking window", resultID)
}

func (s *ResultStore) CountParticipants(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *ResultStore) rankedLocked(from, to time.Time) []domain.RankedRow {
	rows := make([]domain.RankedRow, 0, len(s.results))
	for _, r := range s.results {
		if r.record.PlayedAt.Before(from) || !r.record.PlayedAt.Before(to) {
			continue
		}
		user := s.users[r.record.UserID]
		rows = append(rows, domain.RankedRow{
			ResultID:         r.id,
			PlayerName:       user.Name,
			Company:          user.Company,
			Score:            r.record.Score,
			CompletionTimeMs: r.record.CompletionTimeMs,
			FinalScore:       r.record.FinalScore,
			PlayedAt:         r.record.PlayedAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if a.CompletionTimeMs != b.CompletionTimeMs {
			return a.CompletionTimeMs < b.CompletionTimeMs
		}
		if !a.PlayedAt.Equal(b.PlayedAt) {
			return a.PlayedAt.Before(b.PlayedAt)
		}
		return a.ResultID < b.ResultID
	})
	return rows
}
