package postgres

import (
	"context"
	"errors"
	"time"

	"actuator-quiz/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const uniqueViolation = "23505"

// Store persists participants, game results and the participant counter.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// PersistUser upserts a participant. xmax is zero only for a freshly inserted
// row, so created is true for exactly one concurrent registration of an id.
func (s *Store) PersistUser(ctx context.Context, u domain.UserIdentity) (bool, error) {
	var created bool
	err := s.pool.QueryRow(ctx, `
		INSERT INTO participants (id, name, company, email, phone)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			company = EXCLUDED.company,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			updated_at = now()
		RETURNING (xmax = 0)`,
		u.ID, u.Name, u.Company, u.Email, u.Phone,
	).Scan(&created)
	if err != nil {
		return false, domain.Persistence("persist participant", err)
	}
	return created, nil
}

func (s *Store) FindUser(ctx context.Context, id string) (domain.UserIdentity, error) {
	var u domain.UserIdentity
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, company, email, phone FROM participants WHERE id=$1`, id,
	).Scan(&u.ID, &u.Name, &u.Company, &u.Email, &u.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserIdentity{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserIdentity{}, domain.Persistence("find participant", err)
	}
	return u, nil
}

// PersistResult writes the result and its answers in one transaction.
func (s *Store) PersistResult(ctx context.Context, r domain.ResultRecord) (string, error) {
	id := uuid.NewString()
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO game_results
				(id, session_id, user_id, score, final_score, completion_time_ms, success_rate, played_at)
			VALUES ($1::uuid, $2, $3, $4, $5, $6, $7::numeric, $8)`,
			id, r.SessionID, r.UserID, r.Score, r.FinalScore, r.CompletionTimeMs, r.SuccessRate, r.PlayedAt)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i, a := range r.Answers {
			batch.Queue(`
				INSERT INTO game_answers
					(result_id, position, question_id, selected_answer, is_correct, difficulty, points_earned, timed_out, answered_at)
				VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)`,
				id, i, a.QuestionID, a.SelectedAnswer, a.IsCorrect, string(a.Difficulty), a.PointsEarned, a.TimedOut, a.Timestamp)
		}
		br := tx.SendBatch(ctx, batch)
		for range r.Answers {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return err
			}
		}
		return br.Close()
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", domain.ErrDuplicateResult
		}
		return "", domain.Persistence("persist result", err)
	}
	return id, nil
}

const rankOrder = `ORDER BY r.final_score DESC, r.completion_time_ms ASC, r.played_at ASC, r.id ASC`

func (s *Store) QueryRanked(ctx context.Context, from, to time.Time, limit int) ([]domain.RankedRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id::text, p.name, p.company, r.score, r.completion_time_ms, r.final_score, r.played_at
		FROM game_results r
		JOIN participants p ON p.id = r.user_id
		WHERE r.played_at >= $1 AND r.played_at < $2
		`+rankOrder+`
		LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, domain.Persistence("query leaderboard", err)
	}
	defer rows.Close()

	var out []domain.RankedRow
	for rows.Next() {
		var row domain.RankedRow
		if err := rows.Scan(&row.ResultID, &row.PlayerName, &row.Company, &row.Score,
			&row.CompletionTimeMs, &row.FinalScore, &row.PlayedAt); err != nil {
			return nil, domain.Persistence("scan leaderboard", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("query leaderboard", err)
	}
	return out, nil
}

func (s *Store) RankOf(ctx context.Context, resultID string, from, to time.Time) (int, error) {
	var rank int
	err := s.pool.QueryRow(ctx, `
		SELECT rank FROM (
			SELECT r.id, ROW_NUMBER() OVER (`+rankOrder+`) AS rank
			FROM game_results r
			WHERE r.played_at >= $1 AND r.played_at < $2
		) ranked
		WHERE id = $3::uuid`, from, to, resultID).Scan(&rank)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.Validationf("result %s is outside the ranking window", resultID)
	}
	if err != nil {
		return 0, domain.Persistence("rank result", err)
	}
	return rank, nil
}

func (s *Store) CountParticipants(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM participants`).Scan(&n); err != nil {
		return 0, domain.Persistence("count participants", err)
	}
	return n, nil
}

func (s *Store) IncrementCounter(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO participant_counter (id, count) VALUES (1, 1)
		ON CONFLICT (id) DO UPDATE SET count = participant_counter.count + 1
		RETURNING count`).Scan(&n)
	if err != nil {
		return 0, domain.Persistence("increment counter", err)
	}
	return n, nil
}

func (s *Store) GetCounterValue(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count FROM participant_counter WHERE id = 1`).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, domain.Persistence("read counter", err)
	}
	return n, nil
}

func (s *Store) SetCounter(ctx context.Context, value int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO participant_counter (id, count) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET count = EXCLUDED.count`, value)
	if err != nil {
		return domain.Persistence("set counter", err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
