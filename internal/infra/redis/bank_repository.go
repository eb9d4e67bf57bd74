package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"actuator-quiz/internal/domain"
	"actuator-quiz/internal/infra/memory"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// BankRepository caches question banks in Redis and falls back to a loader on
// cache miss. Questions are stored as: HSET actuator:bank:{bankID} {questionID} {json}
type BankRepository struct {
	client *redis.Client
	loader memory.BankLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewBankRepository(client *redis.Client, loader memory.BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, bankID string) (domain.QuestionBank, error) {
	if bank, ok := r.fromCache(ctx, bankID); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(bankID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if bank, ok := r.fromCache(ctx, bankID); ok {
			return bank, nil
		}

		bank, err := r.loader.LoadBank(ctx, bankID)
		if err != nil {
			return domain.QuestionBank{}, err
		}

		key := r.key(bankID)
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, key)
		for _, q := range bank.Questions {
			raw, err := json.Marshal(q)
			if err != nil {
				return domain.QuestionBank{}, fmt.Errorf("encode question %s: %w", q.ID, err)
			}
			pipe.HSet(ctx, key, q.ID, raw)
		}
		if ttl := r.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		// best-effort: a failed write only costs another load
		_, _ = pipe.Exec(ctx)

		return bank, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return result.(domain.QuestionBank), nil
}

// Invalidate drops the cached copy of a bank.
func (r *BankRepository) Invalidate(ctx context.Context, bankID string) error {
	if err := r.client.Del(ctx, r.key(bankID)).Err(); err != nil {
		return domain.Persistence("invalidate bank cache", err)
	}
	return nil
}

func (r *BankRepository) fromCache(ctx context.Context, bankID string) (domain.QuestionBank, bool) {
	fields, err := r.client.HGetAll(ctx, r.key(bankID)).Result()
	if err != nil || len(fields) == 0 {
		return domain.QuestionBank{}, false
	}
	questions := make([]domain.Question, 0, len(fields))
	for _, raw := range fields {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return domain.QuestionBank{}, false
		}
		questions = append(questions, q)
	}
	// hash order is random; keep draws reproducible for a fixed seed
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return domain.QuestionBank{ID: bankID, Questions: questions}, true
}

func (r *BankRepository) key(bankID string) string {
	return "actuator:bank:" + bankID
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
