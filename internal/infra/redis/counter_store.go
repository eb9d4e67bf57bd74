package redis

import (
	"context"

	"actuator-quiz/internal/domain"
	"github.com/redis/go-redis/v9"
)

const counterKey = "actuator:participants"

// CounterStore keeps the participant counter in a single Redis key so every
// instance shares it.
type CounterStore struct {
	client *redis.Client
}

func NewCounterStore(client *redis.Client) *CounterStore {
	return &CounterStore{client: client}
}

func (c *CounterStore) IncrementCounter(ctx context.Context) (int64, error) {
	n, err := c.client.Incr(ctx, counterKey).Result()
	if err != nil {
		return 0, domain.Persistence("increment counter", err)
	}
	return n, nil
}

func (c *CounterStore) GetCounterValue(ctx context.Context) (int64, error) {
	n, err := c.client.Get(ctx, counterKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, domain.Persistence("read counter", err)
	}
	return n, nil
}

func (c *CounterStore) SetCounter(ctx context.Context, value int64) error {
	if err := c.client.Set(ctx, counterKey, value, 0).Err(); err != nil {
		return domain.Persistence("set counter", err)
	}
	return nil
}
