package memory

import (
	"context"
	"sync/atomic"
)

// CounterStore is a process-local participant counter.
type CounterStore struct {
	value atomic.Int64
}

func NewCounterStore() *CounterStore {
	return &CounterStore{}
}

func (c *CounterStore) IncrementCounter(context.Context) (int64, error) {
	return c.value.Add(1), nil
}

func (c *CounterStore) GetCounterValue(context.Context) (int64, error) {
	return c.value.Load(), nil
}

func (c *CounterStore) SetCounter(_ context.Context, value int64) error {
	c.value.Store(value)
	return nil
}
