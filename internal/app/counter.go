package app

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// CounterStore keeps the global participant counter. Increments must be a
// single atomic operation in the store.
type CounterStore interface {
	IncrementCounter(ctx context.Context) (int64, error)
	GetCounterValue(ctx context.Context) (int64, error)
	SetCounter(ctx context.Context, value int64) error
}

// ParticipantSource counts participant records for the startup reconciliation.
type ParticipantSource interface {
	CountParticipants(ctx context.Context) (int64, error)
}

// ParticipantCounter exposes the live participant count. The store is the
// source of truth; the cached value only serves display reads and is refreshed
// on every increment or read.
type ParticipantCounter struct {
	store   CounterStore
	source  ParticipantSource
	log     *zap.Logger
	cached  atomic.Int64
	changed func(int64)
}

func NewParticipantCounter(store CounterStore, source ParticipantSource, log *zap.Logger) *ParticipantCounter {
	return &ParticipantCounter{store: store, source: source, log: log}
}

// OnChange registers a callback invoked with every new value.
func (c *ParticipantCounter) OnChange(fn func(int64)) {
	c.changed = fn
}

// Reconcile seeds the counter from the participant records. It runs once at
// process start.
func (c *ParticipantCounter) Reconcile(ctx context.Context) error {
	n, err := c.source.CountParticipants(ctx)
	if err != nil {
		return err
	}
	if err := c.store.SetCounter(ctx, n); err != nil {
		return err
	}
	c.cached.Store(n)
	c.log.Info("participant counter reconciled", zap.Int64("count", n))
	return nil
}

// Increment atomically adds one participant and returns the new value.
func (c *ParticipantCounter) Increment(ctx context.Context) (int64, error) {
	n, err := c.store.IncrementCounter(ctx)
	if err != nil {
		return 0, err
	}
	c.refresh(n)
	return n, nil
}

// Value reads the current value from the store.
func (c *ParticipantCounter) Value(ctx context.Context) (int64, error) {
	n, err := c.store.GetCounterValue(ctx)
	if err != nil {
		return 0, err
	}
	c.refresh(n)
	return n, nil
}

// Cached returns the last value seen, without touching the store.
func (c *ParticipantCounter) Cached() int64 {
	return c.cached.Load()
}

func (c *ParticipantCounter) refresh(n int64) {
	c.cached.Store(n)
	if c.changed != nil {
		c.changed(n)
	}
}
