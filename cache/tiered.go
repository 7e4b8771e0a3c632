package cache

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Tiered layers Redis in front of the relational store. Reads try Redis
// first; writes go to both. Either layer may be nil or unavailable — the
// other keeps serving.
type Tiered struct {
	redis *RedisClient
	store *Store
}

// NewTiered creates a tiered cache. Both layers are optional.
func NewTiered(redis *RedisClient, store *Store) *Tiered {
	return &Tiered{redis: redis, store: store}
}

func tieredKey(ticker, kind string) string {
	return fmt.Sprintf("market:%s:%s", kind, ticker)
}

// Get loads (ticker, kind) into dest, returning ErrMiss when neither
// layer has a live entry.
func (t *Tiered) Get(ctx context.Context, ticker, kind string, dest interface{}) error {
	if t.redis != nil {
		if err := t.redis.Get(ctx, tieredKey(ticker, kind), dest); err == nil {
			return nil
		}
	}
	if t.store != nil {
		return t.store.Get(ctx, ticker, kind, dest)
	}
	return ErrMiss
}

// Put writes (ticker, kind) to both layers with the same TTL. A failed
// layer is logged and skipped; the write succeeds if either layer took it.
func (t *Tiered) Put(ctx context.Context, ticker, kind string, value interface{}, ttl time.Duration) error {
	var lastErr error
	wrote := false

	if t.redis != nil {
		if err := t.redis.Set(ctx, tieredKey(ticker, kind), value, ttl); err != nil {
			lastErr = err
		} else {
			wrote = true
		}
	}
	if t.store != nil {
		if err := t.store.Put(ctx, ticker, kind, value, ttl); err != nil {
			log.Printf("⚠️  Cache store write failed for %s/%s: %v", ticker, kind, err)
			lastErr = err
		} else {
			wrote = true
		}
	}

	if !wrote && lastErr != nil {
		return lastErr
	}
	return nil
}
