package cache

import (
	"context"
	"fmt"
	"time"
)

// BriefCooldown throttles per-ticker brief regeneration so a misbehaving
// client cannot hammer the LLM endpoint. Backed by Redis; without Redis
// every check reports no cooldown.
type BriefCooldown struct {
	redis *RedisClient
}

// NewBriefCooldown creates a cooldown tracker.
func NewBriefCooldown(redis *RedisClient) *BriefCooldown {
	return &BriefCooldown{redis: redis}
}

func cooldownKey(ticker string) string {
	return fmt.Sprintf("brief:cooldown:%s", ticker)
}

// Set marks a ticker as recently generated for the given period.
func (c *BriefCooldown) Set(ctx context.Context, ticker string, ttl time.Duration) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Set(ctx, cooldownKey(ticker), time.Now().Unix(), ttl)
}

// Active reports whether a ticker is still in its cooldown period.
func (c *BriefCooldown) Active(ctx context.Context, ticker string) bool {
	if c.redis == nil {
		return false
	}
	return c.redis.Exists(ctx, cooldownKey(ticker))
}
