package httpmiddleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cooldown suppresses rapid re-submissions from the same scanning device.
// The original client enforced this as a 3 second debounce after each
// scan; keeping the key in Redis makes it hold across scanner restarts.
// This is a UX debounce, not a correctness mechanism. The duplicate guard
// lives in the attendance store.
type Cooldown struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCooldown creates a cooldown tracker. A nil client disables it.
func NewCooldown(client *redis.Client, ttl time.Duration) *Cooldown {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &Cooldown{client: client, ttl: ttl}
}

// Allow reports whether the device may submit now. The first caller sets
// the key; everyone else waits out the TTL. Redis being down fails open:
// losing the debounce is better than blocking scans.
func (c *Cooldown) Allow(ctx context.Context, deviceID string) bool {
	if c == nil || c.client == nil || deviceID == "" {
		return true
	}
	ok, err := c.client.SetNX(ctx, "cooldown:"+deviceID, 1, c.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}
