package redis

import (
	"context"
	"fmt"
	"time"
)

// Cooldown implements notify.Cooldown on a Redis SETNX-with-TTL key per
// alert condition. The first run to claim a key delivers the alert; later
// runs inside the TTL see the key and suppress.
type Cooldown struct {
	client *Client
	ttl    time.Duration
}

// NewCooldown creates a Cooldown with the given suppression window.
func NewCooldown(c *Client, ttl time.Duration) *Cooldown {
	return &Cooldown{client: c, ttl: ttl}
}

func cooldownKey(key string) string { return "qw:cooldown:" + key }

// Allow atomically claims the key. It returns true exactly once per TTL
// window across all engine invocations sharing this Redis.
func (c *Cooldown) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := c.client.rdb.SetNX(ctx, cooldownKey(key), 1, c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: cooldown %s: %w", key, err)
	}
	return ok, nil
}
