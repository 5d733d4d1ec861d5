package notify

import (
	"context"
	"sync"
	"time"
)

// MemoryCooldown is the in-process Cooldown used when no Redis is
// configured. It only suppresses within one process lifetime, which for a
// batch engine means within one run; cross-run suppression needs the Redis
// backend.
type MemoryCooldown struct {
	seen map[string]time.Time
	ttl  time.Duration
	mu   sync.Mutex
}

// NewMemoryCooldown creates a MemoryCooldown with the given window.
func NewMemoryCooldown(ttl time.Duration) *MemoryCooldown {
	return &MemoryCooldown{
		seen: make(map[string]time.Time),
		ttl:  ttl,
	}
}

// Allow reports whether the key is outside its cooldown window and records
// it as delivered when it is.
func (m *MemoryCooldown) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if last, ok := m.seen[key]; ok && now.Sub(last) < m.ttl {
		return false, nil
	}
	m.seen[key] = now
	return true, nil
}
