package guard

import (
	"context"
	"sync"
	"time"
)

// DefaultIdempotencyTTL is how long a processed key is remembered.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyGuard deduplicates create requests by Idempotency-Key header.
type IdempotencyGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

// NewIdempotencyGuard creates a new in-memory idempotency guard.
func NewIdempotencyGuard(ttl time.Duration) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyGuard{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Check returns whether the given key has already been processed. An empty
// key is always allowed.
func (ig *IdempotencyGuard) Check(_ context.Context, key string) Result {
	if key == "" {
		return allow()
	}

	ig.mu.Lock()
	defer ig.mu.Unlock()

	now := ig.now()
	if at, ok := ig.seen[key]; ok && now.Sub(at) < ig.ttl {
		return Result{
			Allowed: false,
			Reason:  "duplicate request: idempotency key already processed",
			Guard:   "idempotency",
		}
	}

	ig.seen[key] = now
	return allow()
}

// Remove deletes a key so a failed request can be retried with it.
func (ig *IdempotencyGuard) Remove(key string) {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	delete(ig.seen, key)
}

// Sweep drops expired keys.
func (ig *IdempotencyGuard) Sweep() int {
	ig.mu.Lock()
	defer ig.mu.Unlock()

	now := ig.now()
	n := 0
	for k, at := range ig.seen {
		if now.Sub(at) >= ig.ttl {
			delete(ig.seen, k)
			n++
		}
	}
	return n
}
