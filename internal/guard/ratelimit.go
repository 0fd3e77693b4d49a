package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token bucket limiter (one bucket per client IP).
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

// NewRateLimiter allows perSecond requests per key with the given burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idleTTL: 3 * time.Minute,
		now:     time.Now,
	}
}

// Check consumes one token for key.
func (rl *RateLimiter) Check(_ context.Context, key string) Result {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	e, ok := rl.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.entries[key] = e
	}
	e.lastSeen = now

	if !e.limiter.AllowN(now, 1) {
		return Result{
			Allowed: false,
			Reason:  fmt.Sprintf("rate limit exceeded: %.2f/s burst %d", float64(rl.limit), rl.burst),
			Guard:   "rate_limiter",
		}
	}
	return allow()
}

// Sweep evicts keys idle for longer than the idle TTL.
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idleTTL)
	n := 0
	for key, e := range rl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(rl.entries, key)
			n++
		}
	}
	return n
}

// StartSweeper evicts idle keys every interval until ctx is cancelled.
func (rl *RateLimiter) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Sweep()
			}
		}
	}()
}
