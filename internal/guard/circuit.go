package guard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// ErrCircuitOpen is returned by Call when the circuit rejects the request.
var ErrCircuitOpen = errors.New("circuit open")

// CircuitBreaker implements a per-dependency circuit breaker, keyed by
// dependency name (for example "s3:exports-bucket").
type CircuitBreaker struct {
	mu            sync.Mutex
	circuits      map[string]*circuit
	failThreshold int
	resetTimeout  time.Duration
	halfOpenMax   int
	now           func() time.Time
}

type circuit struct {
	state       CircuitState
	failures    int
	successes   int
	lastFailure time.Time
}

// NewCircuitBreaker creates a circuit breaker with configurable thresholds.
func NewCircuitBreaker(failThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	if failThreshold <= 0 {
		failThreshold = 1
	}
	return &CircuitBreaker{
		circuits:      make(map[string]*circuit),
		failThreshold: failThreshold,
		resetTimeout:  resetTimeout,
		halfOpenMax:   1,
		now:           time.Now,
	}
}

// Check returns whether the circuit for the given key allows a request.
func (cb *CircuitBreaker) Check(_ context.Context, key string) Result {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c, ok := cb.circuits[key]
	if !ok {
		cb.circuits[key] = &circuit{state: CircuitClosed}
		return allow()
	}

	switch c.state {
	case CircuitOpen:
		since := cb.now().Sub(c.lastFailure)
		if since > cb.resetTimeout {
			c.state = CircuitHalfOpen
			c.successes = 0
			return allow()
		}
		return Result{
			Allowed: false,
			Reason:  fmt.Sprintf("circuit open for %s, resets in %s", key, cb.resetTimeout-since),
			Guard:   "circuit_breaker",
		}
	case CircuitHalfOpen:
		if c.successes >= cb.halfOpenMax {
			return Result{Allowed: false, Reason: "circuit half-open, max probes reached", Guard: "circuit_breaker"}
		}
		return allow()
	default:
		return allow()
	}
}

// State reports the current state for key.
func (cb *CircuitBreaker) State(key string) CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if c, ok := cb.circuits[key]; ok {
		return c.state
	}
	return CircuitClosed
}

// RecordSuccess marks a successful execution for the given key.
func (cb *CircuitBreaker) RecordSuccess(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c, ok := cb.circuits[key]
	if !ok {
		return
	}

	switch c.state {
	case CircuitHalfOpen:
		c.successes++
		if c.successes >= cb.halfOpenMax {
			c.state = CircuitClosed
			c.failures = 0
		}
	case CircuitClosed:
		c.failures = 0
	}
}

// RecordFailure marks a failed execution for the given key.
func (cb *CircuitBreaker) RecordFailure(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c, ok := cb.circuits[key]
	if !ok {
		c = &circuit{state: CircuitClosed}
		cb.circuits[key] = c
	}

	c.failures++
	c.lastFailure = cb.now()

	// A failed half-open probe reopens immediately.
	if c.state == CircuitHalfOpen || c.failures >= cb.failThreshold {
		c.state = CircuitOpen
	}
}

// Call runs fn if the circuit for key allows it and records the outcome.
func (cb *CircuitBreaker) Call(ctx context.Context, key string, fn func(context.Context) error) error {
	if res := cb.Check(ctx, key); !res.Allowed {
		return fmt.Errorf("%w: %s", ErrCircuitOpen, res.Reason)
	}
	if err := fn(ctx); err != nil {
		cb.RecordFailure(key)
		return err
	}
	cb.RecordSuccess(key)
	return nil
}

// ObjectStore is the archive store shape guarded by BreakerStore.
type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, body io.Reader) error
}

// BreakerStore wraps an ObjectStore so a failing bucket stops being called
// for resetTimeout after repeated failures.
type BreakerStore struct {
	Store   ObjectStore
	Breaker *CircuitBreaker
	Name    string
}

// PutObject uploads through the breaker.
func (b BreakerStore) PutObject(ctx context.Context, key, contentType string, body io.Reader) error {
	return b.Breaker.Call(ctx, b.Name, func(ctx context.Context) error {
		return b.Store.PutObject(ctx, key, contentType, body)
	})
}
