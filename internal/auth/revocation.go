package auth

import (
	"sync"
	"time"
)

// RevocationList is the in-memory set of signed-out token ids. Entries are
// kept until the token would have expired anyway.
type RevocationList struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewRevocationList returns an empty list.
func NewRevocationList() *RevocationList {
	return &RevocationList{entries: make(map[string]time.Time)}
}

// Revoke marks jti as signed out until expiresAt.
func (l *RevocationList) Revoke(jti string, expiresAt time.Time) {
	l.mu.Lock()
	l.entries[jti] = expiresAt
	l.mu.Unlock()
}

// IsRevoked reports whether jti was signed out.
func (l *RevocationList) IsRevoked(jti string) bool {
	l.mu.RLock()
	_, ok := l.entries[jti]
	l.mu.RUnlock()
	return ok
}

// Load replaces the list contents, typically from revoked_tokens at startup.
func (l *RevocationList) Load(entries map[string]time.Time) {
	l.mu.Lock()
	l.entries = make(map[string]time.Time, len(entries))
	for k, v := range entries {
		l.entries[k] = v
	}
	l.mu.Unlock()
}

// Prune drops entries that expired before now and returns how many were removed.
func (l *RevocationList) Prune(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for jti, exp := range l.entries {
		if exp.Before(now) {
			delete(l.entries, jti)
			n++
		}
	}
	return n
}

// Len returns the number of tracked entries.
func (l *RevocationList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
