package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

// DefaultResetTTL is how long a password reset token stays usable.
const DefaultResetTTL = time.Hour

// ResetTokenManager issues single-use password reset tokens. Only the keyed
// digest of a token is ever persisted.
type ResetTokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewResetTokenManager creates a reset token manager.
func NewResetTokenManager(secret string, ttl time.Duration) *ResetTokenManager {
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	return &ResetTokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue returns a new plaintext token, its digest and its expiry.
func (m *ResetTokenManager) Issue(now time.Time) (token, digest string, expiresAt time.Time, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", time.Time{}, fmt.Errorf("generate reset token: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(raw)
	return token, m.Digest(token), now.Add(m.ttl), nil
}

// Digest returns the storage key of token: base64(HMAC-SHA256(secret, token)).
func (m *ResetTokenManager) Digest(token string) string {
	return base64.RawURLEncoding.EncodeToString(m.sign(token))
}

func (m *ResetTokenManager) sign(data string) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}
