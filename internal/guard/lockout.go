package guard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/transferdesk/platform/internal/domain"
)

// Default lockout policy.
const (
	MaxAttempts   = 5
	LockoutWindow = 15 * time.Minute
)

// AttemptDB is the subset of a pgx pool used by Lockout.
type AttemptDB interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Lockout blocks sign-in for an email after repeated failures, backed by
// the login_attempts table.
type Lockout struct {
	db          AttemptDB
	maxAttempts int
	window      time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewLockout creates a lockout guard. Non-positive values fall back to the defaults.
func NewLockout(db AttemptDB, maxAttempts int, window time.Duration, logger *slog.Logger) *Lockout {
	if maxAttempts <= 0 {
		maxAttempts = MaxAttempts
	}
	if window <= 0 {
		window = LockoutWindow
	}
	return &Lockout{db: db, maxAttempts: maxAttempts, window: window, logger: logger, now: time.Now}
}

// RecordAttempt inserts a login attempt row. Failures to record are logged only.
func (l *Lockout) RecordAttempt(ctx context.Context, email, ip string, success bool) {
	_, err := l.db.Exec(ctx, `
		INSERT INTO login_attempts (email, ip, success)
		VALUES ($1, $2, $3)`,
		normalizeEmail(email), ip, success)
	if err != nil {
		l.logger.WarnContext(ctx, "record login attempt failed", "error", err)
	}
}

// CheckLocked returns ErrAccountLocked if the account has at least the
// configured number of failed logins within the window.
func (l *Lockout) CheckLocked(ctx context.Context, email string) error {
	var count int
	err := l.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM login_attempts
		WHERE email = $1 AND success = false
		  AND created_at > $2`,
		normalizeEmail(email), l.now().Add(-l.window)).Scan(&count)
	if err != nil {
		// Fail open: a lockout table outage must not block every sign-in.
		l.logger.WarnContext(ctx, "lockout check failed", "error", err)
		return nil
	}
	if count >= l.maxAttempts {
		return domain.ErrAccountLocked(fmt.Sprintf("too many failed login attempts, try again in %s", l.window))
	}
	return nil
}

// Purge deletes attempts older than the window.
func (l *Lockout) Purge(ctx context.Context) (int64, error) {
	tag, err := l.db.Exec(ctx, `DELETE FROM login_attempts WHERE created_at < $1`, l.now().Add(-l.window))
	if err != nil {
		return 0, fmt.Errorf("purge login attempts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
