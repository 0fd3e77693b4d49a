package repository

import (
	"context"
	"time"

	"github.com/transferdesk/platform/internal/domain"
)

type tokenRepo struct{}

// NewTokenRepository returns a pgx-backed TokenRepository.
func NewTokenRepository() TokenRepository {
	return &tokenRepo{}
}

func (r *tokenRepo) Revoke(ctx context.Context, db DBTX, t RevokedToken) error {
	_, err := db.Exec(ctx, `
		INSERT INTO revoked_tokens (jti, user_id, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (jti) DO NOTHING`,
		t.JTI, t.UserID, t.ExpiresAt)
	if err != nil {
		return domain.ErrBackend("revoke token", err)
	}
	return nil
}

func (r *tokenRepo) ListActive(ctx context.Context, db DBTX, now time.Time) ([]RevokedToken, error) {
	rows, err := db.Query(ctx,
		`SELECT jti, user_id, expires_at FROM revoked_tokens WHERE expires_at > $1`, now)
	if err != nil {
		return nil, domain.ErrBackend("list revoked tokens", err)
	}
	defer rows.Close()

	var out []RevokedToken
	for rows.Next() {
		var t RevokedToken
		if err := rows.Scan(&t.JTI, &t.UserID, &t.ExpiresAt); err != nil {
			return nil, domain.ErrBackend("scan revoked token", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrBackend("list revoked tokens", err)
	}
	return out, nil
}

func (r *tokenRepo) PurgeExpired(ctx context.Context, db DBTX, now time.Time) (int64, error) {
	tag, err := db.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, domain.ErrBackend("purge revoked tokens", err)
	}
	return tag.RowsAffected(), nil
}
