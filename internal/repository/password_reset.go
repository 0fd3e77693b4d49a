package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/transferdesk/platform/internal/domain"
)

type passwordResetRepo struct{}

// NewPasswordResetRepository returns a pgx-backed PasswordResetRepository.
func NewPasswordResetRepository() PasswordResetRepository {
	return &passwordResetRepo{}
}

func (r *passwordResetRepo) Create(ctx context.Context, db DBTX, pr domain.PasswordReset) error {
	_, err := db.Exec(ctx,
		`INSERT INTO password_resets (token_hash, user_id, expires_at) VALUES ($1, $2, $3)`,
		pr.TokenHash, pr.UserID, pr.ExpiresAt)
	if err != nil {
		return domain.ErrBackend("insert password reset", err)
	}
	return nil
}

func (r *passwordResetRepo) FindByHash(ctx context.Context, db DBTX, tokenHash string) (*domain.PasswordReset, error) {
	var pr domain.PasswordReset
	err := db.QueryRow(ctx,
		`SELECT token_hash, user_id, expires_at, used_at FROM password_resets WHERE token_hash = $1`,
		tokenHash).Scan(&pr.TokenHash, &pr.UserID, &pr.ExpiresAt, &pr.UsedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.ErrBackend("find password reset", err)
	}
	return &pr, nil
}

// MarkUsed stamps used_at once. A second call fails with CONFLICT.
func (r *passwordResetRepo) MarkUsed(ctx context.Context, db DBTX, tokenHash string, at time.Time) error {
	tag, err := db.Exec(ctx,
		`UPDATE password_resets SET used_at = $2 WHERE token_hash = $1 AND used_at IS NULL`,
		tokenHash, at)
	if err != nil {
		return domain.ErrBackend("mark password reset used", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict("reset token already used")
	}
	return nil
}
