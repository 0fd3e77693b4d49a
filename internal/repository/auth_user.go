package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/transferdesk/platform/internal/domain"
)

// PgAuthUserRepository implements AuthUserRepository using pgx.
type PgAuthUserRepository struct{}

// NewPgAuthUserRepository creates a new PgAuthUserRepository.
func NewPgAuthUserRepository() *PgAuthUserRepository {
	return &PgAuthUserRepository{}
}

// FindByEmail returns an auth user by email, or nil if not found.
func (r *PgAuthUserRepository) FindByEmail(ctx context.Context, db DBTX, email string) (*domain.AuthUser, error) {
	u, err := scanAuthUser(db.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at, updated_at
		 FROM auth_users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.ErrBackend("find credentials", err)
	}
	return u, nil
}

// FindByID returns an auth user by ID.
func (r *PgAuthUserRepository) FindByID(ctx context.Context, db DBTX, id string) (*domain.AuthUser, error) {
	u, err := scanAuthUser(db.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at, updated_at
		 FROM auth_users WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "user", id, "find credentials")
	}
	return u, nil
}

// Create inserts a new auth user.
func (r *PgAuthUserRepository) Create(ctx context.Context, db DBTX, user *domain.AuthUser) error {
	err := db.QueryRow(ctx,
		`INSERT INTO auth_users (id, email, password_hash) VALUES ($1, $2, $3)
		 RETURNING created_at, updated_at`,
		user.ID, user.Email, user.PasswordHash).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return domain.ErrBackend("insert credentials", err)
	}
	return nil
}

// UpdatePasswordHash replaces the password hash for the given user.
func (r *PgAuthUserRepository) UpdatePasswordHash(ctx context.Context, db DBTX, id, hash string) error {
	tag, err := db.Exec(ctx,
		`UPDATE auth_users SET password_hash = $1, updated_at = now() WHERE id = $2`,
		hash, id)
	if err != nil {
		return domain.ErrBackend("update password", err)
	}
	return requireRow(tag, "user", id)
}

func scanAuthUser(row scanner) (*domain.AuthUser, error) {
	u := &domain.AuthUser{}
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}
