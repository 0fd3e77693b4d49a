package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/transferdesk/platform/internal/domain"
)

const userColumns = `id, name, email, role, department, phone, bio, created_at, updated_at`

type userRepo struct{}

// NewUserRepository returns a pgx-backed UserRepository.
func NewUserRepository() UserRepository {
	return &userRepo{}
}

func (r *userRepo) ListAll(ctx context.Context, db DBTX) ([]domain.User, error) {
	rows, err := db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, domain.ErrBackend("list users", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, domain.ErrBackend("scan user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrBackend("list users", err)
	}
	return users, nil
}

func (r *userRepo) FindByID(ctx context.Context, db DBTX, id string) (*domain.User, error) {
	u, err := scanUser(db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "user", id, "find user")
	}
	return u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, db DBTX, email string) (*domain.User, error) {
	u, err := scanUser(db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.ErrBackend("find user by email", err)
	}
	return u, nil
}

func (r *userRepo) Create(ctx context.Context, db DBTX, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	err := db.QueryRow(ctx, `
		INSERT INTO users (id, name, email, role, department, phone, bio)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		u.ID, u.Name, u.Email, string(u.Role), string(u.Department), u.Phone, u.Bio,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.ErrBackend("insert user", err)
	}
	return nil
}

// Update never writes email.
func (r *userRepo) Update(ctx context.Context, db DBTX, u *domain.User) error {
	err := db.QueryRow(ctx, `
		UPDATE users SET name = $2, role = $3, department = $4, phone = $5, bio = $6, updated_at = now()
		WHERE id = $1
		RETURNING email, created_at, updated_at`,
		u.ID, u.Name, string(u.Role), string(u.Department), u.Phone, u.Bio,
	).Scan(&u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return notFoundOr(err, "user", u.ID, "update user")
	}
	return nil
}

func (r *userRepo) UpdateRole(ctx context.Context, db DBTX, id string, role domain.Role) (*domain.User, error) {
	u, err := scanUser(db.QueryRow(ctx, `
		UPDATE users SET role = $2, updated_at = now() WHERE id = $1
		RETURNING `+userColumns, id, string(role)))
	if err != nil {
		return nil, notFoundOr(err, "user", id, "update user role")
	}
	return u, nil
}

func (r *userRepo) Delete(ctx context.Context, db DBTX, id string) error {
	tag, err := db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return domain.ErrBackend("delete user", err)
	}
	return requireRow(tag, "user", id)
}

func scanUser(row scanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Department, &u.Phone, &u.Bio,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
