package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/infra"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Database is a DBTX that can open transactions (a *pgxpool.Pool).
type Database interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PlayerRepository provides access to players.
type PlayerRepository interface {
	// ListAll returns every player ordered by name.
	ListAll(ctx context.Context, db DBTX) ([]domain.Player, error)

	// FindByID returns a player or a NOT_FOUND error.
	FindByID(ctx context.Context, db DBTX, id string) (*domain.Player, error)

	// ListByTeam returns players whose current team is teamID.
	ListByTeam(ctx context.Context, db DBTX, teamID string) ([]domain.Player, error)

	// Create assigns an ID and timestamps and inserts the player. Numeric
	// fields are replaced by the values the database stored.
	Create(ctx context.Context, db DBTX, p *domain.Player) error

	// Update overwrites the mutable columns and stamps updated_at.
	Update(ctx context.Context, db DBTX, p *domain.Player) error

	Delete(ctx context.Context, db DBTX, id string) error
}

// TeamRepository provides access to teams.
type TeamRepository interface {
	ListAll(ctx context.Context, db DBTX) ([]domain.Team, error)
	FindByID(ctx context.Context, db DBTX, id string) (*domain.Team, error)
	Create(ctx context.Context, db DBTX, t *domain.Team) error
	Update(ctx context.Context, db DBTX, t *domain.Team) error
	Delete(ctx context.Context, db DBTX, id string) error
}

// TransferRepository provides access to transfers.
type TransferRepository interface {
	// ListAll returns every transfer, most recent transfer date first.
	ListAll(ctx context.Context, db DBTX) ([]domain.Transfer, error)

	FindByID(ctx context.Context, db DBTX, id string) (*domain.Transfer, error)

	// ListByPlayer returns a player's transfers, most recent first.
	ListByPlayer(ctx context.Context, db DBTX, playerID string) ([]domain.Transfer, error)

	Create(ctx context.Context, db DBTX, t *domain.Transfer) error
	Update(ctx context.Context, db DBTX, t *domain.Transfer) error
	Delete(ctx context.Context, db DBTX, id string) error
}

// UserRepository provides access to users.
type UserRepository interface {
	ListAll(ctx context.Context, db DBTX) ([]domain.User, error)
	FindByID(ctx context.Context, db DBTX, id string) (*domain.User, error)

	// FindByEmail returns nil, nil when no user has the email.
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.User, error)

	// Create inserts a user with the given ID (the credential ID) or a new one.
	Create(ctx context.Context, db DBTX, u *domain.User) error

	// Update overwrites every mutable column except email.
	Update(ctx context.Context, db DBTX, u *domain.User) error

	UpdateRole(ctx context.Context, db DBTX, id string, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, db DBTX, id string) error
}

// AuthUserRepository provides access to auth_users.
type AuthUserRepository interface {
	// FindByEmail returns an auth user by email, or nil if not found.
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.AuthUser, error)

	FindByID(ctx context.Context, db DBTX, id string) (*domain.AuthUser, error)

	// Create inserts a new auth user.
	Create(ctx context.Context, db DBTX, user *domain.AuthUser) error

	UpdatePasswordHash(ctx context.Context, db DBTX, id, hash string) error
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event within the same transaction as the mutation.
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error
}

// RevokedToken is one entry of the persisted revocation list.
type RevokedToken struct {
	JTI       string
	UserID    string
	ExpiresAt time.Time
}

// TokenRepository persists revoked session tokens.
type TokenRepository interface {
	Revoke(ctx context.Context, db DBTX, t RevokedToken) error

	// ListActive returns revocations whose tokens have not yet expired.
	ListActive(ctx context.Context, db DBTX, now time.Time) ([]RevokedToken, error)

	PurgeExpired(ctx context.Context, db DBTX, now time.Time) (int64, error)
}

// PasswordResetRepository persists hashed single-use reset tokens.
type PasswordResetRepository interface {
	Create(ctx context.Context, db DBTX, r domain.PasswordReset) error

	// FindByHash returns nil, nil when no reset has the hash.
	FindByHash(ctx context.Context, db DBTX, tokenHash string) (*domain.PasswordReset, error)

	MarkUsed(ctx context.Context, db DBTX, tokenHash string, at time.Time) error
}

type scanner interface {
	Scan(dest ...any) error
}

func notFoundOr(err error, entity, id, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound(entity, id)
	}
	return domain.ErrBackend(op, err)
}

func requireRow(tag pgconn.CommandTag, entity, id string) error {
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound(entity, id)
	}
	return nil
}

// assignNumerics copies numerics read from the database onto their fields,
// so callers hold the values as stored.
func assignNumerics(fields []**float64, values ...pgtype.Numeric) error {
	for i, n := range values {
		v, err := infra.NumericToFloat(n)
		if err != nil {
			return err
		}
		*fields[i] = v
	}
	return nil
}
