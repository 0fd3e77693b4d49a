package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/repository"
	"github.com/transferdesk/platform/internal/store"
)

// UserService manages back office user records (not credentials).
type UserService struct {
	db     repository.Database
	users  repository.UserRepository
	outbox repository.OutboxRepository
	stores *store.Stores
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	db repository.Database,
	users repository.UserRepository,
	outbox repository.OutboxRepository,
	stores *store.Stores,
	logger *slog.Logger,
) *UserService {
	return &UserService{db: db, users: users, outbox: outbox, stores: stores, logger: logger}
}

// List returns users whose name or email contains q, ordered by name.
func (s *UserService) List(q string) []domain.User {
	return s.stores.SearchUsers(q)
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := s.stores.Users.Get(id); ok {
		return &u, nil
	}
	return s.users.FindByID(ctx, s.db, id)
}

// RoleOf implements auth.RoleSource. It reads the repository so role changes
// made by another instance are seen on the next request.
func (s *UserService) RoleOf(ctx context.Context, userID string) (domain.Role, error) {
	u, err := s.users.FindByID(ctx, s.db, userID)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

// Update validates and overwrites a user. Email is write-once: a submitted
// email that differs from the stored one is a field error.
func (s *UserService) Update(ctx context.Context, id string, in domain.UserInput) (*domain.User, error) {
	if err := domain.ValidateUser(in).Err(); err != nil {
		return nil, err
	}

	var u domain.User
	var roleChanged bool
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		existing, err := s.users.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !strings.EqualFold(strings.TrimSpace(in.Email), existing.Email) {
			return domain.ErrFieldValidation(map[string]string{"email": "Email cannot be changed"})
		}
		u = *existing
		in.Apply(&u)
		roleChanged = u.Role != existing.Role

		if err := s.users.Update(ctx, tx, &u); err != nil {
			return err
		}
		if err := s.outbox.Insert(ctx, tx, domain.NewUserEvent(domain.EventUpdated, u)); err != nil {
			return err
		}
		if roleChanged {
			return s.outbox.Insert(ctx, tx, domain.NewUserEvent(domain.EventRoleChanged, u))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.stores.Users.Put(u)
	if roleChanged {
		s.logger.InfoContext(ctx, "user role changed", "user_id", u.ID, "role", u.Role)
	}
	return &u, nil
}

// UpdateRole changes only the role of a user.
func (s *UserService) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	if !isRole(role) {
		return nil, domain.ErrFieldValidation(map[string]string{"role": "Role must be user, admin, manager or scout"})
	}

	var u *domain.User
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		if u, err = s.users.UpdateRole(ctx, tx, id, role); err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, domain.NewUserEvent(domain.EventRoleChanged, *u))
	})
	if err != nil {
		return nil, err
	}

	s.stores.Users.Put(*u)
	s.logger.InfoContext(ctx, "user role changed", "user_id", id, "role", role)
	return u, nil
}

// Delete removes the user record. Credentials are left in place, so the
// account can still sign in but holds no role.
func (s *UserService) Delete(ctx context.Context, id string) error {
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.users.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, domain.NewDeletedEvent(domain.AggregateUser, id))
	})
	if err != nil {
		return err
	}

	s.stores.Users.Remove(id)
	return nil
}

// ProfileInput is what a user may change about themselves.
type ProfileInput struct {
	Name string `json:"name"`
}

// UpdateProfile lets the signed-in user rename themselves.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.User, error) {
	if len([]rune(strings.TrimSpace(in.Name))) < 2 {
		return nil, domain.ErrFieldValidation(map[string]string{"name": "Name must be at least 2 characters long"})
	}

	var u domain.User
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		existing, err := s.users.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		u = *existing
		u.Name = strings.TrimSpace(in.Name)
		if err := s.users.Update(ctx, tx, &u); err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, domain.NewUserEvent(domain.EventUpdated, u))
	})
	if err != nil {
		return nil, err
	}

	s.stores.Users.Put(u)
	return &u, nil
}
