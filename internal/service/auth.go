package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/transferdesk/platform/internal/auth"
	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/repository"
	"github.com/transferdesk/platform/internal/store"
)

// LoginGuard tracks failed sign-ins (guard.Lockout in production).
type LoginGuard interface {
	CheckLocked(ctx context.Context, email string) error
	RecordAttempt(ctx context.Context, email, ip string, success bool)
}

// SessionChange is delivered to OnSessionChange listeners.
type SessionChange struct {
	Event  domain.EventType
	UserID string
	Email  string
}

// Session is returned on sign-up and sign-in.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	UserID    string       `json:"user_id"`
	Email     string       `json:"email"`
	User      *domain.User `json:"user,omitempty"`
}

// AuthRepos groups the repositories used by AuthService.
type AuthRepos struct {
	Credentials repository.AuthUserRepository
	Users       repository.UserRepository
	Tokens      repository.TokenRepository
	Resets      repository.PasswordResetRepository
	Outbox      repository.OutboxRepository
}

// AuthService is the identity provider: credentials, sessions and password resets.
type AuthService struct {
	db       repository.Database
	repos    AuthRepos
	jwtMgr   *auth.JWTManager
	resetMgr *auth.ResetTokenManager
	revoked  *auth.RevocationList
	lockout  LoginGuard
	stores   *store.Stores
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	listeners map[int]func(SessionChange)
	nextID    int
}

// NewAuthService creates an AuthService.
func NewAuthService(
	db repository.Database,
	repos AuthRepos,
	jwtMgr *auth.JWTManager,
	resetMgr *auth.ResetTokenManager,
	revoked *auth.RevocationList,
	lockout LoginGuard,
	stores *store.Stores,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		db:        db,
		repos:     repos,
		jwtMgr:    jwtMgr,
		resetMgr:  resetMgr,
		revoked:   revoked,
		lockout:   lockout,
		stores:    stores,
		logger:    logger,
		now:       time.Now,
		listeners: make(map[int]func(SessionChange)),
	}
}

// OnSessionChange registers fn to be called once per sign-up, sign-in and
// sign-out. The returned function unregisters it.
func (s *AuthService) OnSessionChange(fn func(SessionChange)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *AuthService) notify(change SessionChange) {
	s.mu.Lock()
	fns := make([]func(SessionChange), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

// SignUpInput holds the registration request fields.
type SignUpInput struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
}

// SignUp provisions credentials and a users record (role "user" unless given)
// in one transaction and opens a session.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	fields := map[string]string{}
	if err := domain.ValidateEmail(email); err != nil {
		fields["email"] = "Please enter a valid email address"
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		fields["password"] = err.Error()
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !isRole(role) {
		fields["role"] = "Role must be user, admin, manager or scout"
	}
	if len(fields) > 0 {
		return nil, domain.ErrFieldValidation(fields)
	}

	existing, err := s.repos.Credentials.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrConflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	id := uuid.NewString()
	user := domain.User{ID: id, Name: strings.TrimSpace(in.Name), Email: email, Role: role}

	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.repos.Credentials.Create(ctx, tx, &domain.AuthUser{ID: id, Email: email, PasswordHash: string(hash)}); err != nil {
			return err
		}
		if err := s.repos.Users.Create(ctx, tx, &user); err != nil {
			return err
		}
		if err := s.repos.Outbox.Insert(ctx, tx, domain.NewUserEvent(domain.EventCreated, user)); err != nil {
			return err
		}
		return s.repos.Outbox.Insert(ctx, tx, domain.NewSessionEvent(domain.EventSignedUp, id, email))
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "sign up failed", "error", err)
		return nil, err
	}
	s.stores.Users.Put(user)

	session, err := s.issue(id, email, &user)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user signed up", "user_id", id)
	s.notify(SessionChange{Event: domain.EventSignedUp, UserID: id, Email: email})
	return session, nil
}

// SignIn checks credentials and opens a session. Repeated failures lock the
// email out for a while.
func (s *AuthService) SignIn(ctx context.Context, email, password, ip string) (*Session, error) {
	email = normalizeEmail(email)
	if err := s.lockout.CheckLocked(ctx, email); err != nil {
		return nil, err
	}

	creds, err := s.repos.Credentials.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if creds == nil || bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)) != nil {
		s.lockout.RecordAttempt(ctx, email, ip, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	s.lockout.RecordAttempt(ctx, email, ip, true)

	user, err := s.repos.Users.FindByID(ctx, s.db, creds.ID)
	switch {
	case domain.IsNotFound(err):
		user = nil
	case err != nil:
		return nil, err
	}

	if err := s.repos.Outbox.Insert(ctx, s.db, domain.NewSessionEvent(domain.EventSignedIn, creds.ID, email)); err != nil {
		s.logger.WarnContext(ctx, "record sign-in event failed", "error", err)
	}

	session, err := s.issue(creds.ID, email, user)
	if err != nil {
		return nil, err
	}
	s.notify(SessionChange{Event: domain.EventSignedIn, UserID: creds.ID, Email: email})
	return session, nil
}

// SignOut revokes the session token. The in-memory revocation takes effect
// before persistence, so a persistence failure still ends the session here.
func (s *AuthService) SignOut(ctx context.Context, id auth.Identity) error {
	s.revoked.Revoke(id.TokenID, id.ExpiresAt)
	s.notify(SessionChange{Event: domain.EventSignedOut, UserID: id.UserID, Email: id.Email})

	return inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.repos.Tokens.Revoke(ctx, tx, repository.RevokedToken{
			JTI: id.TokenID, UserID: id.UserID, ExpiresAt: id.ExpiresAt,
		}); err != nil {
			return err
		}
		return s.repos.Outbox.Insert(ctx, tx, domain.NewSessionEvent(domain.EventSignedOut, id.UserID, id.Email))
	})
}

// RequestPasswordReset issues a single-use reset token when the account
// exists. It never reports whether it does.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := domain.ValidateEmail(email); err != nil {
		return domain.ErrFieldValidation(map[string]string{"email": "Please enter a valid email address"})
	}

	creds, err := s.repos.Credentials.FindByEmail(ctx, s.db, email)
	if err != nil {
		s.logger.ErrorContext(ctx, "password reset lookup failed", "error", err)
		return nil
	}
	if creds == nil {
		s.logger.DebugContext(ctx, "password reset for unknown email")
		return nil
	}

	token, digest, expiresAt, err := s.resetMgr.Issue(s.now())
	if err != nil {
		return domain.ErrInternal("issue reset token", err)
	}

	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.repos.Resets.Create(ctx, tx, domain.PasswordReset{
			TokenHash: digest, UserID: creds.ID, ExpiresAt: expiresAt,
		}); err != nil {
			return err
		}
		return s.repos.Outbox.Insert(ctx, tx, domain.NewPasswordResetEvent(creds.ID, email, token, expiresAt))
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "password reset issue failed", "user_id", creds.ID, "error", err)
	}
	return nil
}

// ResetPassword redeems a reset token and replaces the password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := domain.ValidatePassword(newPassword); err != nil {
		return domain.ErrFieldValidation(map[string]string{"password": err.Error()})
	}

	digest := s.resetMgr.Digest(token)
	reset, err := s.repos.Resets.FindByHash(ctx, s.db, digest)
	if err != nil {
		return err
	}
	if reset == nil || reset.UsedAt != nil || !s.now().Before(reset.ExpiresAt) {
		return domain.ErrValidation("reset token is invalid or expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.ErrInternal("hash password", err)
	}

	return inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.repos.Resets.MarkUsed(ctx, tx, digest, s.now()); err != nil {
			return err
		}
		if err := s.repos.Credentials.UpdatePasswordHash(ctx, tx, reset.UserID, string(hash)); err != nil {
			return err
		}
		return s.repos.Outbox.Insert(ctx, tx, domain.NewPasswordResetDoneEvent(reset.UserID))
	})
}

// LoadRevocations fills the in-memory revocation list from revoked_tokens.
func (s *AuthService) LoadRevocations(ctx context.Context) (int, error) {
	active, err := s.repos.Tokens.ListActive(ctx, s.db, s.now())
	if err != nil {
		return 0, err
	}
	entries := make(map[string]time.Time, len(active))
	for _, t := range active {
		entries[t.JTI] = t.ExpiresAt
	}
	s.revoked.Load(entries)
	return len(entries), nil
}

// PruneRevocations drops expired entries from the revocation list and the
// revoked_tokens table. Expired tokens fail validation on their own.
func (s *AuthService) PruneRevocations(ctx context.Context) (int64, error) {
	now := s.now()
	s.revoked.Prune(now)
	n, err := s.repos.Tokens.PurgeExpired(ctx, s.db, now)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *AuthService) issue(userID, email string, user *domain.User) (*Session, error) {
	token, claims, err := s.jwtMgr.GenerateToken(userID, email)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}
	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		UserID:    userID,
		Email:     email,
		User:      user,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isRole(r domain.Role) bool {
	for _, v := range domain.Roles() {
		if v == r {
			return true
		}
	}
	return false
}
