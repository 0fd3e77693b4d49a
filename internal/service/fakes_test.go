package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/repository"
	"github.com/transferdesk/platform/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// fakeTx satisfies pgx.Tx for the fake repositories, which ignore their DBTX.
type fakeTx struct {
	pgx.Tx
	db *fakeDB
}

func (t *fakeTx) Commit(context.Context) error {
	if t.db.commitErr != nil {
		return t.db.commitErr
	}
	t.db.commits++
	return nil
}

func (t *fakeTx) Rollback(context.Context) error { return nil }

type fakeDB struct {
	commits   int
	beginErr  error
	commitErr error
}

func (d *fakeDB) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("fakeDB: unexpected Exec")
}

func (d *fakeDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("fakeDB: unexpected Query")
}

func (d *fakeDB) QueryRow(context.Context, string, ...interface{}) pgx.Row { return nil }

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	return &fakeTx{db: d}, nil
}

var stamp = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// --- entity repositories ---

type memPlayers struct{ rows map[string]domain.Player }

func (m *memPlayers) ListAll(context.Context, repository.DBTX) ([]domain.Player, error) {
	out := []domain.Player{}
	for _, p := range m.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memPlayers) FindByID(_ context.Context, _ repository.DBTX, id string) (*domain.Player, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound("player", id)
	}
	return &p, nil
}

func (m *memPlayers) ListByTeam(_ context.Context, _ repository.DBTX, teamID string) ([]domain.Player, error) {
	out := []domain.Player{}
	for _, p := range m.rows {
		if p.CurrentTeam == teamID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPlayers) Create(_ context.Context, _ repository.DBTX, p *domain.Player) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt, p.UpdatedAt = stamp, stamp
	m.rows[p.ID] = *p
	return nil
}

func (m *memPlayers) Update(_ context.Context, _ repository.DBTX, p *domain.Player) error {
	if _, ok := m.rows[p.ID]; !ok {
		return domain.ErrNotFound("player", p.ID)
	}
	m.rows[p.ID] = *p
	return nil
}

func (m *memPlayers) Delete(_ context.Context, _ repository.DBTX, id string) error {
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound("player", id)
	}
	delete(m.rows, id)
	return nil
}

type memTeams struct{ rows map[string]domain.Team }

func (m *memTeams) ListAll(context.Context, repository.DBTX) ([]domain.Team, error) {
	out := []domain.Team{}
	for _, t := range m.rows {
		out = append(out, t)
	}
	return out, nil
}

func (m *memTeams) FindByID(_ context.Context, _ repository.DBTX, id string) (*domain.Team, error) {
	t, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound("team", id)
	}
	return &t, nil
}

func (m *memTeams) Create(_ context.Context, _ repository.DBTX, t *domain.Team) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	m.rows[t.ID] = *t
	return nil
}

func (m *memTeams) Update(_ context.Context, _ repository.DBTX, t *domain.Team) error {
	if _, ok := m.rows[t.ID]; !ok {
		return domain.ErrNotFound("team", t.ID)
	}
	m.rows[t.ID] = *t
	return nil
}

func (m *memTeams) Delete(_ context.Context, _ repository.DBTX, id string) error {
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound("team", id)
	}
	delete(m.rows, id)
	return nil
}

type memTransfers struct{ rows map[string]domain.Transfer }

func (m *memTransfers) ListAll(context.Context, repository.DBTX) ([]domain.Transfer, error) {
	out := []domain.Transfer{}
	for _, t := range m.rows {
		out = append(out, t)
	}
	return out, nil
}

func (m *memTransfers) FindByID(_ context.Context, _ repository.DBTX, id string) (*domain.Transfer, error) {
	t, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound("transfer", id)
	}
	return &t, nil
}

func (m *memTransfers) ListByPlayer(_ context.Context, _ repository.DBTX, playerID string) ([]domain.Transfer, error) {
	out := []domain.Transfer{}
	for _, t := range m.rows {
		if t.PlayerID == playerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTransfers) Create(_ context.Context, _ repository.DBTX, t *domain.Transfer) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	m.rows[t.ID] = *t
	return nil
}

func (m *memTransfers) Update(_ context.Context, _ repository.DBTX, t *domain.Transfer) error {
	if _, ok := m.rows[t.ID]; !ok {
		return domain.ErrNotFound("transfer", t.ID)
	}
	m.rows[t.ID] = *t
	return nil
}

func (m *memTransfers) Delete(_ context.Context, _ repository.DBTX, id string) error {
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound("transfer", id)
	}
	delete(m.rows, id)
	return nil
}

type memUsers struct {
	rows    map[string]domain.User
	findErr error
}

func (m *memUsers) ListAll(context.Context, repository.DBTX) ([]domain.User, error) {
	out := []domain.User{}
	for _, u := range m.rows {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) FindByID(_ context.Context, _ repository.DBTX, id string) (*domain.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound("user", id)
	}
	return &u, nil
}

func (m *memUsers) FindByEmail(_ context.Context, _ repository.DBTX, email string) (*domain.User, error) {
	for _, u := range m.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Create(_ context.Context, _ repository.DBTX, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	m.rows[u.ID] = *u
	return nil
}

func (m *memUsers) Update(_ context.Context, _ repository.DBTX, u *domain.User) error {
	old, ok := m.rows[u.ID]
	if !ok {
		return domain.ErrNotFound("user", u.ID)
	}
	u.Email = old.Email
	m.rows[u.ID] = *u
	return nil
}

func (m *memUsers) UpdateRole(_ context.Context, _ repository.DBTX, id string, role domain.Role) (*domain.User, error) {
	u, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound("user", id)
	}
	u.Role = role
	m.rows[id] = u
	return &u, nil
}

func (m *memUsers) Delete(_ context.Context, _ repository.DBTX, id string) error {
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound("user", id)
	}
	delete(m.rows, id)
	return nil
}

// --- auth repositories ---

type memCredentials struct{ rows map[string]domain.AuthUser }

func (m *memCredentials) FindByEmail(_ context.Context, _ repository.DBTX, email string) (*domain.AuthUser, error) {
	for _, u := range m.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memCredentials) FindByID(_ context.Context, _ repository.DBTX, id string) (*domain.AuthUser, error) {
	u, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound("user", id)
	}
	return &u, nil
}

func (m *memCredentials) Create(_ context.Context, _ repository.DBTX, u *domain.AuthUser) error {
	m.rows[u.ID] = *u
	return nil
}

func (m *memCredentials) UpdatePasswordHash(_ context.Context, _ repository.DBTX, id, hash string) error {
	u, ok := m.rows[id]
	if !ok {
		return domain.ErrNotFound("user", id)
	}
	u.PasswordHash = hash
	m.rows[id] = u
	return nil
}

type memTokens struct {
	rows      []repository.RevokedToken
	revokeErr error
}

func (m *memTokens) Revoke(_ context.Context, _ repository.DBTX, t repository.RevokedToken) error {
	if m.revokeErr != nil {
		return m.revokeErr
	}
	m.rows = append(m.rows, t)
	return nil
}

func (m *memTokens) ListActive(_ context.Context, _ repository.DBTX, now time.Time) ([]repository.RevokedToken, error) {
	var out []repository.RevokedToken
	for _, t := range m.rows {
		if t.ExpiresAt.After(now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTokens) PurgeExpired(_ context.Context, _ repository.DBTX, now time.Time) (int64, error) {
	kept := m.rows[:0]
	for _, t := range m.rows {
		if t.ExpiresAt.After(now) {
			kept = append(kept, t)
		}
	}
	n := int64(len(m.rows) - len(kept))
	m.rows = kept
	return n, nil
}

type memResets struct{ rows map[string]domain.PasswordReset }

func (m *memResets) Create(_ context.Context, _ repository.DBTX, r domain.PasswordReset) error {
	m.rows[r.TokenHash] = r
	return nil
}

func (m *memResets) FindByHash(_ context.Context, _ repository.DBTX, hash string) (*domain.PasswordReset, error) {
	r, ok := m.rows[hash]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memResets) MarkUsed(_ context.Context, _ repository.DBTX, hash string, at time.Time) error {
	r, ok := m.rows[hash]
	if !ok || r.UsedAt != nil {
		return domain.ErrConflict("reset token already used")
	}
	r.UsedAt = &at
	m.rows[hash] = r
	return nil
}

type memOutbox struct {
	mu     sync.Mutex
	drafts []domain.OutboxDraft
}

func (m *memOutbox) Insert(_ context.Context, _ repository.DBTX, d domain.OutboxDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts = append(m.drafts, d)
	return nil
}

func (m *memOutbox) topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.drafts))
	for i, d := range m.drafts {
		out[i] = d.Topic("td")
	}
	return out
}

type fakeLockout struct {
	locked   bool
	attempts []bool
}

func (f *fakeLockout) CheckLocked(context.Context, string) error {
	if f.locked {
		return domain.ErrAccountLocked("too many failed login attempts")
	}
	return nil
}

func (f *fakeLockout) RecordAttempt(_ context.Context, _, _ string, success bool) {
	f.attempts = append(f.attempts, success)
}

// --- fixture ---

type fixture struct {
	db        *fakeDB
	players   *memPlayers
	teams     *memTeams
	transfers *memTransfers
	users     *memUsers
	outbox    *memOutbox
	stores    *store.Stores
}

func newFixture() *fixture {
	f := &fixture{
		db:        &fakeDB{},
		players:   &memPlayers{rows: map[string]domain.Player{}},
		teams:     &memTeams{rows: map[string]domain.Team{}},
		transfers: &memTransfers{rows: map[string]domain.Transfer{}},
		users:     &memUsers{rows: map[string]domain.User{}},
		outbox:    &memOutbox{},
	}
	f.stores = store.New(f.db, store.Repositories{
		Players: f.players, Teams: f.teams, Transfers: f.transfers, Users: f.users,
	})
	return f
}

func (f *fixture) playerService() *PlayerService {
	return NewPlayerService(f.db, f.players, f.transfers, f.outbox, f.stores, discardLogger())
}

func (f *fixture) teamService() *TeamService {
	return NewTeamService(f.db, f.teams, f.players, f.outbox, f.stores, discardLogger())
}

func (f *fixture) transferService() *TransferService {
	return NewTransferService(f.db, f.transfers, f.players, f.outbox, f.stores, discardLogger())
}

func (f *fixture) userService() *UserService {
	return NewUserService(f.db, f.users, f.outbox, f.stores, discardLogger())
}
