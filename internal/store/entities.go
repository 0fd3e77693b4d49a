package store

import (
	"cmp"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/repository"
)

// Stores groups one collection per entity type.
type Stores struct {
	Players   *Collection[domain.Player]
	Teams     *Collection[domain.Team]
	Transfers *Collection[domain.Transfer]
	Users     *Collection[domain.User]
}

// Repositories are the entity repositories the stores load from.
type Repositories struct {
	Players   repository.PlayerRepository
	Teams     repository.TeamRepository
	Transfers repository.TransferRepository
	Users     repository.UserRepository
}

// New wires a collection per entity to its repository.
func New(db repository.DBTX, repos Repositories) *Stores {
	return &Stores{
		Players: NewCollection(
			func(p domain.Player) string { return p.ID },
			func(a, b domain.Player) int { return cmp.Compare(a.Name, b.Name) },
			func(ctx context.Context) ([]domain.Player, error) { return repos.Players.ListAll(ctx, db) },
		),
		Teams: NewCollection(
			func(t domain.Team) string { return t.ID },
			func(a, b domain.Team) int { return cmp.Compare(a.Name, b.Name) },
			func(ctx context.Context) ([]domain.Team, error) { return repos.Teams.ListAll(ctx, db) },
		),
		Transfers: NewCollection(
			func(t domain.Transfer) string { return t.ID },
			func(a, b domain.Transfer) int { return b.TransferDate.Compare(a.TransferDate) },
			func(ctx context.Context) ([]domain.Transfer, error) { return repos.Transfers.ListAll(ctx, db) },
		),
		Users: NewCollection(
			func(u domain.User) string { return u.ID },
			func(a, b domain.User) int { return cmp.Compare(a.Name, b.Name) },
			func(ctx context.Context) ([]domain.User, error) { return repos.Users.ListAll(ctx, db) },
		),
	}
}

// LoadAll loads every collection, stopping at the first failure.
func (s *Stores) LoadAll(ctx context.Context) error {
	for _, load := range []func(context.Context) error{
		s.Players.Load, s.Teams.Load, s.Transfers.Load, s.Users.Load,
	} {
		if err := load(ctx); err != nil {
			return err
		}
	}
	return nil
}

// StartSync reloads every collection each interval until ctx is cancelled,
// picking up writes made by other processes. Failures keep the previous
// contents and are logged.
func (s *Stores) StartSync(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.LoadAll(ctx); err != nil && ctx.Err() == nil {
					logger.WarnContext(ctx, "store sync failed", "error", err)
				}
			}
		}
	}()
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

func normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// SearchPlayers matches player names case-insensitively. An empty query returns all.
func (s *Stores) SearchPlayers(q string) []domain.Player {
	q = normalize(q)
	return s.Players.Filter(func(p domain.Player) bool { return contains(p.Name, q) })
}

// SearchTeams matches team names case-insensitively.
func (s *Stores) SearchTeams(q string) []domain.Team {
	q = normalize(q)
	return s.Teams.Filter(func(t domain.Team) bool { return contains(t.Name, q) })
}

// SearchTransfers matches the snapshotted player name.
func (s *Stores) SearchTransfers(q string) []domain.Transfer {
	q = normalize(q)
	return s.Transfers.Filter(func(t domain.Transfer) bool { return contains(t.PlayerName, q) })
}

// SearchUsers matches name or email.
func (s *Stores) SearchUsers(q string) []domain.User {
	q = normalize(q)
	return s.Users.Filter(func(u domain.User) bool { return contains(u.Name, q) || contains(u.Email, q) })
}
