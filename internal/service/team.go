package service

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/repository"
	"github.com/transferdesk/platform/internal/store"
)

// TeamService manages team records.
type TeamService struct {
	db      repository.Database
	teams   repository.TeamRepository
	players repository.PlayerRepository
	outbox  repository.OutboxRepository
	stores  *store.Stores
	logger  *slog.Logger
}

// NewTeamService creates a TeamService.
func NewTeamService(
	db repository.Database,
	teams repository.TeamRepository,
	players repository.PlayerRepository,
	outbox repository.OutboxRepository,
	stores *store.Stores,
	logger *slog.Logger,
) *TeamService {
	return &TeamService{db: db, teams: teams, players: players, outbox: outbox, stores: stores, logger: logger}
}

// List returns teams whose name contains q, ordered by name.
func (s *TeamService) List(q string) []domain.Team {
	return s.stores.SearchTeams(q)
}

// Get returns one team.
func (s *TeamService) Get(ctx context.Context, id string) (*domain.Team, error) {
	if t, ok := s.stores.Teams.Get(id); ok {
		return &t, nil
	}
	return s.teams.FindByID(ctx, s.db, id)
}

// Create validates and persists a new team.
func (s *TeamService) Create(ctx context.Context, in domain.TeamInput) (*domain.Team, error) {
	if err := domain.ValidateTeam(in).Err(); err != nil {
		return nil, err
	}

	var t domain.Team
	in.Apply(&t)

	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.teams.Create(ctx, tx, &t); err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, domain.NewTeamEvent(domain.EventCreated, t))
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "create team failed", "error", err)
		return nil, err
	}

	s.stores.Teams.Put(t)
	s.logger.InfoContext(ctx, "team created", "team_id", t.ID)
	return &t, nil
}

// Update validates and overwrites an existing team.
func (s *TeamService) Update(ctx context.Context, id string, in domain.TeamInput) (*domain.Team, error) {
	if err := domain.ValidateTeam(in).Err(); err != nil {
		return nil, err
	}

	var t domain.Team
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		existing, err := s.teams.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		t = *existing
		in.Apply(&t)
		if err := s.teams.Update(ctx, tx, &t); err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, domain.NewTeamEvent(domain.EventUpdated, t))
	})
	if err != nil {
		return nil, err
	}

	s.stores.Teams.Put(t)
	return &t, nil
}

// Delete removes a team. Players keep their currentTeam value.
func (s *TeamService) Delete(ctx context.Context, id string) error {
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.teams.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, domain.NewDeletedEvent(domain.AggregateTeam, id))
	})
	if err != nil {
		return err
	}

	s.stores.Teams.Remove(id)
	s.logger.InfoContext(ctx, "team deleted", "team_id", id)
	return nil
}

// Players returns the squad of a team, ordered by name.
func (s *TeamService) Players(ctx context.Context, teamID string) ([]domain.Player, error) {
	if _, err := s.Get(ctx, teamID); err != nil {
		return nil, err
	}
	return s.players.ListByTeam(ctx, s.db, teamID)
}
