package service

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/repository"
	"github.com/transferdesk/platform/internal/store"
)

// PlayerService manages player records.
type PlayerService struct {
	db        repository.Database
	players   repository.PlayerRepository
	transfers repository.TransferRepository
	outbox    repository.OutboxRepository
	stores    *store.Stores
	logger    *slog.Logger
}

// NewPlayerService creates a PlayerService.
func NewPlayerService(
	db repository.Database,
	players repository.PlayerRepository,
	transfers repository.TransferRepository,
	outbox repository.OutboxRepository,
	stores *store.Stores,
	logger *slog.Logger,
) *PlayerService {
	return &PlayerService{
		db:        db,
		players:   players,
		transfers: transfers,
		outbox:    outbox,
		stores:    stores,
		logger:    logger,
	}
}

// List returns players whose name contains q, ordered by name.
func (s *PlayerService) List(q string) []domain.Player {
	return s.stores.SearchPlayers(q)
}

// Get returns one player.
func (s *PlayerService) Get(ctx context.Context, id string) (*domain.Player, error) {
	if p, ok := s.stores.Players.Get(id); ok {
		return &p, nil
	}
	return s.players.FindByID(ctx, s.db, id)
}

// Create validates and persists a new player.
func (s *PlayerService) Create(ctx context.Context, in domain.PlayerInput) (*domain.Player, error) {
	if err := domain.ValidatePlayer(in).Err(); err != nil {
		return nil, err
	}

	var p domain.Player
	in.Apply(&p)

	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.players.Create(ctx, tx, &p); err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, domain.NewPlayerEvent(domain.EventCreated, p))
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "create player failed", "error", err)
		return nil, err
	}

	s.stores.Players.Put(p)
	s.logger.InfoContext(ctx, "player created", "player_id", p.ID)
	return &p, nil
}

// Update validates and overwrites an existing player.
func (s *PlayerService) Update(ctx context.Context, id string, in domain.PlayerInput) (*domain.Player, error) {
	if err := domain.ValidatePlayer(in).Err(); err != nil {
		return nil, err
	}

	var p domain.Player
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		existing, err := s.players.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		p = *existing
		in.Apply(&p)
		if err := s.players.Update(ctx, tx, &p); err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, domain.NewPlayerEvent(domain.EventUpdated, p))
	})
	if err != nil {
		return nil, err
	}

	s.stores.Players.Put(p)
	return &p, nil
}

// Delete removes a player. Transfers referencing the player are kept.
func (s *PlayerService) Delete(ctx context.Context, id string) error {
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.players.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, domain.NewDeletedEvent(domain.AggregatePlayer, id))
	})
	if err != nil {
		return err
	}

	s.stores.Players.Remove(id)
	s.logger.InfoContext(ctx, "player deleted", "player_id", id)
	return nil
}

// Transfers returns a player's transfer history, most recent first.
func (s *PlayerService) Transfers(ctx context.Context, playerID string) ([]domain.Transfer, error) {
	if _, err := s.Get(ctx, playerID); err != nil {
		return nil, err
	}
	return s.transfers.ListByPlayer(ctx, s.db, playerID)
}
