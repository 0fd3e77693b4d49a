package service

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/repository"
	"github.com/transferdesk/platform/internal/store"
)

// TransferService manages transfer records.
type TransferService struct {
	db        repository.Database
	transfers repository.TransferRepository
	players   repository.PlayerRepository
	outbox    repository.OutboxRepository
	stores    *store.Stores
	logger    *slog.Logger
}

// NewTransferService creates a TransferService.
func NewTransferService(
	db repository.Database,
	transfers repository.TransferRepository,
	players repository.PlayerRepository,
	outbox repository.OutboxRepository,
	stores *store.Stores,
	logger *slog.Logger,
) *TransferService {
	return &TransferService{db: db, transfers: transfers, players: players, outbox: outbox, stores: stores, logger: logger}
}

// List returns transfers whose player name contains q, most recent first.
func (s *TransferService) List(q string) []domain.Transfer {
	return s.stores.SearchTransfers(q)
}

// Get returns one transfer.
func (s *TransferService) Get(ctx context.Context, id string) (*domain.Transfer, error) {
	if t, ok := s.stores.Transfers.Get(id); ok {
		return &t, nil
	}
	return s.transfers.FindByID(ctx, s.db, id)
}

// Create validates and persists a transfer, snapshotting the player's
// current name into PlayerName.
func (s *TransferService) Create(ctx context.Context, in domain.TransferInput) (*domain.Transfer, error) {
	if err := domain.ValidateTransfer(in).Err(); err != nil {
		return nil, err
	}

	var t domain.Transfer
	in.Apply(&t)

	name, err := s.playerName(ctx, t.PlayerID)
	if err != nil {
		return nil, err
	}
	t.PlayerName = name

	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.transfers.Create(ctx, tx, &t); err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, domain.NewTransferEvent(domain.EventCreated, t))
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "create transfer failed", "error", err)
		return nil, err
	}

	s.stores.Transfers.Put(t)
	s.logger.InfoContext(ctx, "transfer created", "transfer_id", t.ID, "player_id", t.PlayerID)
	return &t, nil
}

// Update validates and overwrites a transfer. PlayerName is re-snapshotted
// only when the player changes.
func (s *TransferService) Update(ctx context.Context, id string, in domain.TransferInput) (*domain.Transfer, error) {
	if err := domain.ValidateTransfer(in).Err(); err != nil {
		return nil, err
	}

	existing, err := s.transfers.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	t := *existing
	in.Apply(&t)
	if t.PlayerID == existing.PlayerID {
		t.PlayerName = existing.PlayerName
	} else {
		name, err := s.playerName(ctx, t.PlayerID)
		if err != nil {
			return nil, err
		}
		t.PlayerName = name
	}

	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.transfers.Update(ctx, tx, &t); err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, domain.NewTransferEvent(domain.EventUpdated, t))
	})
	if err != nil {
		return nil, err
	}

	s.stores.Transfers.Put(t)
	return &t, nil
}

// Delete removes a transfer.
func (s *TransferService) Delete(ctx context.Context, id string) error {
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.transfers.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, domain.NewDeletedEvent(domain.AggregateTransfer, id))
	})
	if err != nil {
		return err
	}

	s.stores.Transfers.Remove(id)
	return nil
}

func (s *TransferService) playerName(ctx context.Context, playerID string) (string, error) {
	if p, ok := s.stores.Players.Get(playerID); ok {
		return p.Name, nil
	}
	p, err := s.players.FindByID(ctx, s.db, playerID)
	if domain.IsNotFound(err) {
		return "", domain.ErrFieldValidation(map[string]string{"playerId": "Selected player does not exist"})
	}
	if err != nil {
		return "", err
	}
	return p.Name, nil
}
