// Package service orchestrates validation, persistence, outbox events and the
// in-process stores for each entity.
package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/repository"
)

// inTx runs fn inside a transaction and commits when it returns nil.
func inTx(ctx context.Context, db repository.Database, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return domain.ErrBackend("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrBackend("commit tx", err)
	}
	return nil
}
