package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/infra"
)

const transferColumns = `id, player_id, player_name, from_team, to_team, transfer_fee, transfer_date,
	transfer_type, status, contract_length, notes, created_at, updated_at`

type transferRepo struct{}

// NewTransferRepository returns a pgx-backed TransferRepository.
func NewTransferRepository() TransferRepository {
	return &transferRepo{}
}

func (r *transferRepo) ListAll(ctx context.Context, db DBTX) ([]domain.Transfer, error) {
	return r.list(ctx, db, `SELECT `+transferColumns+` FROM transfers ORDER BY transfer_date DESC, id ASC`)
}

func (r *transferRepo) ListByPlayer(ctx context.Context, db DBTX, playerID string) ([]domain.Transfer, error) {
	return r.list(ctx, db, `SELECT `+transferColumns+` FROM transfers WHERE player_id = $1
		ORDER BY transfer_date DESC, id ASC`, playerID)
}

func (r *transferRepo) list(ctx context.Context, db DBTX, sql string, args ...interface{}) ([]domain.Transfer, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.ErrBackend("list transfers", err)
	}
	defer rows.Close()

	transfers := []domain.Transfer{}
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, domain.ErrBackend("scan transfer", err)
		}
		transfers = append(transfers, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrBackend("list transfers", err)
	}
	return transfers, nil
}

func (r *transferRepo) FindByID(ctx context.Context, db DBTX, id string) (*domain.Transfer, error) {
	t, err := scanTransfer(db.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "transfer", id, "find transfer")
	}
	return t, nil
}

func (r *transferRepo) Create(ctx context.Context, db DBTX, t *domain.Transfer) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	var fee, contract pgtype.Numeric
	err := db.QueryRow(ctx, `
		INSERT INTO transfers (id, player_id, player_name, from_team, to_team, transfer_fee,
		                       transfer_date, transfer_type, status, contract_length, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING transfer_fee, contract_length, created_at, updated_at`,
		t.ID, t.PlayerID, t.PlayerName, t.FromTeam, t.ToTeam, infra.FloatToNumeric(t.TransferFee),
		t.TransferDate, string(t.TransferType), string(t.Status), infra.FloatToNumeric(t.ContractLength), t.Notes,
	).Scan(&fee, &contract, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.ErrBackend("insert transfer", err)
	}
	if err := assignNumerics([]**float64{&t.TransferFee, &t.ContractLength}, fee, contract); err != nil {
		return domain.ErrBackend("insert transfer", err)
	}
	return nil
}

func (r *transferRepo) Update(ctx context.Context, db DBTX, t *domain.Transfer) error {
	var fee, contract pgtype.Numeric
	err := db.QueryRow(ctx, `
		UPDATE transfers SET player_id = $2, player_name = $3, from_team = $4, to_team = $5,
		       transfer_fee = $6, transfer_date = $7, transfer_type = $8, status = $9,
		       contract_length = $10, notes = $11, updated_at = now()
		WHERE id = $1
		RETURNING transfer_fee, contract_length, created_at, updated_at`,
		t.ID, t.PlayerID, t.PlayerName, t.FromTeam, t.ToTeam, infra.FloatToNumeric(t.TransferFee),
		t.TransferDate, string(t.TransferType), string(t.Status), infra.FloatToNumeric(t.ContractLength), t.Notes,
	).Scan(&fee, &contract, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return notFoundOr(err, "transfer", t.ID, "update transfer")
	}
	if err := assignNumerics([]**float64{&t.TransferFee, &t.ContractLength}, fee, contract); err != nil {
		return domain.ErrBackend("update transfer", err)
	}
	return nil
}

func (r *transferRepo) Delete(ctx context.Context, db DBTX, id string) error {
	tag, err := db.Exec(ctx, `DELETE FROM transfers WHERE id = $1`, id)
	if err != nil {
		return domain.ErrBackend("delete transfer", err)
	}
	return requireRow(tag, "transfer", id)
}

func scanTransfer(row scanner) (*domain.Transfer, error) {
	var t domain.Transfer
	var fee, contract pgtype.Numeric
	err := row.Scan(&t.ID, &t.PlayerID, &t.PlayerName, &t.FromTeam, &t.ToTeam, &fee, &t.TransferDate,
		&t.TransferType, &t.Status, &contract, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := assignNumerics([]**float64{&t.TransferFee, &t.ContractLength}, fee, contract); err != nil {
		return nil, err
	}
	return &t, nil
}
