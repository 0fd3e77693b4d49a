package repository

import (
	"context"
	"errors"
	"math/big"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transferdesk/platform/internal/domain"
)

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// valuesRow fills each destination with the matching value.
type valuesRow []any

func (r valuesRow) Scan(dest ...any) error {
	for i, v := range r {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

type recordingDB struct {
	row     pgx.Row
	rowErr  error
	execErr error
	tag     pgconn.CommandTag
	sql     []string
	args    [][]interface{}
}

func (d *recordingDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	d.sql = append(d.sql, sql)
	d.args = append(d.args, args)
	return d.tag, d.execErr
}

func (d *recordingDB) Query(_ context.Context, sql string, _ ...interface{}) (pgx.Rows, error) {
	d.sql = append(d.sql, sql)
	return nil, errors.New("connection refused")
}

func (d *recordingDB) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	d.sql = append(d.sql, sql)
	d.args = append(d.args, args)
	if d.row != nil {
		return d.row
	}
	return errRow{err: d.rowErr}
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr.Code
}

func TestFindByID_MapsNoRowsToNotFound(t *testing.T) {
	db := &recordingDB{rowErr: pgx.ErrNoRows}
	ctx := context.Background()

	_, err := NewPlayerRepository().FindByID(ctx, db, "p1")
	assert.Equal(t, domain.CodeNotFound, codeOf(t, err))
	assert.True(t, domain.IsNotFound(err))

	_, err = NewTeamRepository().FindByID(ctx, db, "t1")
	assert.Equal(t, domain.CodeNotFound, codeOf(t, err))

	_, err = NewTransferRepository().FindByID(ctx, db, "x1")
	assert.Equal(t, domain.CodeNotFound, codeOf(t, err))

	_, err = NewUserRepository().FindByID(ctx, db, "u1")
	assert.Equal(t, domain.CodeNotFound, codeOf(t, err))
}

func TestFindByID_WrapsBackendFailure(t *testing.T) {
	db := &recordingDB{rowErr: errors.New("connection reset")}

	_, err := NewPlayerRepository().FindByID(context.Background(), db, "p1")
	assert.Equal(t, domain.CodeBackend, codeOf(t, err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestListAll_WrapsQueryFailure(t *testing.T) {
	db := &recordingDB{}
	ctx := context.Background()

	_, err := NewPlayerRepository().ListAll(ctx, db)
	assert.Equal(t, domain.CodeBackend, codeOf(t, err))
	_, err = NewTransferRepository().ListAll(ctx, db)
	assert.Equal(t, domain.CodeBackend, codeOf(t, err))

	assert.Contains(t, db.sql[0], "ORDER BY name ASC")
	assert.Contains(t, db.sql[1], "ORDER BY transfer_date DESC")
}

func TestFindByEmail_MissingIsNil(t *testing.T) {
	db := &recordingDB{rowErr: pgx.ErrNoRows}

	u, err := NewUserRepository().FindByEmail(context.Background(), db, "nobody@club.com")
	require.NoError(t, err)
	assert.Nil(t, u)

	a, err := NewPgAuthUserRepository().FindByEmail(context.Background(), db, "nobody@club.com")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestUserUpdate_NeverWritesEmail(t *testing.T) {
	db := &recordingDB{rowErr: pgx.ErrNoRows}
	u := &domain.User{ID: "u1", Name: "Ana", Email: "changed@club.com"}

	err := NewUserRepository().Update(context.Background(), db, u)
	assert.True(t, domain.IsNotFound(err))

	set := strings.SplitN(db.sql[0], "WHERE", 2)[0]
	assert.NotContains(t, set, "email")
	for _, a := range db.args[0] {
		assert.NotEqual(t, "changed@club.com", a)
	}
}

func TestCreate_AssignsID(t *testing.T) {
	db := &recordingDB{}
	p := &domain.Player{Name: "A. Smith"}

	require.NoError(t, NewPlayerRepository().Create(context.Background(), db, p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, p.ID, db.args[0][0])

	u := &domain.User{Email: "ana@club.com"}
	require.NoError(t, NewUserRepository().Create(context.Background(), db, u))
	assert.Equal(t, domain.RoleUser, u.Role)
}

func numeric(digits int64, exp int32) pgtype.Numeric {
	return pgtype.Numeric{Int: big.NewInt(digits), Exp: exp, Valid: true}
}

func TestWrites_KeepStoredNumerics(t *testing.T) {
	stamp := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := context.Background()

	t.Run("transfer", func(t *testing.T) {
		db := &recordingDB{row: valuesRow{numeric(1250000, 0), numeric(23, -1), stamp, stamp}}
		contract := 2.25
		x := &domain.Transfer{PlayerID: "p1", ContractLength: &contract}

		require.NoError(t, NewTransferRepository().Create(ctx, db, x))
		assert.Contains(t, db.sql[0], "RETURNING transfer_fee, contract_length")
		require.NotNil(t, x.TransferFee)
		assert.Equal(t, 1250000.0, *x.TransferFee)
		require.NotNil(t, x.ContractLength)
		assert.Equal(t, 2.3, *x.ContractLength)
		assert.Equal(t, stamp, x.UpdatedAt)
	})

	t.Run("player", func(t *testing.T) {
		db := &recordingDB{row: valuesRow{numeric(5, 5), pgtype.Numeric{}, numeric(7255, -2), stamp, stamp}}
		height := 180.5
		p := &domain.Player{ID: "p1", Name: "A. Smith", Height: &height}

		require.NoError(t, NewPlayerRepository().Update(ctx, db, p))
		assert.Contains(t, db.sql[0], "RETURNING market_value, height, weight")
		require.NotNil(t, p.MarketValue)
		assert.Equal(t, 500000.0, *p.MarketValue)
		assert.Nil(t, p.Height)
		require.NotNil(t, p.Weight)
		assert.Equal(t, 72.55, *p.Weight)
	})

	t.Run("non-finite value is a backend error", func(t *testing.T) {
		db := &recordingDB{row: valuesRow{pgtype.Numeric{NaN: true, Valid: true}, pgtype.Numeric{}, stamp, stamp}}
		err := NewTransferRepository().Update(ctx, db, &domain.Transfer{ID: "x1"})
		assert.Equal(t, domain.CodeBackend, codeOf(t, err))
	})
}

func TestDelete_MissingRowIsNotFound(t *testing.T) {
	db := &recordingDB{tag: pgconn.NewCommandTag("DELETE 0")}
	assert.True(t, domain.IsNotFound(NewTeamRepository().Delete(context.Background(), db, "t1")))

	db.tag = pgconn.NewCommandTag("DELETE 1")
	assert.NoError(t, NewTeamRepository().Delete(context.Background(), db, "t1"))
}

func TestPasswordReset_MarkUsedTwice(t *testing.T) {
	db := &recordingDB{tag: pgconn.NewCommandTag("UPDATE 0")}

	err := NewPasswordResetRepository().MarkUsed(context.Background(), db, "hash", time.Now())
	assert.Equal(t, domain.CodeConflict, codeOf(t, err))
}

func TestTokenPurge(t *testing.T) {
	db := &recordingDB{tag: pgconn.NewCommandTag("DELETE 3")}

	n, err := NewTokenRepository().PurgeExpired(context.Background(), db, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
