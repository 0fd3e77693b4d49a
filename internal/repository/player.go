package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/infra"
)

const playerColumns = `id, name, age, position, nationality, current_team, market_value,
	height, weight, bio, preferred_foot, created_at, updated_at`

type playerRepo struct{}

// NewPlayerRepository returns a pgx-backed PlayerRepository.
func NewPlayerRepository() PlayerRepository {
	return &playerRepo{}
}

func (r *playerRepo) ListAll(ctx context.Context, db DBTX) ([]domain.Player, error) {
	return r.list(ctx, db, `SELECT `+playerColumns+` FROM players ORDER BY name ASC, id ASC`)
}

func (r *playerRepo) ListByTeam(ctx context.Context, db DBTX, teamID string) ([]domain.Player, error) {
	return r.list(ctx, db, `SELECT `+playerColumns+` FROM players WHERE current_team = $1 ORDER BY name ASC, id ASC`, teamID)
}

func (r *playerRepo) list(ctx context.Context, db DBTX, sql string, args ...interface{}) ([]domain.Player, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.ErrBackend("list players", err)
	}
	defer rows.Close()

	players := []domain.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, domain.ErrBackend("scan player", err)
		}
		players = append(players, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrBackend("list players", err)
	}
	return players, nil
}

func (r *playerRepo) FindByID(ctx context.Context, db DBTX, id string) (*domain.Player, error) {
	p, err := scanPlayer(db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "player", id, "find player")
	}
	return p, nil
}

func (r *playerRepo) Create(ctx context.Context, db DBTX, p *domain.Player) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	var market, height, weight pgtype.Numeric
	err := db.QueryRow(ctx, `
		INSERT INTO players (id, name, age, position, nationality, current_team, market_value,
		                     height, weight, bio, preferred_foot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING market_value, height, weight, created_at, updated_at`,
		p.ID, p.Name, p.Age, string(p.Position), p.Nationality, p.CurrentTeam,
		infra.FloatToNumeric(p.MarketValue), infra.FloatToNumeric(p.Height), infra.FloatToNumeric(p.Weight),
		p.Bio, string(p.PreferredFoot),
	).Scan(&market, &height, &weight, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.ErrBackend("insert player", err)
	}
	if err := assignNumerics([]**float64{&p.MarketValue, &p.Height, &p.Weight}, market, height, weight); err != nil {
		return domain.ErrBackend("insert player", err)
	}
	return nil
}

func (r *playerRepo) Update(ctx context.Context, db DBTX, p *domain.Player) error {
	var market, height, weight pgtype.Numeric
	err := db.QueryRow(ctx, `
		UPDATE players SET name = $2, age = $3, position = $4, nationality = $5, current_team = $6,
		       market_value = $7, height = $8, weight = $9, bio = $10, preferred_foot = $11,
		       updated_at = now()
		WHERE id = $1
		RETURNING market_value, height, weight, created_at, updated_at`,
		p.ID, p.Name, p.Age, string(p.Position), p.Nationality, p.CurrentTeam,
		infra.FloatToNumeric(p.MarketValue), infra.FloatToNumeric(p.Height), infra.FloatToNumeric(p.Weight),
		p.Bio, string(p.PreferredFoot),
	).Scan(&market, &height, &weight, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return notFoundOr(err, "player", p.ID, "update player")
	}
	if err := assignNumerics([]**float64{&p.MarketValue, &p.Height, &p.Weight}, market, height, weight); err != nil {
		return domain.ErrBackend("update player", err)
	}
	return nil
}

func (r *playerRepo) Delete(ctx context.Context, db DBTX, id string) error {
	tag, err := db.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return domain.ErrBackend("delete player", err)
	}
	return requireRow(tag, "player", id)
}

func scanPlayer(row scanner) (*domain.Player, error) {
	var p domain.Player
	var market, height, weight pgtype.Numeric
	err := row.Scan(&p.ID, &p.Name, &p.Age, &p.Position, &p.Nationality, &p.CurrentTeam,
		&market, &height, &weight, &p.Bio, &p.PreferredFoot, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := assignNumerics([]**float64{&p.MarketValue, &p.Height, &p.Weight}, market, height, weight); err != nil {
		return nil, err
	}
	return &p, nil
}
