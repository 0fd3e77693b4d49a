package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/transferdesk/platform/internal/domain"
)

const teamColumns = `id, name, league, country, founded, stadium, manager, website,
	description, created_at, updated_at`

type teamRepo struct{}

// NewTeamRepository returns a pgx-backed TeamRepository.
func NewTeamRepository() TeamRepository {
	return &teamRepo{}
}

func (r *teamRepo) ListAll(ctx context.Context, db DBTX) ([]domain.Team, error) {
	rows, err := db.Query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, domain.ErrBackend("list teams", err)
	}
	defer rows.Close()

	teams := []domain.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, domain.ErrBackend("scan team", err)
		}
		teams = append(teams, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrBackend("list teams", err)
	}
	return teams, nil
}

func (r *teamRepo) FindByID(ctx context.Context, db DBTX, id string) (*domain.Team, error) {
	t, err := scanTeam(db.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "team", id, "find team")
	}
	return t, nil
}

func (r *teamRepo) Create(ctx context.Context, db DBTX, t *domain.Team) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	err := db.QueryRow(ctx, `
		INSERT INTO teams (id, name, league, country, founded, stadium, manager, website, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		t.ID, t.Name, t.League, t.Country, t.Founded, t.Stadium, t.Manager, t.Website, t.Description,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.ErrBackend("insert team", err)
	}
	return nil
}

func (r *teamRepo) Update(ctx context.Context, db DBTX, t *domain.Team) error {
	err := db.QueryRow(ctx, `
		UPDATE teams SET name = $2, league = $3, country = $4, founded = $5, stadium = $6,
		       manager = $7, website = $8, description = $9, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		t.ID, t.Name, t.League, t.Country, t.Founded, t.Stadium, t.Manager, t.Website, t.Description,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return notFoundOr(err, "team", t.ID, "update team")
	}
	return nil
}

func (r *teamRepo) Delete(ctx context.Context, db DBTX, id string) error {
	tag, err := db.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return domain.ErrBackend("delete team", err)
	}
	return requireRow(tag, "team", id)
}

func scanTeam(row scanner) (*domain.Team, error) {
	var t domain.Team
	err := row.Scan(&t.ID, &t.Name, &t.League, &t.Country, &t.Founded, &t.Stadium, &t.Manager,
		&t.Website, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
