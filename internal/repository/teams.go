package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civictrack/civictrackd/internal/domain"
)

// TeamRepo is the CRUD surface over teams and their category/district
// service-area junctions (spec.md §3/§4.C).
type TeamRepo struct {
	pool *pgxpool.Pool
}

func NewTeamRepo(pool *pgxpool.Pool) *TeamRepo { return &TeamRepo{pool: pool} }

func scanTeam(row pgx.Row) (domain.Team, error) {
	var t domain.Team
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.IsFallback, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const teamColumns = `id, name, description, is_fallback, created_at, updated_at`

func (r *TeamRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.Team, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
	t, err := scanTeam(row)
	if err != nil {
		return domain.Team{}, wrapDBError("find team", "team", err)
	}
	return t, nil
}

// FallbackTeam returns the single IsFallback team used when no service
// area matches a ticket's (category, district) pair.
func (r *TeamRepo) FallbackTeam(ctx context.Context) (domain.Team, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE is_fallback LIMIT 1`)
	t, err := scanTeam(row)
	if err != nil {
		return domain.Team{}, wrapDBError("find fallback team", "team", err)
	}
	return t, nil
}

func (r *TeamRepo) List(ctx context.Context) ([]domain.Team, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY name`)
	if err != nil {
		return nil, wrapDBError("list teams", "team", err)
	}
	defer rows.Close()

	var out []domain.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, wrapDBError("scan team", "team", err)
		}
		out = append(out, t)
	}
	return out, wrapDBError("list teams", "team", rows.Err())
}

// MatchingTeamsByDistrict returns every non-fallback team whose service
// area covers both categoryID and districtID exactly — routing priority
// 1 (spec.md §4.C).
func (r *TeamRepo) MatchingTeamsByDistrict(ctx context.Context, categoryID, districtID uuid.UUID) ([]domain.Team, error) {
	return r.queryMatching(ctx, `
		SELECT t.id, t.name, t.description, t.is_fallback, t.created_at, t.updated_at
		FROM teams t
		JOIN team_categories tc ON tc.team_id = t.id AND tc.category_id = $1
		JOIN team_districts td ON td.team_id = t.id AND td.district_id = $2
		WHERE NOT t.is_fallback
		ORDER BY t.id
	`, categoryID, districtID)
}

// MatchingTeamsByCity returns every non-fallback team whose service area
// covers categoryID and any district within city — routing priority 2.
func (r *TeamRepo) MatchingTeamsByCity(ctx context.Context, categoryID uuid.UUID, city string) ([]domain.Team, error) {
	return r.queryMatching(ctx, `
		SELECT DISTINCT t.id, t.name, t.description, t.is_fallback, t.created_at, t.updated_at
		FROM teams t
		JOIN team_categories tc ON tc.team_id = t.id AND tc.category_id = $1
		JOIN team_districts td ON td.team_id = t.id
		JOIN districts d ON d.id = td.district_id AND d.city = $2
		WHERE NOT t.is_fallback
		ORDER BY t.id
	`, categoryID, city)
}

// MatchingTeamsByCategory returns every non-fallback team whose service
// area covers categoryID regardless of district — routing priority 3.
func (r *TeamRepo) MatchingTeamsByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Team, error) {
	return r.queryMatching(ctx, `
		SELECT t.id, t.name, t.description, t.is_fallback, t.created_at, t.updated_at
		FROM teams t
		JOIN team_categories tc ON tc.team_id = t.id AND tc.category_id = $1
		WHERE NOT t.is_fallback
		ORDER BY t.id
	`, categoryID)
}

func (r *TeamRepo) queryMatching(ctx context.Context, query string, args ...interface{}) ([]domain.Team, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("match teams", "team", err)
	}
	defer rows.Close()

	var out []domain.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, wrapDBError("scan team", "team", err)
		}
		out = append(out, t)
	}
	return out, wrapDBError("match teams", "team", rows.Err())
}

// Workload counts tickets in {NEW, IN_PROGRESS} assigned to teamID —
// used for analytics only, never for routing (spec.md §4.C).
func (r *TeamRepo) Workload(ctx context.Context, teamID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM tickets
		WHERE team_id = $1 AND deleted_at IS NULL AND status IN ('NEW', 'IN_PROGRESS')
	`, teamID).Scan(&n)
	if err != nil {
		return 0, wrapDBError("team workload", "team", err)
	}
	return n, nil
}
