package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civictrack/civictrackd/internal/domain"
)

// ServiceAreaRepo reads the service_areas view (migration 3) and writes
// the underlying team_categories/team_districts junctions it's built
// from — kept separate from TeamRepo since the view is a distinct,
// admin-facing read shape (spec.md §4.C routing config).
type ServiceAreaRepo struct {
	pool *pgxpool.Pool
}

func NewServiceAreaRepo(pool *pgxpool.Pool) *ServiceAreaRepo { return &ServiceAreaRepo{pool: pool} }

func (r *ServiceAreaRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.ServiceArea, error) {
	rows, err := r.pool.Query(ctx, `SELECT team_id, category_id, district_id FROM service_areas WHERE team_id = $1`, teamID)
	if err != nil {
		return nil, wrapDBError("list service areas", "service area", err)
	}
	defer rows.Close()

	var out []domain.ServiceArea
	for rows.Next() {
		var sa domain.ServiceArea
		if err := rows.Scan(&sa.TeamID, &sa.CategoryID, &sa.DistrictID); err != nil {
			return nil, wrapDBError("scan service area", "service area", err)
		}
		out = append(out, sa)
	}
	return out, wrapDBError("list service areas", "service area", rows.Err())
}

// AddCategory grants teamID coverage of categoryID, one leg of a service
// area assignment.
func (r *ServiceAreaRepo) AddCategory(ctx context.Context, teamID, categoryID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO team_categories (team_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING
	`, teamID, categoryID)
	return wrapDBError("add team category", "service area", err)
}

// AddDistrict grants teamID coverage of districtID, the other leg.
func (r *ServiceAreaRepo) AddDistrict(ctx context.Context, teamID, districtID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO team_districts (team_id, district_id) VALUES ($1, $2) ON CONFLICT DO NOTHING
	`, teamID, districtID)
	return wrapDBError("add team district", "service area", err)
}
