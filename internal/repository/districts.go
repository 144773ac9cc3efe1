package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civictrack/civictrackd/internal/domain"
)

// DistrictRepo is the read surface over named areas used for routing and
// analytics grouping.
type DistrictRepo struct {
	pool *pgxpool.Pool
}

func NewDistrictRepo(pool *pgxpool.Pool) *DistrictRepo { return &DistrictRepo{pool: pool} }

func scanDistrict(row pgx.Row) (domain.District, error) {
	var d domain.District
	err := row.Scan(&d.ID, &d.Name, &d.City, &d.CreatedAt)
	return d, err
}

const districtColumns = `id, name, city, created_at`

func (r *DistrictRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.District, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+districtColumns+` FROM districts WHERE id = $1`, id)
	d, err := scanDistrict(row)
	if err != nil {
		return domain.District{}, wrapDBError("find district", "district", err)
	}
	return d, nil
}

// FindByNameCity resolves a district from free-text name+city, the shape
// ticket creation receives from the client alongside raw coordinates.
func (r *DistrictRepo) FindByNameCity(ctx context.Context, name, city string) (domain.District, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+districtColumns+` FROM districts WHERE name = $1 AND city = $2`, name, city)
	d, err := scanDistrict(row)
	if err != nil {
		return domain.District{}, wrapDBError("find district by name/city", "district", err)
	}
	return d, nil
}

func (r *DistrictRepo) ListByCity(ctx context.Context, city string) ([]domain.District, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+districtColumns+` FROM districts WHERE city = $1 ORDER BY name`, city)
	if err != nil {
		return nil, wrapDBError("list districts", "district", err)
	}
	defer rows.Close()

	var out []domain.District
	for rows.Next() {
		d, err := scanDistrict(rows)
		if err != nil {
			return nil, wrapDBError("scan district", "district", err)
		}
		out = append(out, d)
	}
	return out, wrapDBError("list districts", "district", rows.Err())
}
