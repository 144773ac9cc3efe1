package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civictrack/civictrackd/internal/domain"
)

// LocationRepo is the write surface over the one-to-one georeference a
// ticket owns. Reads happen inline as part of ticket queries; see
// tickets.go.
type LocationRepo struct{}

func NewLocationRepo() *LocationRepo { return &LocationRepo{} }

// Create inserts a location row and its PostGIS point, built from
// latitude/longitude using ST_SetSRID(ST_MakePoint(...), 4326) the way
// every spatial query in this package expects.
func (r *LocationRepo) Create(ctx context.Context, tx pgx.Tx, loc domain.Location) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO locations (id, coordinates, latitude, longitude, address, district, city)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326), $3, $2, $4, $5, $6)
	`, loc.ID, loc.Longitude, loc.Latitude, loc.Address, loc.District, loc.City)
	return wrapDBError("create location", "location", err)
}

func (r *LocationRepo) FindByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (domain.Location, error) {
	row := tx.QueryRow(ctx, `SELECT id, latitude, longitude, address, district, city FROM locations WHERE id = $1`, id)
	var l domain.Location
	err := row.Scan(&l.ID, &l.Latitude, &l.Longitude, &l.Address, &l.District, &l.City)
	if err != nil {
		return domain.Location{}, wrapDBError("find location", "location", err)
	}
	return l, nil
}
