package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civictrack/civictrackd/internal/domain"
)

// SavedAddressRepo is the CRUD surface for a citizen's reusable favorite
// locations (SPEC_FULL.md §4.J, grounded on original_source/app/models/address.py).
type SavedAddressRepo struct {
	pool *pgxpool.Pool
}

func NewSavedAddressRepo(pool *pgxpool.Pool) *SavedAddressRepo { return &SavedAddressRepo{pool: pool} }

const savedAddressColumns = `id, user_id, name, address, latitude, longitude, city, created_at, updated_at`

func scanSavedAddress(row pgx.Row) (domain.SavedAddress, error) {
	var a domain.SavedAddress
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Address, &a.Latitude, &a.Longitude, &a.City, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *SavedAddressRepo) Create(ctx context.Context, a domain.SavedAddress) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO saved_addresses (id, user_id, name, address, latitude, longitude, city, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.ID, a.UserID, a.Name, a.Address, a.Latitude, a.Longitude, a.City, a.CreatedAt)
	return wrapDBError("create saved address", "saved address", err)
}

func (r *SavedAddressRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.SavedAddress, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+savedAddressColumns+` FROM saved_addresses WHERE id = $1`, id)
	a, err := scanSavedAddress(row)
	if err != nil {
		return domain.SavedAddress{}, wrapDBError("find saved address", "saved address", err)
	}
	return a, nil
}

func (r *SavedAddressRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.SavedAddress, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+savedAddressColumns+` FROM saved_addresses WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, wrapDBError("list saved addresses", "saved address", err)
	}
	defer rows.Close()

	var out []domain.SavedAddress
	for rows.Next() {
		a, err := scanSavedAddress(rows)
		if err != nil {
			return nil, wrapDBError("scan saved address", "saved address", err)
		}
		out = append(out, a)
	}
	return out, wrapDBError("list saved addresses", "saved address", rows.Err())
}

func (r *SavedAddressRepo) Update(ctx context.Context, id uuid.UUID, name, address string, lat, lon float64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE saved_addresses SET name = $2, address = $3, latitude = $4, longitude = $5, updated_at = now()
		WHERE id = $1
	`, id, name, address, lat, lon)
	return wrapDBError("update saved address", "saved address", err)
}

func (r *SavedAddressRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM saved_addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrapDBError("delete saved address", "saved address", err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBError("delete saved address", "saved address", pgx.ErrNoRows)
	}
	return nil
}
