package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civictrack/civictrackd/internal/domain"
)

// CategoryRepo is the read/write surface over ticket categories.
type CategoryRepo struct {
	pool *pgxpool.Pool
}

func NewCategoryRepo(pool *pgxpool.Pool) *CategoryRepo { return &CategoryRepo{pool: pool} }

func scanCategory(row pgx.Row) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const categoryColumns = `id, name, description, is_active, created_at, updated_at`

func (r *CategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err != nil {
		return domain.Category{}, wrapDBError("find category", "category", err)
	}
	return c, nil
}

func (r *CategoryRepo) ListActive(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, wrapDBError("list categories", "category", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, wrapDBError("scan category", "category", err)
		}
		out = append(out, c)
	}
	return out, wrapDBError("list categories", "category", rows.Err())
}
