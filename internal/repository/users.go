package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civictrack/civictrackd/internal/domain"
)

// UserRepo is the CRUD surface over the users table.
type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo { return &UserRepo{pool: pool} }

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Phone, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.TeamID,
		&u.IsVerified, &u.IsActive, &u.PasswordChangedAt,
		&u.CreatedAt, &u.UpdatedAt, &u.DeletedAt,
	)
	return u, err
}

const userColumns = `id, phone, email, name, password_hash, role, team_id,
	is_verified, is_active, password_changed_at, created_at, updated_at, deleted_at`

// FindByID returns a single non-deleted user.
func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, wrapDBError("find user", "user", err)
	}
	return u, nil
}

// FindByPhone looks up a user by their E.164 phone number.
func (r *UserRepo) FindByPhone(ctx context.Context, phone string) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1 AND deleted_at IS NULL`, phone)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, wrapDBError("find user by phone", "user", err)
	}
	return u, nil
}

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, tx pgx.Tx, u domain.User) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO users (id, phone, email, name, password_hash, role, team_id, is_verified, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, u.ID, u.Phone, u.Email, u.Name, u.PasswordHash, u.Role, u.TeamID, u.IsVerified, u.IsActive, u.CreatedAt, u.UpdatedAt)
	return wrapDBError("create user", "user", err)
}

// UpdateTeam reassigns a SUPPORT user to a different team.
func (r *UserRepo) UpdateTeam(ctx context.Context, tx pgx.Tx, userID uuid.UUID, teamID *uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE users SET team_id = $2, updated_at = now() WHERE id = $1`, userID, teamID)
	return wrapDBError("update user team", "user", err)
}

// ListByTeam returns active SUPPORT users assigned to teamID, the team
// recipient set of the notification engine's fan-out.
func (r *UserRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE team_id = $1 AND role = 'SUPPORT' AND deleted_at IS NULL AND is_active`, teamID)
	if err != nil {
		return nil, wrapDBError("list users by team", "user", err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrapDBError("scan user", "user", err)
		}
		out = append(out, u)
	}
	return out, wrapDBError("list users by team", "user", rows.Err())
}

// ListManagers returns every active MANAGER, the escalation-review
// notification fan-out target set (spec.md §4.G).
func (r *UserRepo) ListManagers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE role = 'MANAGER' AND deleted_at IS NULL AND is_active`)
	if err != nil {
		return nil, wrapDBError("list managers", "user", err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrapDBError("scan user", "user", err)
		}
		out = append(out, u)
	}
	return out, wrapDBError("list managers", "user", rows.Err())
}
