package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civictrack/civictrackd/internal/domain"
)

// FollowerRepo manages ticket-follower subscriptions used for the
// notification fan-out (spec.md §4.E / §4.G).
type FollowerRepo struct {
	pool *pgxpool.Pool
}

func NewFollowerRepo(pool *pgxpool.Pool) *FollowerRepo { return &FollowerRepo{pool: pool} }

// Follow is idempotent: following an already-followed ticket is a no-op.
func (r *FollowerRepo) Follow(ctx context.Context, tx pgx.Tx, ticketID, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO ticket_followers (ticket_id, user_id) VALUES ($1, $2)
		ON CONFLICT (ticket_id, user_id) DO NOTHING
	`, ticketID, userID)
	return wrapDBError("follow ticket", "follower", err)
}

func (r *FollowerRepo) Unfollow(ctx context.Context, tx pgx.Tx, ticketID, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM ticket_followers WHERE ticket_id = $1 AND user_id = $2`, ticketID, userID)
	return wrapDBError("unfollow ticket", "follower", err)
}

func (r *FollowerRepo) IsFollowing(ctx context.Context, ticketID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM ticket_followers WHERE ticket_id = $1 AND user_id = $2)`, ticketID, userID).Scan(&exists)
	if err != nil {
		return false, wrapDBError("check follower", "follower", err)
	}
	return exists, nil
}

func (r *FollowerRepo) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]domain.TicketFollower, error) {
	rows, err := r.pool.Query(ctx, `SELECT ticket_id, user_id, followed_at FROM ticket_followers WHERE ticket_id = $1`, ticketID)
	if err != nil {
		return nil, wrapDBError("list followers", "follower", err)
	}
	defer rows.Close()

	var out []domain.TicketFollower
	for rows.Next() {
		var f domain.TicketFollower
		if err := rows.Scan(&f.TicketID, &f.UserID, &f.FollowedAt); err != nil {
			return nil, wrapDBError("scan follower", "follower", err)
		}
		out = append(out, f)
	}
	return out, wrapDBError("list followers", "follower", rows.Err())
}

// ListFollowerUserIDs is the notification fan-out target set for a
// ticket event: every follower, regardless of role.
func (r *FollowerRepo) ListFollowerUserIDs(ctx context.Context, ticketID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM ticket_followers WHERE ticket_id = $1`, ticketID)
	if err != nil {
		return nil, wrapDBError("list follower ids", "follower", err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBError("scan follower id", "follower", err)
		}
		out = append(out, id)
	}
	return out, wrapDBError("list follower ids", "follower", rows.Err())
}
