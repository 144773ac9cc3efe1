package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civictrack/civictrackd/internal/domain"
)

// CommentRepo is the CRUD surface over ticket comments, including the
// is_internal flag that hides support-only remarks from citizens
// (spec.md §4.D detail projection).
type CommentRepo struct {
	pool *pgxpool.Pool
}

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo { return &CommentRepo{pool: pool} }

func (r *CommentRepo) Create(ctx context.Context, tx pgx.Tx, c domain.Comment) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO comments (id, ticket_id, user_id, content, is_internal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.TicketID, c.UserID, c.Content, c.IsInternal, c.CreatedAt)
	return wrapDBError("create comment", "comment", err)
}

// ListByTicket returns every comment on a ticket, newest first.
// includeInternal is false for citizen viewers, per the detail
// projection's filtering rule.
func (r *CommentRepo) ListByTicket(ctx context.Context, ticketID uuid.UUID, includeInternal bool) ([]domain.Comment, error) {
	query := `SELECT id, ticket_id, user_id, content, is_internal, created_at FROM comments WHERE ticket_id = $1`
	if !includeInternal {
		query += ` AND NOT is_internal`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, wrapDBError("list comments", "comment", err)
	}
	defer rows.Close()

	var out []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TicketID, &c.UserID, &c.Content, &c.IsInternal, &c.CreatedAt); err != nil {
			return nil, wrapDBError("scan comment", "comment", err)
		}
		out = append(out, c)
	}
	return out, wrapDBError("list comments", "comment", rows.Err())
}
