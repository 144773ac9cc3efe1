package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civictrack/civictrackd/internal/domain"
)

// StatusLogRepo is the append-only audit trail for ticket status changes.
type StatusLogRepo struct {
	pool *pgxpool.Pool
}

func NewStatusLogRepo(pool *pgxpool.Pool) *StatusLogRepo { return &StatusLogRepo{pool: pool} }

// Append records one status transition. Never updated or deleted.
func (r *StatusLogRepo) Append(ctx context.Context, tx pgx.Tx, log domain.StatusLog) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO status_logs (id, ticket_id, old_status, new_status, changed_by_id, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, log.ID, log.TicketID, log.OldStatus, log.NewStatus, log.ChangedByID, log.Comment, log.CreatedAt)
	return wrapDBError("append status log", "status log", err)
}

func (r *StatusLogRepo) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]domain.StatusLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, ticket_id, old_status, new_status, changed_by_id, comment, created_at
		FROM status_logs WHERE ticket_id = $1 ORDER BY created_at ASC
	`, ticketID)
	if err != nil {
		return nil, wrapDBError("list status logs", "status log", err)
	}
	defer rows.Close()

	var out []domain.StatusLog
	for rows.Next() {
		var l domain.StatusLog
		if err := rows.Scan(&l.ID, &l.TicketID, &l.OldStatus, &l.NewStatus, &l.ChangedByID, &l.Comment, &l.CreatedAt); err != nil {
			return nil, wrapDBError("scan status log", "status log", err)
		}
		out = append(out, l)
	}
	return out, wrapDBError("list status logs", "status log", rows.Err())
}
