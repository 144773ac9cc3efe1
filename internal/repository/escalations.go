package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civictrack/civictrackd/internal/domain"
)

// EscalationRepo is the CRUD surface over manager-review escalation
// requests. The partial unique index on PENDING rows (see migrations.go)
// enforces T3 — at most one live escalation per ticket — at the database
// level; approved-but-not-yet-resolved escalations are additionally
// checked in internal/escalation before issuing a new request.
type EscalationRepo struct {
	pool *pgxpool.Pool
}

func NewEscalationRepo(pool *pgxpool.Pool) *EscalationRepo { return &EscalationRepo{pool: pool} }

const escalationColumns = `id, ticket_id, requester_id, reviewer_id, reason, status, review_comment, created_at, reviewed_at`

func scanEscalation(row pgx.Row) (domain.EscalationRequest, error) {
	var e domain.EscalationRequest
	err := row.Scan(&e.ID, &e.TicketID, &e.RequesterID, &e.ReviewerID, &e.Reason, &e.Status, &e.ReviewComment, &e.CreatedAt, &e.ReviewedAt)
	return e, err
}

func (r *EscalationRepo) Create(ctx context.Context, tx pgx.Tx, e domain.EscalationRequest) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO escalation_requests (id, ticket_id, requester_id, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.TicketID, e.RequesterID, e.Reason, e.Status, e.CreatedAt)
	return wrapDBError("create escalation", "escalation", err)
}

func (r *EscalationRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.EscalationRequest, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+escalationColumns+` FROM escalation_requests WHERE id = $1`, id)
	e, err := scanEscalation(row)
	if err != nil {
		return domain.EscalationRequest{}, wrapDBError("find escalation", "escalation", err)
	}
	return e, nil
}

// Review records a manager's APPROVED/REJECTED decision.
func (r *EscalationRepo) Review(ctx context.Context, tx pgx.Tx, id, reviewerID uuid.UUID, status domain.EscalationStatus, comment string) error {
	_, err := tx.Exec(ctx, `
		UPDATE escalation_requests
		SET status = $2, reviewer_id = $3, review_comment = $4, reviewed_at = now()
		WHERE id = $1
	`, id, status, reviewerID, comment)
	return wrapDBError("review escalation", "escalation", err)
}

func (r *EscalationRepo) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]domain.EscalationRequest, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+escalationColumns+` FROM escalation_requests WHERE ticket_id = $1 ORDER BY created_at DESC`, ticketID)
	if err != nil {
		return nil, wrapDBError("list escalations", "escalation", err)
	}
	defer rows.Close()

	var out []domain.EscalationRequest
	for rows.Next() {
		e, err := scanEscalation(rows)
		if err != nil {
			return nil, wrapDBError("scan escalation", "escalation", err)
		}
		out = append(out, e)
	}
	return out, wrapDBError("list escalations", "escalation", rows.Err())
}

// ListAll returns every escalation request regardless of status, newest
// first — the manager's full review history (spec.md §4.E list).
func (r *EscalationRepo) ListAll(ctx context.Context) ([]domain.EscalationRequest, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+escalationColumns+` FROM escalation_requests ORDER BY created_at DESC`)
	if err != nil {
		return nil, wrapDBError("list all escalations", "escalation", err)
	}
	defer rows.Close()

	var out []domain.EscalationRequest
	for rows.Next() {
		e, err := scanEscalation(rows)
		if err != nil {
			return nil, wrapDBError("scan escalation", "escalation", err)
		}
		out = append(out, e)
	}
	return out, wrapDBError("list all escalations", "escalation", rows.Err())
}

// ListPending returns every PENDING escalation, oldest first. The
// manager list in internal/escalation uses ListAll instead.
func (r *EscalationRepo) ListPending(ctx context.Context) ([]domain.EscalationRequest, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+escalationColumns+` FROM escalation_requests WHERE status = 'PENDING' ORDER BY created_at ASC`)
	if err != nil {
		return nil, wrapDBError("list pending escalations", "escalation", err)
	}
	defer rows.Close()

	var out []domain.EscalationRequest
	for rows.Next() {
		e, err := scanEscalation(rows)
		if err != nil {
			return nil, wrapDBError("scan escalation", "escalation", err)
		}
		out = append(out, e)
	}
	return out, wrapDBError("list pending escalations", "escalation", rows.Err())
}

// HasNonTerminal reports whether ticketID already has a PENDING or
// APPROVED escalation, the condition that blocks a new request (T3).
func (r *EscalationRepo) HasNonTerminal(ctx context.Context, ticketID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM escalation_requests WHERE ticket_id = $1 AND status IN ('PENDING', 'APPROVED'))
	`, ticketID).Scan(&exists)
	if err != nil {
		return false, wrapDBError("check non-terminal escalation", "escalation", err)
	}
	return exists, nil
}
