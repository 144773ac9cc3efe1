package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civictrack/civictrackd/internal/domain"
)

// NotificationRepo is the per-user inbox persisted by internal/notification's
// best-effort engine (spec.md §4.G).
type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo { return &NotificationRepo{pool: pool} }

// Create inserts a notification row. Called outside the triggering
// ticket/escalation transaction — a notification failure must never roll
// back the action that produced it.
func (r *NotificationRepo) Create(ctx context.Context, n domain.Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, ticket_id, type, title, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, n.ID, n.UserID, n.TicketID, n.Type, n.Title, n.Message, n.CreatedAt)
	return wrapDBError("create notification", "notification", err)
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	query := `SELECT id, user_id, ticket_id, type, title, message, is_read, read_at, created_at FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limitOrDefault(limit), offset)
	if err != nil {
		return nil, wrapDBError("list notifications", "notification", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.TicketID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, wrapDBError("scan notification", "notification", err)
		}
		out = append(out, n)
	}
	return out, wrapDBError("list notifications", "notification", rows.Err())
}

// MarkRead stamps one notification read, scoped to userID so a user can
// only acknowledge their own inbox entries.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = true, read_at = now() WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrapDBError("mark notification read", "notification", err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBError("mark notification read", "notification", pgx.ErrNoRows)
	}
	return nil
}

// MarkAllRead stamps every unread notification of userID read in one
// statement, backing the /notifications/read-all endpoint.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = true, read_at = now() WHERE user_id = $1 AND NOT is_read`, userID)
	return wrapDBError("mark all notifications read", "notification", err)
}

func (r *NotificationRepo) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&n)
	if err != nil {
		return 0, wrapDBError("count unread notifications", "notification", err)
	}
	return n, nil
}
