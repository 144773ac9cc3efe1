package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civictrack/civictrackd/internal/domain"
)

// FeedbackRepo enforces the at-most-one-feedback-per-ticket rule via the
// table's UNIQUE(ticket_id) constraint, surfaced as apperror.Conflict.
type FeedbackRepo struct {
	pool *pgxpool.Pool
}

func NewFeedbackRepo(pool *pgxpool.Pool) *FeedbackRepo { return &FeedbackRepo{pool: pool} }

func (r *FeedbackRepo) Create(ctx context.Context, tx pgx.Tx, f domain.Feedback) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO feedbacks (id, ticket_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, f.ID, f.TicketID, f.UserID, f.Rating, f.Comment, f.CreatedAt)
	return wrapDBError("create feedback", "feedback", err)
}

func (r *FeedbackRepo) FindByTicket(ctx context.Context, ticketID uuid.UUID) (*domain.Feedback, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, ticket_id, user_id, rating, comment, created_at, updated_at
		FROM feedbacks WHERE ticket_id = $1
	`, ticketID)

	var f domain.Feedback
	err := row.Scan(&f.ID, &f.TicketID, &f.UserID, &f.Rating, &f.Comment, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapDBError("find feedback", "feedback", err)
	}
	return &f, nil
}

// AverageRatingByTeam returns the average rating and the count of all
// feedback on teamID's tickets, whatever the tickets' status.
func (r *FeedbackRepo) AverageRatingByTeam(ctx context.Context, teamID uuid.UUID) (float64, int, error) {
	var avg float64
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(AVG(f.rating), 0), COUNT(f.id)
		FROM feedbacks f
		JOIN tickets t ON t.id = f.ticket_id
		WHERE t.team_id = $1
	`, teamID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, wrapDBError("average rating by team", "feedback", err)
	}
	return avg, count, nil
}
