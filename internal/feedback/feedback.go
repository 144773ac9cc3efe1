// Package feedback records the reporter's post-resolution rating. At
// most one per ticket; the repository's UNIQUE(ticket_id) constraint is
// the actual enforcement, surfaced here as apperror.Conflict. Spec.md
// §4.F, verbatim.
package feedback

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civictrack/civictrackd/internal/apperror"
	"github.com/civictrack/civictrackd/internal/domain"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type ticketRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Ticket, error)
}

type feedbackRepo interface {
	Create(ctx context.Context, tx pgx.Tx, f domain.Feedback) error
	FindByTicket(ctx context.Context, ticketID uuid.UUID) (*domain.Feedback, error)
}

type Service struct {
	db       txRunner
	tickets  ticketRepo
	feedback feedbackRepo
}

func New(db txRunner, tickets ticketRepo, feedback feedbackRepo) *Service {
	return &Service{db: db, tickets: tickets, feedback: feedback}
}

// Create records a 1-5 rating. Reporter only, and only once the ticket
// has reached RESOLVED or CLOSED.
func (s *Service) Create(ctx context.Context, ticketID uuid.UUID, rating int, comment string, principal domain.Principal) (domain.Feedback, error) {
	if rating < 1 || rating > 5 {
		return domain.Feedback{}, apperror.Validation(apperror.FieldError{Field: "rating", Message: "must be between 1 and 5"})
	}

	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return domain.Feedback{}, err
	}
	if principal.UserID != ticket.ReporterID {
		return domain.Feedback{}, apperror.Forbidden("only the reporter can leave feedback")
	}
	if ticket.Status != domain.StatusResolved && ticket.Status != domain.StatusClosed {
		return domain.Feedback{}, apperror.Forbidden("ticket must be resolved or closed to leave feedback")
	}

	existing, err := s.feedback.FindByTicket(ctx, ticketID)
	if err != nil {
		return domain.Feedback{}, err
	}
	if existing != nil {
		return domain.Feedback{}, apperror.Conflict("feedback already exists for this ticket")
	}

	userID := principal.UserID
	f := domain.Feedback{
		ID:        uuid.New(),
		TicketID:  ticketID,
		UserID:    &userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		return s.feedback.Create(ctx, tx, f)
	}); err != nil {
		return domain.Feedback{}, err
	}
	return f, nil
}

// Get returns the ticket's feedback, if any.
func (s *Service) Get(ctx context.Context, ticketID uuid.UUID) (*domain.Feedback, error) {
	return s.feedback.FindByTicket(ctx, ticketID)
}
