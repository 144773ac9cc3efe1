// Package commentsvc adds and lists ticket remarks. Named apart from
// the repository's comments.go only by directory; it is the service
// layer enforcing who may post an internal comment and who may see one.
// Spec.md §4.F, verbatim.
package commentsvc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civictrack/civictrackd/internal/domain"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type ticketRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Ticket, error)
}

type commentRepo interface {
	Create(ctx context.Context, tx pgx.Tx, c domain.Comment) error
	ListByTicket(ctx context.Context, ticketID uuid.UUID, includeInternal bool) ([]domain.Comment, error)
}

type notifier interface {
	CommentAdded(ctx context.Context, ticket domain.Ticket, authorID uuid.UUID)
}

type Service struct {
	db      txRunner
	tickets ticketRepo
	comment commentRepo
	notify  notifier
}

func New(db txRunner, tickets ticketRepo, comment commentRepo, notify notifier) *Service {
	return &Service{db: db, tickets: tickets, comment: comment, notify: notify}
}

// Add posts a new comment. Citizens may never set isInternal.
func (s *Service) Add(ctx context.Context, ticketID uuid.UUID, content string, isInternal bool, principal domain.Principal) (domain.Comment, error) {
	if principal.Role == domain.RoleCitizen {
		isInternal = false
	}
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return domain.Comment{}, err
	}

	userID := principal.UserID
	c := domain.Comment{
		ID:         uuid.New(),
		TicketID:   ticketID,
		UserID:     &userID,
		Content:    content,
		IsInternal: isInternal,
		CreatedAt:  time.Now(),
	}

	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		return s.comment.Create(ctx, tx, c)
	})
	if err != nil {
		return domain.Comment{}, err
	}

	s.notify.CommentAdded(ctx, ticket, principal.UserID)
	return c, nil
}

// List returns the ticket's comments, citizens restricted to public ones.
func (s *Service) List(ctx context.Context, ticketID uuid.UUID, principal domain.Principal) ([]domain.Comment, error) {
	if _, err := s.tickets.FindByID(ctx, ticketID); err != nil {
		return nil, err
	}
	includeInternal := principal.Role != domain.RoleCitizen
	return s.comment.ListByTicket(ctx, ticketID, includeInternal)
}
