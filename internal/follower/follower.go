// Package follower implements ticket follow/unfollow subscriptions.
// Both operations are idempotent: re-following is a success no-op,
// unfollowing a ticket the user never followed is a success no-op.
// Spec.md §4.F, verbatim.
package follower

import (
	"context"

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

type followerRepo interface {
	Follow(ctx context.Context, tx pgx.Tx, ticketID, userID uuid.UUID) error
	Unfollow(ctx context.Context, tx pgx.Tx, ticketID, userID uuid.UUID) error
}

type notifier interface {
	TicketFollowed(ctx context.Context, ticket domain.Ticket, followerID uuid.UUID)
}

type Service struct {
	db       txRunner
	tickets  ticketRepo
	follower followerRepo
	notify   notifier
}

func New(db txRunner, tickets ticketRepo, follower followerRepo, notify notifier) *Service {
	return &Service{db: db, tickets: tickets, follower: follower, notify: notify}
}

// Follow subscribes principal to ticket updates. Re-following is a
// silent no-op (ON CONFLICT DO NOTHING at the repository layer).
func (s *Service) Follow(ctx context.Context, ticketID uuid.UUID, principal domain.Principal) error {
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		return s.follower.Follow(ctx, tx, ticketID, principal.UserID)
	}); err != nil {
		return err
	}
	s.notify.TicketFollowed(ctx, ticket, principal.UserID)
	return nil
}

// Unfollow removes the subscription, if any.
func (s *Service) Unfollow(ctx context.Context, ticketID uuid.UUID, principal domain.Principal) error {
	if _, err := s.tickets.FindByID(ctx, ticketID); err != nil {
		return err
	}
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		return s.follower.Unfollow(ctx, tx, ticketID, principal.UserID)
	})
}
