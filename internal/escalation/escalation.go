// Package escalation implements the manager-review sub-workflow: a
// support agent asks a manager to look at a ticket, and a manager
// approves or rejects that request. Spec.md §4.E, verbatim.
package escalation

import (
	"context"
	"fmt"
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
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.Status, resolvedAt bool) error
}

type escalationRepo interface {
	Create(ctx context.Context, tx pgx.Tx, e domain.EscalationRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.EscalationRequest, error)
	Review(ctx context.Context, tx pgx.Tx, id, reviewerID uuid.UUID, status domain.EscalationStatus, comment string) error
	ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]domain.EscalationRequest, error)
	ListAll(ctx context.Context) ([]domain.EscalationRequest, error)
	HasNonTerminal(ctx context.Context, ticketID uuid.UUID) (bool, error)
}

type statusLogRepo interface {
	Append(ctx context.Context, tx pgx.Tx, log domain.StatusLog) error
}

type notifier interface {
	EscalationRequested(ctx context.Context, ticket domain.Ticket)
	EscalationDecided(ctx context.Context, ticket domain.Ticket, approved bool)
}

// Service implements escalation Create/Approve/Reject/List.
type Service struct {
	db         txRunner
	tickets    ticketRepo
	escalation escalationRepo
	statusLogs statusLogRepo
	notify     notifier
}

func New(db txRunner, tickets ticketRepo, escalation escalationRepo, statusLogs statusLogRepo, notify notifier) *Service {
	return &Service{db: db, tickets: tickets, escalation: escalation, statusLogs: statusLogs, notify: notify}
}

// Create files a new escalation request. Support only, own-team tickets
// only, and only when no PENDING or APPROVED escalation already exists.
func (s *Service) Create(ctx context.Context, ticketID uuid.UUID, reason string, principal domain.Principal) (domain.EscalationRequest, error) {
	if principal.Role != domain.RoleSupport {
		return domain.EscalationRequest{}, apperror.Forbidden("only support agents can request escalation")
	}
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return domain.EscalationRequest{}, err
	}
	if ticket.TeamID == nil {
		return domain.EscalationRequest{}, apperror.BadRequest("ticket has no assigned team")
	}
	if principal.TeamID == nil || *principal.TeamID != *ticket.TeamID {
		return domain.EscalationRequest{}, apperror.Forbidden("can only escalate tickets assigned to your own team")
	}

	hasNonTerminal, err := s.escalation.HasNonTerminal(ctx, ticketID)
	if err != nil {
		return domain.EscalationRequest{}, err
	}
	if hasNonTerminal {
		return domain.EscalationRequest{}, apperror.Conflict("ticket already has an open escalation")
	}

	now := time.Now()
	requesterID := principal.UserID
	req := domain.EscalationRequest{
		ID:          uuid.New(),
		TicketID:    ticketID,
		RequesterID: &requesterID,
		Reason:      reason,
		Status:      domain.EscalationPending,
		CreatedAt:   now,
	}

	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.escalation.Create(ctx, tx, req); err != nil {
			return err
		}
		if err := s.tickets.UpdateStatus(ctx, tx, ticketID, domain.StatusEscalated, false); err != nil {
			return err
		}
		oldStatus := ticket.Status
		newStatus := domain.StatusEscalated
		return s.statusLogs.Append(ctx, tx, domain.StatusLog{
			ID:          uuid.New(),
			TicketID:    ticketID,
			OldStatus:   &oldStatus,
			NewStatus:   newStatus,
			ChangedByID: &principal.UserID,
			Comment:     "Escalation requested: " + reason,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return domain.EscalationRequest{}, err
	}

	ticket.Status = domain.StatusEscalated
	s.notify.EscalationRequested(ctx, ticket)
	return req, nil
}

// Approve grants the escalation, returning the ticket to IN_PROGRESS.
func (s *Service) Approve(ctx context.Context, escalationID uuid.UUID, comment string, principal domain.Principal) (domain.EscalationRequest, error) {
	return s.decide(ctx, escalationID, domain.EscalationApproved, comment, principal)
}

// Reject denies the escalation, also returning the ticket to IN_PROGRESS.
func (s *Service) Reject(ctx context.Context, escalationID uuid.UUID, comment string, principal domain.Principal) (domain.EscalationRequest, error) {
	return s.decide(ctx, escalationID, domain.EscalationRejected, comment, principal)
}

func (s *Service) decide(ctx context.Context, escalationID uuid.UUID, status domain.EscalationStatus, comment string, principal domain.Principal) (domain.EscalationRequest, error) {
	if principal.Role != domain.RoleManager {
		return domain.EscalationRequest{}, apperror.Forbidden("only managers can review escalations")
	}
	esc, err := s.escalation.FindByID(ctx, escalationID)
	if err != nil {
		return domain.EscalationRequest{}, err
	}
	if esc.Status != domain.EscalationPending {
		return domain.EscalationRequest{}, apperror.BadRequest("escalation is not pending")
	}
	ticket, err := s.tickets.FindByID(ctx, esc.TicketID)
	if err != nil {
		return domain.EscalationRequest{}, err
	}

	verb := "rejected"
	if status == domain.EscalationApproved {
		verb = "approved"
	}
	now := time.Now()

	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.escalation.Review(ctx, tx, escalationID, principal.UserID, status, comment); err != nil {
			return err
		}
		if err := s.tickets.UpdateStatus(ctx, tx, esc.TicketID, domain.StatusInProgress, false); err != nil {
			return err
		}
		oldStatus := ticket.Status
		newStatus := domain.StatusInProgress
		return s.statusLogs.Append(ctx, tx, domain.StatusLog{
			ID:          uuid.New(),
			TicketID:    esc.TicketID,
			OldStatus:   &oldStatus,
			NewStatus:   newStatus,
			ChangedByID: &principal.UserID,
			Comment:     fmt.Sprintf("Escalation %s: %s", verb, comment),
			CreatedAt:   now,
		})
	})
	if err != nil {
		return domain.EscalationRequest{}, err
	}

	esc.Status = status
	esc.ReviewComment = comment
	esc.ReviewedAt = &now
	reviewerID := principal.UserID
	esc.ReviewerID = &reviewerID

	ticket.Status = domain.StatusInProgress
	s.notify.EscalationDecided(ctx, ticket, status == domain.EscalationApproved)
	return esc, nil
}

// List returns every escalation for managers; for support, only those
// on tickets belonging to their own team. A teamless support principal
// sees an empty list.
func (s *Service) List(ctx context.Context, principal domain.Principal) ([]domain.EscalationRequest, error) {
	if principal.Role == domain.RoleManager {
		return s.escalation.ListAll(ctx)
	}
	if principal.TeamID == nil {
		return nil, nil
	}

	all, err := s.escalation.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.EscalationRequest
	for _, e := range all {
		ticket, err := s.tickets.FindByID(ctx, e.TicketID)
		if err != nil {
			continue
		}
		if ticket.TeamID != nil && *ticket.TeamID == *principal.TeamID {
			out = append(out, e)
		}
	}
	return out, nil
}
