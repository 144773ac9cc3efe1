// Package notification fans out domain events as per-user Notification
// rows. The Engine is constructed with a notifier.Notifier, but no event
// function sends through it: every event produces Notification rows only,
// never an SMS or email. The shape is adapted from the teacher's decision-point
// Dispatcher: one writer, several event functions that compute a
// recipient set and invoke the writer per recipient, and a
// DispatchResult slice recording per-recipient outcome, now driven by
// domain recipients instead of static config-file routes.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/civictrack/civictrackd/internal/domain"
	"github.com/civictrack/civictrackd/internal/notifier"
)

// maxFanOut bounds the number of concurrent writer calls for one event,
// the way the teacher bounds concurrent work with golang.org/x/sync.
const maxFanOut = 8

// notificationRepo is the subset of *repository.NotificationRepo the
// engine writes through.
type notificationRepo interface {
	Create(ctx context.Context, n domain.Notification) error
}

// followerRepo is the subset of *repository.FollowerRepo the engine reads.
type followerRepo interface {
	ListFollowerUserIDs(ctx context.Context, ticketID uuid.UUID) ([]uuid.UUID, error)
}

// userRepo is the subset of *repository.UserRepo the engine reads.
type userRepo interface {
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.User, error)
	ListManagers(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// DispatchResult records the outcome of writing one recipient's
// notification, the per-channel outcome record of the teacher's
// Dispatcher generalized to per-recipient outcome.
type DispatchResult struct {
	UserID  uuid.UUID
	Success bool
	Error   string
}

// Engine is the notification fan-out service. Every exported event
// method is best-effort: it never returns an error to its caller, and a
// failure writing one recipient's row does not stop the others.
type Engine struct {
	notifications notificationRepo
	followers     followerRepo
	users         userRepo
	sms           notifier.Notifier
	log           *slog.Logger
}

func New(notifications notificationRepo, followers followerRepo, users userRepo, sms notifier.Notifier, log *slog.Logger) *Engine {
	return &Engine{notifications: notifications, followers: followers, users: users, sms: sms, log: log}
}

// createNotification is the single writer every event function funnels
// through.
func (e *Engine) createNotification(ctx context.Context, userID uuid.UUID, typ domain.NotificationType, title, message string, ticketID *uuid.UUID) error {
	n := domain.Notification{
		ID:       uuid.New(),
		UserID:   userID,
		TicketID: ticketID,
		Type:     typ,
		Title:    title,
		Message:  message,
	}
	return e.notifications.Create(ctx, n)
}

// dispatch writes typ to every recipient in userIDs concurrently, bounded
// by maxFanOut, and returns a DispatchResult per recipient. Errors are
// logged here and never propagated — see notifyBestEffort.
func (e *Engine) dispatch(ctx context.Context, userIDs []uuid.UUID, typ domain.NotificationType, title, message string, ticketID *uuid.UUID) []DispatchResult {
	results := make([]DispatchResult, len(userIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFanOut)

	for i, uid := range userIDs {
		i, uid := i, uid
		g.Go(func() error {
			err := e.createNotification(gctx, uid, typ, title, message, ticketID)
			if err != nil {
				results[i] = DispatchResult{UserID: uid, Success: false, Error: err.Error()}
			} else {
				results[i] = DispatchResult{UserID: uid, Success: true}
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// notifyBestEffort runs fn and swallows any error after logging it, the
// error-suppressing boundary every event function below is wrapped in so
// a notification failure never affects the transaction that triggered it.
func (e *Engine) notifyBestEffort(ctx context.Context, event string, fn func() []DispatchResult) {
	results := fn()
	for _, r := range results {
		if !r.Success {
			e.log.Warn("notification delivery failed", "event", event, "user_id", r.UserID, "error", r.Error)
		}
	}
}

// preview truncates s to at most n characters, the same ellipsis
// convention the teacher's truncate helper uses for SMS/email bodies.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return "..."
	}
	return string(r[:n-3]) + "..."
}

// TicketCreated notifies the reporter their ticket was filed.
func (e *Engine) TicketCreated(ctx context.Context, ticket domain.Ticket) {
	e.notifyBestEffort(ctx, "TICKET_CREATED", func() []DispatchResult {
		title := "Ticket submitted"
		msg := fmt.Sprintf("Your report %q has been submitted.", preview(ticket.Title, 50))
		return e.dispatch(ctx, []uuid.UUID{ticket.ReporterID}, domain.NotifyTicketCreated, title, msg, &ticket.ID)
	})
}

// NewTicketForTeam notifies every SUPPORT member of the routed team.
func (e *Engine) NewTicketForTeam(ctx context.Context, ticket domain.Ticket) {
	if ticket.TeamID == nil {
		return
	}
	e.notifyBestEffort(ctx, "NEW_TICKET_FOR_TEAM", func() []DispatchResult {
		members, err := e.users.ListByTeam(ctx, *ticket.TeamID)
		if err != nil {
			e.log.Warn("new ticket for team: list team members", "error", err)
			return nil
		}
		recipients := excludeUser(userIDs(members), ticket.ReporterID)
		title := "New ticket assigned to your team"
		msg := fmt.Sprintf("%q was routed to your team.", preview(ticket.Title, 50))
		return e.dispatch(ctx, recipients, domain.NotifyNewTicketForTeam, title, msg, &ticket.ID)
	})
}

// TicketFollowed notifies the reporter when someone else follows.
func (e *Engine) TicketFollowed(ctx context.Context, ticket domain.Ticket, followerID uuid.UUID) {
	if followerID == ticket.ReporterID {
		return
	}
	e.notifyBestEffort(ctx, "TICKET_FOLLOWED", func() []DispatchResult {
		title := "New follower"
		msg := fmt.Sprintf("Someone is now following %q.", preview(ticket.Title, 50))
		return e.dispatch(ctx, []uuid.UUID{ticket.ReporterID}, domain.NotifyTicketFollowed, title, msg, &ticket.ID)
	})
}

// TicketStatusChanged notifies the reporter (unless they are the actor)
// and every follower (minus the reporter and actor).
func (e *Engine) TicketStatusChanged(ctx context.Context, ticket domain.Ticket, actorID uuid.UUID, newStatus domain.Status) {
	e.notifyBestEffort(ctx, "TICKET_STATUS_CHANGED", func() []DispatchResult {
		followerIDs, err := e.followers.ListFollowerUserIDs(ctx, ticket.ID)
		if err != nil {
			e.log.Warn("status changed: list followers", "error", err)
			return nil
		}
		recipients := dedupeUsers(append([]uuid.UUID{ticket.ReporterID}, followerIDs...))
		recipients = excludeUser(recipients, actorID)

		title := "Ticket status updated"
		msg := fmt.Sprintf("%q is now %s.", preview(ticket.Title, 40), newStatus)
		return e.dispatch(ctx, recipients, domain.NotifyTicketStatusChanged, title, msg, &ticket.ID)
	})
}

// TicketAssigned notifies every SUPPORT member of the newly assigned
// team, minus the reporter.
func (e *Engine) TicketAssigned(ctx context.Context, ticket domain.Ticket, newTeamID uuid.UUID) {
	e.notifyBestEffort(ctx, "TICKET_ASSIGNED", func() []DispatchResult {
		members, err := e.users.ListByTeam(ctx, newTeamID)
		if err != nil {
			e.log.Warn("ticket assigned: list team members", "error", err)
			return nil
		}
		recipients := excludeUser(userIDs(members), ticket.ReporterID)
		title := "Ticket reassigned to your team"
		msg := fmt.Sprintf("%q was reassigned to your team.", preview(ticket.Title, 40))
		return e.dispatch(ctx, recipients, domain.NotifyTicketAssigned, title, msg, &ticket.ID)
	})
}

// CommentAdded notifies the reporter, followers, and the ticket's team,
// each minus the author, deduplicated across the three sets.
func (e *Engine) CommentAdded(ctx context.Context, ticket domain.Ticket, authorID uuid.UUID) {
	e.notifyBestEffort(ctx, "COMMENT_ADDED", func() []DispatchResult {
		followerIDs, err := e.followers.ListFollowerUserIDs(ctx, ticket.ID)
		if err != nil {
			e.log.Warn("comment added: list followers", "error", err)
			return nil
		}
		recipients := append([]uuid.UUID{ticket.ReporterID}, followerIDs...)

		if ticket.TeamID != nil {
			members, err := e.users.ListByTeam(ctx, *ticket.TeamID)
			if err != nil {
				e.log.Warn("comment added: list team members", "error", err)
			} else {
				recipients = append(recipients, userIDs(members)...)
			}
		}

		recipients = dedupeUsers(recipients)
		recipients = excludeUser(recipients, authorID)

		title := "New comment"
		msg := fmt.Sprintf("New comment on %q.", preview(ticket.Title, 45))
		return e.dispatch(ctx, recipients, domain.NotifyCommentAdded, title, msg, &ticket.ID)
	})
}

// EscalationRequested notifies every manager.
func (e *Engine) EscalationRequested(ctx context.Context, ticket domain.Ticket) {
	e.notifyBestEffort(ctx, "ESCALATION_REQUESTED", func() []DispatchResult {
		managers, err := e.users.ListManagers(ctx)
		if err != nil {
			e.log.Warn("escalation requested: list managers", "error", err)
			return nil
		}
		title := "Escalation needs review"
		msg := fmt.Sprintf("%q was escalated for your review.", preview(ticket.Title, 40))
		return e.dispatch(ctx, userIDs(managers), domain.NotifyEscalationRequested, title, msg, &ticket.ID)
	})
}

// EscalationDecided notifies the reporter of an approve/reject decision.
func (e *Engine) EscalationDecided(ctx context.Context, ticket domain.Ticket, approved bool) {
	typ := domain.NotifyEscalationRejected
	title := "Escalation rejected"
	if approved {
		typ = domain.NotifyEscalationApproved
		title = "Escalation approved"
	}
	e.notifyBestEffort(ctx, string(typ), func() []DispatchResult {
		msg := fmt.Sprintf("The escalation on %q was decided.", preview(ticket.Title, 40))
		return e.dispatch(ctx, []uuid.UUID{ticket.ReporterID}, typ, title, msg, &ticket.ID)
	})
}

func userIDs(users []domain.User) []uuid.UUID {
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

func excludeUser(ids []uuid.UUID, exclude uuid.UUID) []uuid.UUID {
	out := ids[:0:0]
	for _, id := range ids {
		if id != exclude {
			out = append(out, id)
		}
	}
	return out
}

func dedupeUsers(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
