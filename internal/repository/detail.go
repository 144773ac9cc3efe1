package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civictrack/civictrackd/internal/domain"
)

// DetailRepo assembles the full TicketDetail aggregate in one logical
// read: the ticket row plus every edge a client needs, fetched without
// crossing a transaction boundary lazily (spec.md §9 design note on
// eager-loading aggregate reads).
type DetailRepo struct {
	pool       *pgxpool.Pool
	tickets    *TicketRepo
	categories *CategoryRepo
	users      *UserRepo
	teams      *TeamRepo
	comments   *CommentRepo
	followers  *FollowerRepo
	statusLogs *StatusLogRepo
	feedback   *FeedbackRepo
	escalation *EscalationRepo
}

func NewDetailRepo(pool *pgxpool.Pool, tickets *TicketRepo, categories *CategoryRepo, users *UserRepo, teams *TeamRepo, comments *CommentRepo, followers *FollowerRepo, statusLogs *StatusLogRepo, feedback *FeedbackRepo, escalation *EscalationRepo) *DetailRepo {
	return &DetailRepo{
		pool: pool, tickets: tickets, categories: categories, users: users, teams: teams,
		comments: comments, followers: followers, statusLogs: statusLogs, feedback: feedback, escalation: escalation,
	}
}

// Load fetches a TicketDetail with every graph edge populated but leaves
// the viewer-relative projection fields (IsFollowing, CanEscalate, ...)
// zero-valued — internal/ticketsvc computes those from the Principal.
func (r *DetailRepo) Load(ctx context.Context, ticketID uuid.UUID) (domain.TicketDetail, error) {
	t, err := r.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return domain.TicketDetail{}, err
	}

	var loc domain.Location
	if err := r.pool.QueryRow(ctx, `SELECT id, latitude, longitude, address, district, city FROM locations WHERE id = $1`, t.LocationID).
		Scan(&loc.ID, &loc.Latitude, &loc.Longitude, &loc.Address, &loc.District, &loc.City); err != nil {
		return domain.TicketDetail{}, wrapDBError("load ticket location", "location", err)
	}

	cat, err := r.categories.FindByID(ctx, t.CategoryID)
	if err != nil {
		return domain.TicketDetail{}, err
	}

	reporter, err := r.users.FindByID(ctx, t.ReporterID)
	if err != nil {
		return domain.TicketDetail{}, err
	}

	var assignedTeam *domain.Team
	if t.TeamID != nil {
		team, err := r.teams.FindByID(ctx, *t.TeamID)
		if err != nil {
			return domain.TicketDetail{}, err
		}
		assignedTeam = &team
	}

	comments, err := r.comments.ListByTicket(ctx, ticketID, true)
	if err != nil {
		return domain.TicketDetail{}, err
	}

	followers, err := r.followers.ListByTicket(ctx, ticketID)
	if err != nil {
		return domain.TicketDetail{}, err
	}

	statusLogs, err := r.statusLogs.ListByTicket(ctx, ticketID)
	if err != nil {
		return domain.TicketDetail{}, err
	}

	fb, err := r.feedback.FindByTicket(ctx, ticketID)
	if err != nil {
		return domain.TicketDetail{}, err
	}

	escalations, err := r.escalation.ListByTicket(ctx, ticketID)
	if err != nil {
		return domain.TicketDetail{}, err
	}

	return domain.TicketDetail{
		Ticket:       t,
		Category:     cat,
		Location:     loc,
		Reporter:     reporter,
		AssignedTeam: assignedTeam,
		Comments:     comments,
		Followers:    followers,
		StatusLogs:   statusLogs,
		Feedback:     fb,
		Escalations:  escalations,
	}, nil
}
