// Package ticketsvc is the ticket lifecycle service: creation, update,
// soft-delete, status transitions, team reassignment, detail projection,
// and nearby search. Every write runs inside one transaction via
// db.WithTx, with notification fan-out happening only after commit —
// the same post-commit, best-effort side-effect shape the teacher uses
// for anything that must not roll back a successful write.
package ticketsvc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civictrack/civictrackd/internal/apperror"
	"github.com/civictrack/civictrackd/internal/domain"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type ticketRepo interface {
	Create(ctx context.Context, tx pgx.Tx, t domain.Ticket) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Ticket, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.Status, resolvedAt bool) error
	AssignTeam(ctx context.Context, tx pgx.Tx, id uuid.UUID, teamID uuid.UUID) error
	Update(ctx context.Context, tx pgx.Tx, id uuid.UUID, title, description string, categoryID uuid.UUID) error
	SoftDelete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	List(ctx context.Context, f TicketListFilter) ([]domain.Ticket, error)
	FindNearby(ctx context.Context, lat, lon, radiusM float64, categoryID *uuid.UUID, limit int) ([]domain.NearbyTicket, error)
}

// TicketListFilter is re-exported so callers never import internal/repository.
type TicketListFilter = listFilter

type listFilter struct {
	ReporterID *uuid.UUID
	TeamID     *uuid.UUID
	CategoryID *uuid.UUID
	Status     *domain.Status
	Limit      int
	Offset     int
}

type locationRepo interface {
	Create(ctx context.Context, tx pgx.Tx, loc domain.Location) error
}

type categoryRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Category, error)
}

type followerRepo interface {
	Follow(ctx context.Context, tx pgx.Tx, ticketID, userID uuid.UUID) error
	Unfollow(ctx context.Context, tx pgx.Tx, ticketID, userID uuid.UUID) error
	IsFollowing(ctx context.Context, ticketID, userID uuid.UUID) (bool, error)
}

type statusLogRepo interface {
	Append(ctx context.Context, tx pgx.Tx, log domain.StatusLog) error
}

type escalationRepo interface {
	HasNonTerminal(ctx context.Context, ticketID uuid.UUID) (bool, error)
}

type feedbackRepo interface {
	FindByTicket(ctx context.Context, ticketID uuid.UUID) (*domain.Feedback, error)
}

type savedAddressRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.SavedAddress, error)
}

type teamRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Team, error)
}

type detailRepo interface {
	Load(ctx context.Context, ticketID uuid.UUID) (domain.TicketDetail, error)
}

type router interface {
	FindMatchingTeam(ctx context.Context, categoryID uuid.UUID, districtName, city string) (*uuid.UUID, error)
}

type notifier interface {
	TicketCreated(ctx context.Context, ticket domain.Ticket)
	NewTicketForTeam(ctx context.Context, ticket domain.Ticket)
	TicketFollowed(ctx context.Context, ticket domain.Ticket, followerID uuid.UUID)
	TicketStatusChanged(ctx context.Context, ticket domain.Ticket, actorID uuid.UUID, newStatus domain.Status)
	TicketAssigned(ctx context.Context, ticket domain.Ticket, newTeamID uuid.UUID)
}

// Service implements the ticket lifecycle described by spec.md §4.D.
type Service struct {
	db            txRunner
	tickets       ticketRepo
	locations     locationRepo
	categories    categoryRepo
	followers     followerRepo
	statusLogs    statusLogRepo
	escalations   escalationRepo
	feedback      feedbackRepo
	savedAddrs    savedAddressRepo
	teams         teamRepo
	detail        detailRepo
	routingSvc    router
	notify        notifier
}

func New(
	db txRunner,
	tickets ticketRepo,
	locations locationRepo,
	categories categoryRepo,
	followers followerRepo,
	statusLogs statusLogRepo,
	escalations escalationRepo,
	feedback feedbackRepo,
	savedAddrs savedAddressRepo,
	teams teamRepo,
	detail detailRepo,
	routingSvc router,
	notify notifier,
) *Service {
	return &Service{
		db: db, tickets: tickets, locations: locations, categories: categories,
		followers: followers, statusLogs: statusLogs, escalations: escalations,
		feedback: feedback, savedAddrs: savedAddrs, teams: teams, detail: detail,
		routingSvc: routingSvc, notify: notify,
	}
}

// CreateRequest is the inbound shape for Create. Exactly one of
// SavedAddressID or the inline Latitude/Longitude/Address/District/City
// quartet must be present; SavedAddressID takes priority when set
// (spec.md §4.D ADDED note).
type CreateRequest struct {
	Title          string
	Description    string
	CategoryID     uuid.UUID
	SavedAddressID *uuid.UUID
	Latitude       float64
	Longitude      float64
	Address        string
	District       string
	City           string
}

// Create validates the category, resolves the location (inline or from
// a saved address), routes the ticket to a team, and persists the full
// creation graph in one transaction: Ticket, Location, the reporter's
// own Follower row, and the opening StatusLog entry. Notifications fire
// only after commit.
func (s *Service) Create(ctx context.Context, req CreateRequest, principal domain.Principal) (domain.Ticket, error) {
	category, err := s.categories.FindByID(ctx, req.CategoryID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if !category.IsActive {
		return domain.Ticket{}, apperror.BadRequest("category is not active")
	}

	loc := domain.Location{
		ID:        uuid.New(),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   req.Address,
		District:  req.District,
		City:      req.City,
	}
	if req.SavedAddressID != nil {
		addr, err := s.savedAddrs.FindByID(ctx, *req.SavedAddressID)
		if err != nil {
			return domain.Ticket{}, err
		}
		if addr.UserID != principal.UserID {
			return domain.Ticket{}, apperror.Forbidden("saved address belongs to another user")
		}
		loc.Latitude = addr.Latitude
		loc.Longitude = addr.Longitude
		loc.Address = addr.Address
		loc.City = addr.City
	}

	teamID, err := s.routingSvc.FindMatchingTeam(ctx, req.CategoryID, loc.District, loc.City)
	if err != nil {
		return domain.Ticket{}, err
	}

	now := time.Now()
	ticket := domain.Ticket{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.StatusNew,
		CategoryID:  req.CategoryID,
		LocationID:  loc.ID,
		ReporterID:  principal.UserID,
		TeamID:      teamID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.locations.Create(ctx, tx, loc); err != nil {
			return err
		}
		if err := s.tickets.Create(ctx, tx, ticket); err != nil {
			return err
		}
		if err := s.followers.Follow(ctx, tx, ticket.ID, principal.UserID); err != nil {
			return err
		}
		newStatus := domain.StatusNew
		return s.statusLogs.Append(ctx, tx, domain.StatusLog{
			ID:          uuid.New(),
			TicketID:    ticket.ID,
			OldStatus:   nil,
			NewStatus:   newStatus,
			ChangedByID: &principal.UserID,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	s.notify.TicketCreated(ctx, ticket)
	if ticket.TeamID != nil {
		s.notify.NewTicketForTeam(ctx, ticket)
	}
	return ticket, nil
}

// UpdateRequest carries the fields Update may change.
type UpdateRequest struct {
	Title       string
	Description string
	CategoryID  *uuid.UUID
}

// Update edits title/description/category, subject to spec.md §4.D's
// role and status rules. Routing is never recomputed here.
func (s *Service) Update(ctx context.Context, ticketID uuid.UUID, req UpdateRequest, principal domain.Principal) (domain.Ticket, error) {
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}

	if ticket.Status == domain.StatusClosed {
		return domain.Ticket{}, apperror.Forbidden("ticket is closed")
	}
	if principal.Role == domain.RoleCitizen {
		if principal.UserID != ticket.ReporterID {
			return domain.Ticket{}, apperror.Forbidden("not the reporter")
		}
		if ticket.Status != domain.StatusNew {
			return domain.Ticket{}, apperror.Forbidden("ticket is no longer editable")
		}
	}

	categoryID := ticket.CategoryID
	if req.CategoryID != nil {
		category, err := s.categories.FindByID(ctx, *req.CategoryID)
		if err != nil {
			return domain.Ticket{}, err
		}
		if !category.IsActive {
			return domain.Ticket{}, apperror.BadRequest("category is not active")
		}
		categoryID = *req.CategoryID
	}

	title, description := req.Title, req.Description
	if title == "" {
		title = ticket.Title
	}
	if description == "" {
		description = ticket.Description
	}

	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		return s.tickets.Update(ctx, tx, ticketID, title, description, categoryID)
	})
	if err != nil {
		return domain.Ticket{}, err
	}
	return s.tickets.FindByID(ctx, ticketID)
}

// Delete soft-deletes a ticket. Only the reporter, and only while the
// ticket is still NEW.
func (s *Service) Delete(ctx context.Context, ticketID uuid.UUID, principal domain.Principal) error {
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if principal.UserID != ticket.ReporterID {
		return apperror.Forbidden("not the reporter")
	}
	if ticket.Status != domain.StatusNew {
		return apperror.Forbidden("ticket is no longer deletable")
	}
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		return s.tickets.SoftDelete(ctx, tx, ticketID)
	})
}

// UpdateStatus validates the transition table, stamps resolvedAt on
// first entry into RESOLVED, appends a StatusLog row, and fans out
// TICKET_STATUS_CHANGED after commit.
func (s *Service) UpdateStatus(ctx context.Context, ticketID uuid.UUID, newStatus domain.Status, comment string, principal domain.Principal) (domain.Ticket, error) {
	if principal.Role == domain.RoleCitizen {
		return domain.Ticket{}, apperror.Forbidden("citizens cannot change ticket status")
	}
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if !domain.CanTransition(ticket.Status, newStatus) {
		return domain.Ticket{}, apperror.BadRequest("cannot transition from %s to %s", ticket.Status, newStatus)
	}

	resolvedAt := domain.EntersResolved(newStatus) && ticket.ResolvedAt == nil
	oldStatus := ticket.Status

	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.tickets.UpdateStatus(ctx, tx, ticketID, newStatus, resolvedAt); err != nil {
			return err
		}
		return s.statusLogs.Append(ctx, tx, domain.StatusLog{
			ID:          uuid.New(),
			TicketID:    ticketID,
			OldStatus:   &oldStatus,
			NewStatus:   newStatus,
			ChangedByID: &principal.UserID,
			Comment:     comment,
			CreatedAt:   time.Now(),
		})
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	updated, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}
	s.notify.TicketStatusChanged(ctx, updated, principal.UserID, newStatus)
	return updated, nil
}

// AssignTeam reroutes a ticket to a different team. Manager only.
func (s *Service) AssignTeam(ctx context.Context, ticketID uuid.UUID, newTeamID uuid.UUID, principal domain.Principal) (domain.Ticket, error) {
	if principal.Role != domain.RoleManager {
		return domain.Ticket{}, apperror.Forbidden("only managers can reassign a ticket's team")
	}
	if _, err := s.tickets.FindByID(ctx, ticketID); err != nil {
		return domain.Ticket{}, err
	}
	if _, err := s.teams.FindByID(ctx, newTeamID); err != nil {
		return domain.Ticket{}, err
	}

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		return s.tickets.AssignTeam(ctx, tx, ticketID, newTeamID)
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	updated, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}
	s.notify.TicketAssigned(ctx, updated, newTeamID)
	return updated, nil
}

// List forces reporterId=self into the filter for citizens and passes
// it through unchanged for every other role. Scoping the assigned list
// to the caller's team, and restricting the full list to support and
// managers, are done by the HTTP layer, not here.
func (s *Service) List(ctx context.Context, f listFilter, principal domain.Principal) ([]domain.Ticket, error) {
	if principal.Role == domain.RoleCitizen {
		self := principal.UserID
		f.ReporterID = &self
	}
	return s.tickets.List(ctx, f)
}

// FindNearby runs the spatial proximity search, optionally narrowed to
// categoryID. Any authenticated user.
func (s *Service) FindNearby(ctx context.Context, lat, lon, radiusM float64, categoryID *uuid.UUID, limit int) ([]domain.NearbyTicket, error) {
	return s.tickets.FindNearby(ctx, lat, lon, radiusM, categoryID, limit)
}

// Detail loads the full TicketDetail aggregate and fills in the
// viewer-relative projection fields, filtering internal comments for
// citizen viewers.
func (s *Service) Detail(ctx context.Context, ticketID uuid.UUID, principal domain.Principal) (domain.TicketDetail, error) {
	d, err := s.detail.Load(ctx, ticketID)
	if err != nil {
		return domain.TicketDetail{}, err
	}

	if principal.Role == domain.RoleCitizen {
		visible := d.Comments[:0:0]
		for _, c := range d.Comments {
			if !c.IsInternal {
				visible = append(visible, c)
			}
		}
		d.Comments = visible
	}

	following, err := s.followers.IsFollowing(ctx, ticketID, principal.UserID)
	if err != nil {
		return domain.TicketDetail{}, err
	}
	d.IsFollowing = following

	fb, err := s.feedback.FindByTicket(ctx, ticketID)
	if err != nil {
		return domain.TicketDetail{}, err
	}
	d.HasFeedback = fb != nil

	hasEscalation, err := s.escalations.HasNonTerminal(ctx, ticketID)
	if err != nil {
		return domain.TicketDetail{}, err
	}
	d.HasEscalation = hasEscalation
	d.CanEscalate = d.Ticket.TeamID != nil && !hasEscalation

	return d, nil
}
