package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a citizen, support agent, or manager.
type User struct {
	ID                uuid.UUID
	Phone             string // E.164 Turkish: +90XXXXXXXXXX
	Email             string
	Name              string
	PasswordHash      string
	Role              Role
	TeamID            *uuid.UUID
	IsVerified        bool
	IsActive          bool
	PasswordChangedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}

// Team is a group of SUPPORT users that tickets are routed to.
type Team struct {
	ID          uuid.UUID
	Name        string
	Description string
	IsFallback  bool // matches every category/district; undeletable
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category is a ticket classification, e.g. "Infrastructure".
type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// District is a named area within a city, used for routing and analytics.
type District struct {
	ID        uuid.UUID
	Name      string
	City      string
	CreatedAt time.Time
}

// Location is the one-to-one georeference owned by a Ticket.
type Location struct {
	ID        uuid.UUID
	Latitude  float64
	Longitude float64
	Address   string
	District  string
	City      string
}

// Ticket is the central entity: a reported civic issue.
type Ticket struct {
	ID           uuid.UUID
	Title        string
	Description  string
	Status       Status
	CategoryID   uuid.UUID
	LocationID   uuid.UUID
	ReporterID   uuid.UUID
	TeamID       *uuid.UUID
	ResolvedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// StatusLog is an append-only audit trail entry for a ticket's status.
type StatusLog struct {
	ID          uuid.UUID
	TicketID    uuid.UUID
	OldStatus   *Status
	NewStatus   Status
	ChangedByID *uuid.UUID
	Comment     string
	CreatedAt   time.Time
}

// TicketFollower records a user's subscription to ticket updates.
type TicketFollower struct {
	TicketID   uuid.UUID
	UserID     uuid.UUID
	FollowedAt time.Time
}

// Comment is a remark on a ticket, optionally hidden from citizens.
type Comment struct {
	ID         uuid.UUID
	TicketID   uuid.UUID
	UserID     *uuid.UUID
	Content    string
	IsInternal bool
	CreatedAt  time.Time
}

// Feedback is the reporter's post-resolution rating, at most one per ticket.
type Feedback struct {
	ID        uuid.UUID
	TicketID  uuid.UUID
	UserID    *uuid.UUID
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// EscalationRequest is a support agent's ask for manager review.
type EscalationRequest struct {
	ID             uuid.UUID
	TicketID       uuid.UUID
	RequesterID    *uuid.UUID
	ReviewerID     *uuid.UUID
	Reason         string
	Status         EscalationStatus
	ReviewComment  string
	CreatedAt      time.Time
	ReviewedAt     *time.Time
}

// Notification is a per-user record of a domain event.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TicketID  *uuid.UUID
	Type      NotificationType
	Title     string
	Message   string
	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}

// SavedAddress is a citizen's reusable favorite location.
type SavedAddress struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	City      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// ServiceArea is a read-only (team, category, district) routing tuple,
// read from a plain view over the TeamCategory/TeamDistrict junction tables.
type ServiceArea struct {
	TeamID     uuid.UUID
	CategoryID uuid.UUID
	DistrictID uuid.UUID
}

// Principal is the authenticated actor passed explicitly through every
// service call frame. It is never stored in a global.
type Principal struct {
	UserID uuid.UUID
	Role   Role
	TeamID *uuid.UUID
}

// TicketDetail is the fully eager-loaded aggregate returned by detail
// reads: every graph edge a client needs in one round trip, plus the
// viewer-relative projection fields computed by the ticket service.
type TicketDetail struct {
	Ticket        Ticket
	Category      Category
	Location      Location
	Reporter      User
	AssignedTeam  *Team
	Comments      []Comment
	Followers     []TicketFollower
	StatusLogs    []StatusLog
	Feedback      *Feedback
	Escalations   []EscalationRequest

	IsFollowing  bool
	HasFeedback  bool
	HasEscalation bool
	CanEscalate  bool
}

// NearbyTicket is one row of a spatial proximity search result.
type NearbyTicket struct {
	Ticket     Ticket
	Location   Location
	DistanceM  float64
}

// DashboardKPIs is the manager dashboard's top-line summary
// (SPEC_FULL.md §4.I).
type DashboardKPIs struct {
	Total              int
	Open               int
	Resolved           int
	Closed             int
	Escalated          int
	ResolutionRate     float64
	AverageRating      float64
	AvgResolutionHours float64
}

// HeatmapPoint is one georeferenced density bucket for the map overlay.
type HeatmapPoint struct {
	Latitude  float64
	Longitude float64
	Count     int
	Intensity float64 // normalized 0-1 against the busiest bucket
}

// TeamPerformance is one team's row in the analytics team-performance table.
type TeamPerformance struct {
	TeamID             uuid.UUID
	TeamName           string
	Assigned           int
	Resolved           int
	Open               int
	ResolutionRate     float64
	AvgResolutionHours float64
	AverageRating      float64
	MemberCount        int
	Workload           int
}

// MemberPerformance is one support agent's row within a team breakdown.
type MemberPerformance struct {
	UserID   uuid.UUID
	Name     string
	Assigned int
	Resolved int
}

// CategoryStat is one category's row in the per-category analytics table.
type CategoryStat struct {
	CategoryID    uuid.UUID
	CategoryName  string
	Total         int
	Resolved      int
	AverageRating float64
}

// NeighborhoodStat is one district's ticket volume plus its category
// breakdown.
type NeighborhoodStat struct {
	District        string
	City            string
	Total           int
	ByCategory      map[string]int
}

// FeedbackTrend is one category's rating histogram (1-5) and average.
type FeedbackTrend struct {
	CategoryID    uuid.UUID
	CategoryName  string
	Histogram     [5]int
	Average       float64
}
