// Package domain holds the entity definitions, enums, and state-machine
// tables that the rest of civictrackd builds on. Nothing in this package
// talks to a database or the network; it is pure data and pure functions.
package domain

// Status is the lifecycle stage of a Ticket.
type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
	StatusEscalated  Status = "ESCALATED"
)

// transitions is the single source of truth for which status changes are
// legal. Any pair not present here is rejected by CanTransition.
var transitions = map[Status]map[Status]bool{
	StatusNew: {
		StatusInProgress: true,
		StatusEscalated:  true,
	},
	StatusInProgress: {
		StatusResolved:  true,
		StatusEscalated: true,
	},
	StatusEscalated: {
		StatusInProgress: true,
	},
	StatusResolved: {
		StatusClosed:     true,
		StatusInProgress: true, // reopen
	},
	StatusClosed: {
		StatusInProgress: true, // reopen
	},
}

// CanTransition reports whether moving a ticket from "from" to "to" is
// permitted by the status transition table.
func CanTransition(from, to Status) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// EntersResolved reports whether a transition into "to" is the kind that
// should stamp resolvedAt (only the first time a ticket reaches RESOLVED).
func EntersResolved(to Status) bool {
	return to == StatusResolved
}

// Valid reports whether s is one of the five known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusResolved, StatusClosed, StatusEscalated:
		return true
	}
	return false
}

// Role is a principal's authorization level.
type Role string

const (
	RoleCitizen Role = "CITIZEN"
	RoleSupport Role = "SUPPORT"
	RoleManager Role = "MANAGER"
)

// EscalationStatus is the lifecycle stage of an EscalationRequest.
type EscalationStatus string

const (
	EscalationPending  EscalationStatus = "PENDING"
	EscalationApproved EscalationStatus = "APPROVED"
	EscalationRejected EscalationStatus = "REJECTED"
)

// NonTerminal reports whether an escalation is still open (blocks new ones).
func (s EscalationStatus) NonTerminal() bool {
	return s == EscalationPending || s == EscalationApproved
}

// NotificationType enumerates the domain events the notification engine
// fans out as per-user Notification rows.
type NotificationType string

const (
	NotifyTicketCreated       NotificationType = "TICKET_CREATED"
	NotifyTicketStatusChanged NotificationType = "TICKET_STATUS_CHANGED"
	NotifyTicketFollowed      NotificationType = "TICKET_FOLLOWED"
	NotifyCommentAdded        NotificationType = "COMMENT_ADDED"
	NotifyTicketAssigned      NotificationType = "TICKET_ASSIGNED"
	NotifyEscalationRequested NotificationType = "ESCALATION_REQUESTED"
	NotifyEscalationApproved  NotificationType = "ESCALATION_APPROVED"
	NotifyEscalationRejected  NotificationType = "ESCALATION_REJECTED"
	NotifyNewTicketForTeam    NotificationType = "NEW_TICKET_FOR_TEAM"
)
