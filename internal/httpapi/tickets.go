package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/civictrack/civictrackd/internal/apperror"
	"github.com/civictrack/civictrackd/internal/domain"
	"github.com/civictrack/civictrackd/internal/ticketsvc"
)

type createTicketRequest struct {
	Title          string     `json:"title" validate:"required,max=200"`
	Description    string     `json:"description" validate:"required,max=5000"`
	CategoryID     uuid.UUID  `json:"categoryId" validate:"required"`
	SavedAddressID *uuid.UUID `json:"savedAddressId"`
	Latitude       float64    `json:"latitude" validate:"min=-90,max=90"`
	Longitude      float64    `json:"longitude" validate:"min=-180,max=180"`
	Address        string     `json:"address" validate:"max=500"`
	District       string     `json:"district" validate:"max=200"`
	City           string     `json:"city" validate:"max=200"`
}

func (h *Handler) createTicket(w http.ResponseWriter, r *http.Request) {
	var req createTicketRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ticket, err := h.tickets.Create(r.Context(), ticketsvc.CreateRequest{
		Title:          req.Title,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		SavedAddressID: req.SavedAddressID,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Address:        req.Address,
		District:       req.District,
		City:           req.City,
	}, principalFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}

func (h *Handler) listTickets(w http.ResponseWriter, r *http.Request) {
	pageNum, pageSize, limit, offset := paginationParams(r, 100)
	f := ticketsvc.TicketListFilter{
		TeamID:     queryUUID(r, "team_id"),
		CategoryID: queryUUID(r, "category_id"),
		Limit:      limit,
		Offset:     offset,
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.Status(s)
		f.Status = &status
	}

	tickets, err := h.tickets.List(r.Context(), f, principalFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page{Items: tickets, Total: len(tickets), Page: pageNum, PageSize: pageSize})
}

func (h *Handler) listMyTickets(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r)
	pageNum, pageSize, limit, offset := paginationParams(r, 100)
	self := principal.UserID
	tickets, err := h.tickets.List(r.Context(), ticketsvc.TicketListFilter{
		ReporterID: &self, Limit: limit, Offset: offset,
	}, principal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page{Items: tickets, Total: len(tickets), Page: pageNum, PageSize: pageSize})
}

func (h *Handler) listAssignedTickets(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r)
	if principal.TeamID == nil {
		writeJSON(w, http.StatusOK, page{Items: []domain.Ticket{}, Total: 0, Page: 1, PageSize: 20})
		return
	}
	pageNum, pageSize, limit, offset := paginationParams(r, 100)
	tickets, err := h.tickets.List(r.Context(), ticketsvc.TicketListFilter{
		TeamID: principal.TeamID, Limit: limit, Offset: offset,
	}, principal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page{Items: tickets, Total: len(tickets), Page: pageNum, PageSize: pageSize})
}

func (h *Handler) nearbyTickets(w http.ResponseWriter, r *http.Request) {
	lat := queryFloat(r, "latitude", 0)
	lon := queryFloat(r, "longitude", 0)
	radius := queryFloat(r, "radius_meters", h.nearbyDefaultRadiusM)
	if radius < h.nearbyMinRadiusM || radius > h.nearbyMaxRadiusM {
		writeError(w, apperror.Validation(apperror.FieldError{Field: "radius_meters", Message: "out of allowed range"}))
		return
	}

	results, err := h.tickets.FindNearby(r.Context(), lat, lon, radius, queryUUID(r, "category_id"), 10)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page{Items: results, Total: len(results), Page: 1, PageSize: 10})
}

func (h *Handler) ticketDetail(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	detail, err := h.tickets.Detail(r.Context(), id, principalFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type updateTicketRequest struct {
	Title       string     `json:"title" validate:"max=200"`
	Description string     `json:"description" validate:"max=5000"`
	CategoryID  *uuid.UUID `json:"categoryId"`
}

func (h *Handler) updateTicket(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateTicketRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ticket, err := h.tickets.Update(r.Context(), id, ticketsvc.UpdateRequest{
		Title: req.Title, Description: req.Description, CategoryID: req.CategoryID,
	}, principalFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

type updateStatusRequest struct {
	Status  string `json:"status" validate:"required"`
	Comment string `json:"comment"`
}

func (h *Handler) updateTicketStatus(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateStatusRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ticket, err := h.tickets.UpdateStatus(r.Context(), id, domain.Status(req.Status), req.Comment, principalFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

type assignTeamRequest struct {
	TeamID uuid.UUID `json:"teamId" validate:"required"`
}

func (h *Handler) assignTicketTeam(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req assignTeamRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ticket, err := h.tickets.AssignTeam(r.Context(), id, req.TeamID, principalFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) deleteTicket(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.tickets.Delete(r.Context(), id, principalFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}
