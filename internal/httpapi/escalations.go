package httpapi

import (
	"net/http"

	"github.com/google/uuid"
)

type createEscalationRequest struct {
	TicketID uuid.UUID `json:"ticket_id" validate:"required"`
	Reason   string    `json:"reason" validate:"required,max=2000"`
}

func (h *Handler) createEscalation(w http.ResponseWriter, r *http.Request) {
	var req createEscalationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	esc, err := h.escalations.Create(r.Context(), req.TicketID, req.Reason, principalFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, esc)
}

type reviewEscalationRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) approveEscalation(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req reviewEscalationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	esc, err := h.escalations.Approve(r.Context(), id, req.Comment, principalFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, esc)
}

func (h *Handler) rejectEscalation(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req reviewEscalationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	esc, err := h.escalations.Reject(r.Context(), id, req.Comment, principalFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, esc)
}

func (h *Handler) listEscalations(w http.ResponseWriter, r *http.Request) {
	escs, err := h.escalations.List(r.Context(), principalFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, escs)
}
