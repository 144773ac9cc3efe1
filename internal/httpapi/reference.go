package httpapi

import (
	"net/http"

	"github.com/civictrack/civictrackd/internal/apperror"
)

// listCategories and listTeams back the lookups a ticket-creation form
// needs (SPEC_FULL.md §4.J) — read-only, no principal-scoping.
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListActive(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) listTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

func (h *Handler) listDistricts(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		writeError(w, apperror.BadRequest("city query parameter is required"))
		return
	}
	districts, err := h.districts.ListByCity(r.Context(), city)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, districts)
}
