package httpapi

import "net/http"

func (h *Handler) analyticsDashboard(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.analytics.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, kpis)
}

func (h *Handler) analyticsHeatmap(w http.ResponseWriter, r *http.Request) {
	categoryID := queryUUID(r, "category_id")
	points, err := h.analytics.Heatmap(r.Context(), categoryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (h *Handler) analyticsTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.analytics.Teams(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

func (h *Handler) analyticsTeamMembers(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	members, err := h.analytics.TeamMembers(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *Handler) analyticsCategories(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) analyticsNeighborhoods(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Neighborhoods(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) analyticsFeedbackTrends(w http.ResponseWriter, r *http.Request) {
	trends, err := h.analytics.FeedbackTrends(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trends)
}
