package httpapi

import "net/http"

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r)
	pageNum, pageSize, limit, offset := paginationParams(r, 100)
	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	items, err := h.notifications.ListByUser(r.Context(), principal.UserID, unreadOnly, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page{Items: items, Total: len(items), Page: pageNum, PageSize: pageSize})
}

func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	principal := principalFrom(r)
	if err := h.notifications.MarkRead(r.Context(), id, principal.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *Handler) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r)
	if err := h.notifications.MarkAllRead(r.Context(), principal.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
