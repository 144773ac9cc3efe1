package httpapi

import "net/http"

func (h *Handler) followTicket(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.followers.Follow(r.Context(), id, principalFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "following"})
}

func (h *Handler) unfollowTicket(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.followers.Unfollow(r.Context(), id, principalFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}
