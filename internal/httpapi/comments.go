package httpapi

import "net/http"

type addCommentRequest struct {
	Content    string `json:"content" validate:"required,max=5000"`
	IsInternal bool   `json:"isInternal"`
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req addCommentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Add(r.Context(), id, req.Content, req.IsInternal, principalFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	comments, err := h.comments.List(r.Context(), id, principalFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}
