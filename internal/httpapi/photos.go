package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/civictrack/civictrackd/internal/apperror"
)

const maxPhotoBytes = 10 << 20 // 10 MiB

type photoResponse struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	Filename string    `json:"filename"`
}

// uploadTicketPhoto stores a multipart attachment under photos/<uuid>.ext,
// the key-naming convention the original storage service uses.
func (h *Handler) uploadTicketPhoto(w http.ResponseWriter, r *http.Request) {
	if _, err := urlUUID(r, "id"); err != nil {
		writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		writeError(w, apperror.Validation(apperror.FieldError{Field: "file", Message: "file too large or malformed"}))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperror.Validation(apperror.FieldError{Field: "file", Message: "missing multipart file"}))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperror.Internal(fmt.Errorf("read upload: %w", err)))
		return
	}

	ext := strings.TrimPrefix(filepath.Ext(header.Filename), ".")
	if ext == "" {
		ext = "jpg"
	}
	photoID := uuid.New()
	key := fmt.Sprintf("photos/%s.%s", photoID, ext)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	url, err := h.storage.Put(r.Context(), key, contentType, data)
	if err != nil {
		writeError(w, apperror.Internal(fmt.Errorf("store photo: %w", err)))
		return
	}

	writeJSON(w, http.StatusCreated, photoResponse{ID: photoID, URL: url, Filename: header.Filename})
}
