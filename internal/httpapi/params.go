package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/civictrack/civictrackd/internal/apperror"
)

func parseIntSafe(s string) (int, error) {
	return strconv.Atoi(s)
}

func queryFloat(r *http.Request, key string, def float64) float64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func queryUUID(r *http.Request, key string) *uuid.UUID {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}

func urlUUID(r *http.Request, key string) (uuid.UUID, error) {
	v := chi.URLParam(r, key)
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.UUID{}, apperror.BadRequest("invalid %s", key)
	}
	return id, nil
}
