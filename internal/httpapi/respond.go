// Package httpapi is the thin transport adapter described by spec.md
// §4.H: bind and validate JSON, resolve the bearer-token principal,
// apply role guards, call the relevant service, and translate typed
// errors into HTTP responses. No business rule lives in this package.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/civictrack/civictrackd/internal/apperror"
)

var validate = validator.New()

type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorBody struct {
	Detail interface{} `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// writeError translates a service error into the HTTP status/body
// shape described by spec.md §7.
func writeError(w http.ResponseWriter, err error) {
	ae, ok := apperror.As(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "internal error"})
		return
	}

	switch ae.Kind {
	case apperror.KindValidation:
		fields := make([]validationError, len(ae.Validation))
		for i, f := range ae.Validation {
			fields[i] = validationError{Field: f.Field, Message: f.Message}
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: fields})
	case apperror.KindBadRequest:
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: ae.Message})
	case apperror.KindUnauthorized:
		writeJSON(w, http.StatusUnauthorized, errorBody{Detail: ae.Message})
	case apperror.KindForbidden:
		writeJSON(w, http.StatusForbidden, errorBody{Detail: ae.Message})
	case apperror.KindNotFound:
		writeJSON(w, http.StatusNotFound, errorBody{Detail: ae.Message})
	case apperror.KindConflict:
		writeJSON(w, http.StatusConflict, errorBody{Detail: ae.Message})
	case apperror.KindRateLimited:
		w.Header().Set("Retry-After", "30")
		writeJSON(w, http.StatusTooManyRequests, errorBody{Detail: ae.Message})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "internal error"})
	}
}

// decodeAndValidate binds r's JSON body onto dst and runs struct-tag
// validation, returning a KindValidation apperror on either failure. An
// empty body is treated as "use dst's zero value" — callers with every
// field optional (e.g. an escalation review comment) rely on this.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperror.Validation(apperror.FieldError{Field: "body", Message: "invalid JSON: " + err.Error()})
	}
	if err := validate.Struct(dst); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]apperror.FieldError, len(verrs))
			for i, fe := range verrs {
				fields[i] = apperror.FieldError{Field: fe.Field(), Message: fe.ActualTag()}
			}
			return apperror.Validation(fields...)
		}
		return apperror.Validation(apperror.FieldError{Field: "body", Message: err.Error()})
	}
	return nil
}

// page is the uniform pagination envelope (spec.md §4.H).
type page struct {
	Items    interface{} `json:"items"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

func paginationParams(r *http.Request, maxPageSize int) (pageNum, pageSize, limit, offset int) {
	pageNum = queryInt(r, "page", 1)
	if pageNum < 1 {
		pageNum = 1
	}
	pageSize = queryInt(r, "page_size", 20)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	limit = pageSize
	offset = (pageNum - 1) * pageSize
	return
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := parseIntSafe(v)
	if err != nil {
		return def
	}
	return n
}
