package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/civictrack/civictrackd/internal/apperror"
	"github.com/civictrack/civictrackd/internal/auth"
	"github.com/civictrack/civictrackd/internal/domain"
)

type principalKey struct{}

// authMiddleware resolves the bearer token into a Principal via the
// injected auth.Resolver and stores it on the request context. Every
// route mounted under /api/v1 passes through this.
func authMiddleware(resolver auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, apperror.Unauthorized("missing bearer token"))
				return
			}

			principal, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				writeError(w, apperror.Unauthorized("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func principalFrom(r *http.Request) domain.Principal {
	p, _ := r.Context().Value(principalKey{}).(domain.Principal)
	return p
}

// requireRole rejects any principal whose role is not in allowed.
func requireRole(allowed ...domain.Role) func(http.Handler) http.Handler {
	set := make(map[domain.Role]bool, len(allowed))
	for _, r := range allowed {
		set[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !set[principalFrom(r).Role] {
				writeError(w, apperror.Forbidden("role not permitted for this operation"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
