// Package auth defines the capability boundary between civictrackd and
// whatever issues bearer tokens. This service only consumes them: a
// Resolver turns a raw header value into a domain.Principal. Signing and
// issuance (login, OTP, refresh) are explicitly out of scope.
package auth

import (
	"context"
	"errors"

	"github.com/civictrack/civictrackd/internal/domain"
)

// ErrInvalidToken is returned by a Resolver when the bearer token is
// missing, malformed, expired, or fails signature verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// Resolver resolves a bearer token (the Authorization header value with
// the "Bearer " prefix already stripped by the caller) into a Principal.
type Resolver interface {
	Resolve(ctx context.Context, token string) (domain.Principal, error)
}
