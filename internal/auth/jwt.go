package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/civictrack/civictrackd/internal/domain"
)

// JWTResolver verifies an HMAC-signed JWT and maps its claims onto a
// Principal. It never issues tokens — only the external auth service
// that minted them does.
type JWTResolver struct {
	signingKey []byte
	issuer     string
}

func NewJWTResolver(signingKey, issuer string) *JWTResolver {
	return &JWTResolver{signingKey: []byte(signingKey), issuer: issuer}
}

// Resolve parses and validates tokenString, returning the Principal
// encoded in its claims: user_id, role, and an optional team_id.
func (r *JWTResolver) Resolve(ctx context.Context, tokenString string) (domain.Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.signingKey, nil
	}, jwt.WithIssuer(r.issuer))
	if err != nil || !token.Valid {
		return domain.Principal{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Principal{}, ErrInvalidToken
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return domain.Principal{}, ErrInvalidToken
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return domain.Principal{}, ErrInvalidToken
	}

	roleStr, ok := claims["role"].(string)
	if !ok {
		return domain.Principal{}, ErrInvalidToken
	}
	role := domain.Role(roleStr)

	var teamID *uuid.UUID
	if teamIDStr, ok := claims["team_id"].(string); ok && teamIDStr != "" {
		parsed, err := uuid.Parse(teamIDStr)
		if err != nil {
			return domain.Principal{}, ErrInvalidToken
		}
		teamID = &parsed
	}

	return domain.Principal{UserID: userID, Role: role, TeamID: teamID}, nil
}
