// Package auth carries the authenticated session through request contexts.
// Tokens are verified by a Verifier (HMAC-signed JWT or OIDC ID token) and the
// resulting Session is passed explicitly to domain systems by handlers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUnauthorized indicates a missing, malformed, or untrusted token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionExpired indicates a well-formed token whose lifetime has ended.
	ErrSessionExpired = errors.New("session expired")
)

// Roles permitted to receive approval requests.
var ManagerRoles = []string{"manager", "admin", "supervisor"}

// Session identifies the caller of a request.
type Session struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsManager reports whether the session role may decide approval requests.
func (s Session) IsManager() bool {
	return slices.Contains(ManagerRoles, s.Role)
}

// Verifier validates a raw bearer token and returns its session.
type Verifier interface {
	Verify(ctx context.Context, token string) (Session, error)
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored on ctx.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// CallerID returns the session on ctx and its subject parsed as a user id.
func CallerID(ctx context.Context) (uuid.UUID, Session, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return uuid.Nil, s, ErrUnauthorized
	}
	id, err := uuid.Parse(s.UserID)
	if err != nil {
		return uuid.Nil, s, fmt.Errorf("%w: subject is not a user id", ErrUnauthorized)
	}
	return id, s, nil
}

// MapHTTPStatus maps auth errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
