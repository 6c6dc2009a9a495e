package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JaimeStill/courier/pkg/auth"
)

// Session is the caller identity a Client sends with every request.
// UserID, Role, and ExpiresAt are informational; the server verifies Token.
type Session struct {
	Token     string
	UserID    string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the session lifetime has ended at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SessionFromToken reads the identity claims of token without verifying its
// signature. The server remains the authority on whether the token is valid.
func SessionFromToken(token string) (Session, error) {
	var claims auth.Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Session{}, fmt.Errorf("parse token: %w", err)
	}

	s := Session{
		Token:  token,
		UserID: claims.Subject,
		Role:   claims.Role,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// SessionObserver is told when the server rejects the session as expired.
type SessionObserver interface {
	SessionExpired(s Session)
}

// ObserverFunc adapts a function to SessionObserver.
type ObserverFunc func(s Session)

func (f ObserverFunc) SessionExpired(s Session) { f(s) }

// expiry notifies the observer at most once per session.
type expiry struct {
	observer SessionObserver
	once     sync.Once
}

func (e *expiry) notify(s Session) {
	if e.observer == nil {
		return
	}
	e.once.Do(func() { e.observer.SessionExpired(s) })
}
