package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/courier/pkg/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newHMAC(t *testing.T, ttl string) *auth.HMAC {
	t.Helper()
	cfg := &auth.Config{Secret: testSecret, TokenTTL: ttl}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	return auth.NewHMAC(cfg)
}

func TestHMACRoundTrip(t *testing.T) {
	h := newHMAC(t, "1h")

	token, expiresAt, err := h.Issue("u-1", "manager", time.Now())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	s, err := h.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if s.UserID != "u-1" || s.Role != "manager" {
		t.Errorf("session = %+v", s)
	}
	if !s.IsManager() {
		t.Error("IsManager() = false, want true")
	}
	if s.ExpiresAt.Unix() != expiresAt.Unix() {
		t.Errorf("ExpiresAt = %v, want %v", s.ExpiresAt, expiresAt)
	}
}

func TestHMACExpired(t *testing.T) {
	h := newHMAC(t, "1m")

	token, _, err := h.Issue("u-1", "employee", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = h.Verify(context.Background(), token)
	if !errors.Is(err, auth.ErrSessionExpired) {
		t.Errorf("Verify() error = %v, want ErrSessionExpired", err)
	}
}

func TestHMACRejectsForeignSignature(t *testing.T) {
	issuer := auth.NewHMAC(&auth.Config{Secret: strings.Repeat("x", 32), TokenTTL: "1h"})
	token, _, err := issuer.Issue("u-1", "employee", time.Now())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = newHMAC(t, "1h").Verify(context.Background(), token)
	if !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("Verify() error = %v, want ErrUnauthorized", err)
	}
}

func TestHMACMalformed(t *testing.T) {
	_, err := newHMAC(t, "1h").Verify(context.Background(), "not-a-token")
	if !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("Verify() error = %v, want ErrUnauthorized", err)
	}
}

func TestSessionIsManager(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"manager", true},
		{"admin", true},
		{"supervisor", true},
		{"employee", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := (auth.Session{Role: tt.role}).IsManager(); got != tt.want {
				t.Errorf("IsManager() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"expired", auth.ErrSessionExpired, http.StatusUnauthorized},
		{"unauthorized", auth.ErrUnauthorized, http.StatusUnauthorized},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := auth.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestContextSession(t *testing.T) {
	if _, ok := auth.FromContext(context.Background()); ok {
		t.Error("FromContext() on empty context ok = true")
	}

	ctx := auth.WithSession(context.Background(), auth.Session{UserID: "u-2"})
	s, ok := auth.FromContext(ctx)
	if !ok || s.UserID != "u-2" {
		t.Errorf("FromContext() = %+v, %v", s, ok)
	}
}

func TestMiddleware(t *testing.T) {
	h := newHMAC(t, "1h")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	valid, _, _ := h.Issue("u-1", "employee", time.Now())
	expired, _, _ := newHMAC(t, "1m").Issue("u-1", "employee", time.Now().Add(-time.Hour))

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := auth.FromContext(r.Context()); ok {
			seen = s.UserID
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mw := auth.Middleware(h, logger, "/healthz")(next)

	tests := []struct {
		name     string
		path     string
		header   string
		want     int
		wantBody string
	}{
		{"valid", "/api/documents", "Bearer " + valid, http.StatusNoContent, ""},
		{"missing", "/api/documents", "", http.StatusUnauthorized, "unauthorized"},
		{"wrong scheme", "/api/documents", "Basic abc", http.StatusUnauthorized, "unauthorized"},
		{"expired", "/api/documents", "Bearer " + expired, http.StatusUnauthorized, "session expired"},
		{"public", "/healthz", "", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want to contain %q", rec.Body.String(), tt.wantBody)
			}
			if tt.name == "valid" && seen != "u-1" {
				t.Errorf("session user = %q, want u-1", seen)
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     auth.Config
		wantErr string
	}{
		{"hmac ok", auth.Config{Secret: testSecret}, ""},
		{"short secret", auth.Config{Secret: "short"}, "at least 32 bytes"},
		{"oidc missing issuer", auth.Config{Mode: auth.ModeOIDC, ClientID: "c"}, "issuer and client_id required"},
		{"oidc ok", auth.Config{Mode: auth.ModeOIDC, Issuer: "https://id.example.com", ClientID: "c"}, ""},
		{"bad ttl", auth.Config{Secret: testSecret, TokenTTL: "soon"}, "invalid token_ttl"},
		{"unknown mode", auth.Config{Mode: "saml"}, "unknown mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Finalize(nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Finalize() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Finalize() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("TEST_AUTH_SECRET", testSecret)
	t.Setenv("TEST_AUTH_TTL", "30m")

	cfg := &auth.Config{}
	err := cfg.Finalize(&auth.Env{Secret: "TEST_AUTH_SECRET", TokenTTL: "TEST_AUTH_TTL"})
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg.Mode != auth.ModeHMAC {
		t.Errorf("Mode = %q, want hmac", cfg.Mode)
	}
	if cfg.RoleClaim != "role" {
		t.Errorf("RoleClaim = %q, want role", cfg.RoleClaim)
	}
	if cfg.TokenTTLDuration() != 30*time.Minute {
		t.Errorf("TokenTTLDuration() = %v, want 30m", cfg.TokenTTLDuration())
	}
}

func TestNewVerifierUnknownMode(t *testing.T) {
	if _, err := auth.NewVerifier(context.Background(), &auth.Config{Mode: "saml"}); err == nil {
		t.Error("NewVerifier() error = nil, want error")
	}
}

func TestCallerID(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		ctx     context.Context
		want    uuid.UUID
		wantErr bool
	}{
		{"no session", context.Background(), uuid.Nil, true},
		{"non-uuid subject", auth.WithSession(context.Background(), auth.Session{UserID: "42"}), uuid.Nil, true},
		{"valid", auth.WithSession(context.Background(), auth.Session{UserID: id.String(), Role: "manager"}), id, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := auth.CallerID(tt.ctx)
			if tt.wantErr {
				if !errors.Is(err, auth.ErrUnauthorized) {
					t.Errorf("CallerID() error = %v, want ErrUnauthorized", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("CallerID() = %s, %v", got, err)
			}
		})
	}
}
