package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload issued and accepted in HMAC mode.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// HMAC verifies and issues HS256 tokens signed with a shared secret.
type HMAC struct {
	secret []byte
	ttl    time.Duration
}

// NewHMAC creates an HMAC verifier from cfg.
func NewHMAC(cfg *Config) *HMAC {
	return &HMAC{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TokenTTLDuration(),
	}
}

// Issue signs a token for userID with the given role.
func (h *HMAC) Issue(userID, role string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(h.ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

func (h *HMAC) Verify(_ context.Context, raw string) (Session, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(
		raw, &claims,
		func(*jwt.Token) (any, error) { return h.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, ErrSessionExpired
		}
		return Session{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	if claims.Subject == "" {
		return Session{}, fmt.Errorf("%w: missing subject", ErrUnauthorized)
	}

	s := Session{UserID: claims.Subject, Role: claims.Role}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// OIDC verifies ID tokens issued by an OpenID Connect provider.
type OIDC struct {
	verifier  *oidc.IDTokenVerifier
	roleClaim string
}

// NewOIDC discovers the provider configuration at cfg.Issuer.
func NewOIDC(ctx context.Context, cfg *Config) (*OIDC, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}

	return &OIDC{
		verifier:  provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		roleClaim: cfg.RoleClaim,
	}, nil
}

func (o *OIDC) Verify(ctx context.Context, raw string) (Session, error) {
	token, err := o.verifier.Verify(ctx, raw)
	if err != nil {
		var expired *oidc.TokenExpiredError
		if errors.As(err, &expired) {
			return Session{}, ErrSessionExpired
		}
		return Session{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	var claims map[string]any
	if err := token.Claims(&claims); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	role, _ := claims[o.roleClaim].(string)
	return Session{
		UserID:    token.Subject,
		Role:      role,
		ExpiresAt: token.Expiry,
	}, nil
}

// NewVerifier builds the verifier selected by cfg.Mode.
func NewVerifier(ctx context.Context, cfg *Config) (Verifier, error) {
	switch cfg.Mode {
	case ModeHMAC:
		return NewHMAC(cfg), nil
	case ModeOIDC:
		return NewOIDC(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown auth mode: %s", cfg.Mode)
	}
}
