package auth

import (
	"fmt"
	"os"
	"time"
)

// Verifier modes accepted by Config.Mode.
const (
	ModeHMAC = "hmac"
	ModeOIDC = "oidc"
)

// Config selects and parameterizes the token verifier.
type Config struct {
	Mode      string `toml:"mode"`
	Secret    string `toml:"secret"`
	TokenTTL  string `toml:"token_ttl"`
	Issuer    string `toml:"issuer"`
	ClientID  string `toml:"client_id"`
	RoleClaim string `toml:"role_claim"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Mode      string
	Secret    string
	TokenTTL  string
	Issuer    string
	ClientID  string
	RoleClaim string
}

// TokenTTLDuration returns TokenTTL as a time.Duration.
func (c *Config) TokenTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TokenTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
	if overlay.TokenTTL != "" {
		c.TokenTTL = overlay.TokenTTL
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.RoleClaim != "" {
		c.RoleClaim = overlay.RoleClaim
	}
}

func (c *Config) loadDefaults() {
	if c.Mode == "" {
		c.Mode = ModeHMAC
	}
	if c.TokenTTL == "" {
		c.TokenTTL = "12h"
	}
	if c.RoleClaim == "" {
		c.RoleClaim = "role"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, target *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*target = v
		}
	}

	set(env.Mode, &c.Mode)
	set(env.Secret, &c.Secret)
	set(env.TokenTTL, &c.TokenTTL)
	set(env.Issuer, &c.Issuer)
	set(env.ClientID, &c.ClientID)
	set(env.RoleClaim, &c.RoleClaim)
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.TokenTTL); err != nil {
		return fmt.Errorf("invalid token_ttl: %w", err)
	}

	switch c.Mode {
	case ModeHMAC:
		if len(c.Secret) < 32 {
			return fmt.Errorf("secret must be at least 32 bytes")
		}
	case ModeOIDC:
		if c.Issuer == "" || c.ClientID == "" {
			return fmt.Errorf("issuer and client_id required")
		}
	default:
		return fmt.Errorf("unknown mode: %s", c.Mode)
	}
	return nil
}
