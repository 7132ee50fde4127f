package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Environment variables for runtime API bearer auth.
const (
	EnvJWTSecret   = "REEL_JWT_SECRET"
	EnvJWTIssuer   = "REEL_JWT_ISSUER"
	EnvJWTAudience = "REEL_JWT_AUDIENCE"
	EnvJWTLeeway   = "REEL_JWT_LEEWAY"
)

const minSecretLen = 16

// JWTConfig holds the HS256 key and expected claims for runtime API tokens.
// Leeway tolerates clock skew between the signer and the player.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// JWTEnabled reports whether a signing secret is present.
func JWTEnabled() bool {
	return strings.TrimSpace(os.Getenv(EnvJWTSecret)) != ""
}

// NewJWTConfig reads the auth settings from the environment. The secret is
// mandatory; issuer, audience and leeway are optional.
func NewJWTConfig() (*JWTConfig, error) {
	secret := strings.TrimSpace(os.Getenv(EnvJWTSecret))
	switch {
	case secret == "":
		return nil, &ConfigError{Message: EnvJWTSecret + " is not set"}
	case len(secret) < minSecretLen:
		return nil, &ConfigError{Message: fmt.Sprintf("%s must be at least %d characters, got %d", EnvJWTSecret, minSecretLen, len(secret))}
	}

	cfg := &JWTConfig{
		Secret:   secret,
		Issuer:   strings.TrimSpace(os.Getenv(EnvJWTIssuer)),
		Audience: strings.TrimSpace(os.Getenv(EnvJWTAudience)),
	}
	if raw := os.Getenv(EnvJWTLeeway); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return nil, &ConfigError{Message: "invalid " + EnvJWTLeeway, Cause: err}
		}
		cfg.Leeway = d
	}
	return cfg, nil
}
