package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig overrides the default allowance for one route. A Path
// ending in "/" matches every path below it. Burst defaults to Limit.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration
	// IdleTTL is how long an unused client bucket is kept.
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig returns the limits used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// LoadConfig loads rate limiting configuration from REEL_RATE_LIMIT_* variables.
func LoadConfig() *Config {
	if !envOr("REEL_RATE_LIMIT_ENABLED", true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	cfg := DefaultConfig()
	cfg.DefaultLimit = envOr("REEL_RATE_LIMIT_DEFAULT_LIMIT", cfg.DefaultLimit, strconv.Atoi)
	cfg.DefaultWindow = envOr("REEL_RATE_LIMIT_DEFAULT_WINDOW", cfg.DefaultWindow, time.ParseDuration)
	cfg.IdleTTL = envOr("REEL_RATE_LIMIT_IDLE_TTL", cfg.IdleTTL, time.ParseDuration)
	cfg.Whitelist = parseIPList(os.Getenv("REEL_RATE_LIMIT_WHITELIST"))
	cfg.Blacklist = parseIPList(os.Getenv("REEL_RATE_LIMIT_BLACKLIST"))
	return cfg
}

// DefaultEndpointConfigs returns the per-endpoint limits. Frame lookups are
// polled by a player at video rate, so they get the widest allowance.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/frames/", Method: "GET", Limit: 6000, Window: time.Minute, Burst: 300},
		{Path: "/beats/", Method: "GET", Limit: 6000, Window: time.Minute, Burst: 300},
		{Path: "/reel", Method: "GET", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/timeline", Method: "GET", Limit: 120, Window: time.Minute, Burst: 20},
	}
}

// envOr parses key with parse, keeping def when it is unset or malformed.
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if v, err := parse(raw); err == nil {
		return v
	}
	return def
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
