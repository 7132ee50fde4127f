// Package ratelimit throttles runtime API clients with per-client token buckets.
package ratelimit

import (
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter manages one token bucket per client and endpoint. Idle buckets
// expire from the cache after Config.IdleTTL.
type Limiter struct {
	config  *Config
	buckets *cache.Cache
}

// NewLimiter creates a new rate limiter. A nil config uses DefaultConfig.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	ttl := config.IdleTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Limiter{
		config:  config,
		buckets: cache.New(ttl, ttl/2),
	}
}

// Allow reports whether a request from clientID to the endpoint may proceed.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{}
	}

	cfg := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if cfg == nil {
		cfg = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}
	if cfg.Limit <= 0 || cfg.Window <= 0 {
		return true, Info{Allowed: true}
	}

	bucket := l.bucket(bucketKey(clientID, endpoint, method, cfg), cfg)
	now := time.Now()
	info := Info{Limit: cfg.Limit}

	if bucket.AllowN(now, 1) {
		info.Allowed = true
	} else {
		r := bucket.ReserveN(now, 1)
		info.RetryAfter = r.DelayFrom(now)
		r.CancelAt(now)
	}

	tokens := bucket.TokensAt(now)
	if tokens < 0 {
		tokens = 0
	}
	info.Remaining = int(tokens)
	missing := float64(bucket.Burst()) - tokens
	info.ResetTime = now.Add(time.Duration(missing / float64(bucket.Limit()) * float64(time.Second)))
	return info.Allowed, info
}

// bucket returns the limiter for key, creating it on first use. Each access
// pushes the expiry forward.
func (l *Limiter) bucket(key string, cfg *EndpointConfig) *rate.Limiter {
	if v, ok := l.buckets.Get(key); ok {
		b := v.(*rate.Limiter)
		l.buckets.SetDefault(key, b)
		return b
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.Limit
	}
	b := rate.NewLimiter(rate.Limit(float64(cfg.Limit)/cfg.Window.Seconds()), burst)
	if err := l.buckets.Add(key, b, cache.DefaultExpiration); err != nil {
		// Another request created it first.
		if v, ok := l.buckets.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return b
}

// Clients returns the number of live buckets.
func (l *Limiter) Clients() int {
	return l.buckets.ItemCount()
}
