package ratelimit

import (
	"strings"
)

// unlimited marks an endpoint that is never throttled.
var unlimited = EndpointConfig{}

// MatchEndpoint returns the configuration for a request, or nil when the
// default limit applies. Exact paths win over prefixes.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &unlimited
	}

	for i := range configs {
		if configs[i].Path == path && configs[i].Method == method {
			return &configs[i]
		}
	}

	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}
	return nil
}

// bucketKey groups requests that share a budget. Prefix endpoints share one
// bucket per client, so every frame number counts against the same limit.
func bucketKey(clientID, path, method string, cfg *EndpointConfig) string {
	if cfg != nil && cfg.Path != "" {
		path = cfg.Path
	}
	return clientID + ":" + method + ":" + path
}
