package config

import (
    "strings"
    "time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is disabled.
// Only routes listed in Routes (echo route patterns such as /v1/labs/:id) are
// cached; grid, status and booking views change with the clock and stay live.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    Routes       map[string]bool
    TTL          time.Duration
    KeyStrategy  string
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.  Defaults
// are used when variables are not set.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      parseList(envStr("CACHE_METHODS", "GET"), strings.ToUpper),
        Routes:       parseList(envStr("CACHE_ROUTES", "/v1/labs,/v1/labs/:id"), nil),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
        Prefix:       envStr("CACHE_PREFIX", "labseat:cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
}

func parseList(s string, norm func(string) string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        p = strings.TrimSpace(p)
        if norm != nil {
            p = norm(p)
        }
        if p != "" {
            m[p] = true
        }
    }
    return m
}
