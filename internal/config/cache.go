package config

import "time"

// CacheConfig drives the Redis response cache placed in front of the admin
// dashboard.  Entries are dropped early by InvalidatePrefix whenever users,
// stores or ratings change, so TTL only bounds staleness when no event
// arrives.  KeyStrategy is one of route, route_query or user_route_query.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    KeyStrategy  string
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables.  Methods are upper-cased.
func LoadCacheConfig() CacheConfig {
    cfg := CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      envList("CACHE_METHODS", "GET"),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
        Prefix:       envStr("CACHE_PREFIX", "cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
    if cfg.TTL <= 0 {
        cfg.TTL = 30 * time.Second
    }
    return cfg
}
