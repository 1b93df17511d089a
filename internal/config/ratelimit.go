package config

import "time"

// RateLimitConfig configures the token bucket limiter.  The bucket lives in
// Redis when a client is available and in process memory otherwise.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    return cfg.normalize()
}

// normalize clamps values the limiter cannot work with.
func (c RateLimitConfig) normalize() RateLimitConfig {
    if c.Capacity < 1 {
        c.Capacity = 1
    }
    if c.RefillTokens < 1 {
        c.RefillTokens = 1
    }
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
        c.TTL = minTTL
    }
    return c
}

// RefillPerSecond is the steady refill rate expressed in tokens per second.
func (c RateLimitConfig) RefillPerSecond() float64 {
    return float64(c.RefillTokens) / c.RefillInterval.Seconds()
}
