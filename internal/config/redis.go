package config

// Redis backs the distributed rate limiter and the admin dashboard response
// cache.  When the server cannot be reached at startup NewRedisClient returns
// nil and callers fall back to in-process limiting and no caching.

import (
    "context"
    "crypto/tls"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisOptions builds client options from REDIS_ADDR, or REDIS_HOST plus
// REDIS_PORT (which win when both are set), REDIS_PASSWORD, REDIS_DB and
// REDIS_TLS.
func RedisOptions() *redis.Options {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
        addr = host + ":" + port
    }
    opts := &redis.Options{
        Addr:     addr,
        Password: envStr("REDIS_PASSWORD", ""),
        DB:       envInt("REDIS_DB", 0),
    }
    if envBool("REDIS_TLS", false) {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    return opts
}

// NewRedisClient connects with RedisOptions and pings with a short timeout.
// It returns nil on failure.
func NewRedisClient() *redis.Client {
    client := redis.NewClient(RedisOptions())
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
