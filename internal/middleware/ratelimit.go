package middleware

import (
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "golang.org/x/time/rate"

    "github.com/iliyamo/store-rating/internal/config"
)

// limiterScript is an atomic token bucket keyed per client.  It returns
// {allowed, remaining, retry_after_ms}.
var limiterScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])

    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    if interval_ms > 0 and refill_tokens > 0 then
        local elapsed = math.max(0, now_ms - last_refill)
        local intervals = math.floor(elapsed / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + (intervals * refill_tokens))
            last_refill = last_refill + (intervals * interval_ms)
        end
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        local until_next = interval_ms - (now_ms - last_refill)
        if until_next < 0 then until_next = 0 end
        retry_after_ms = until_next
    end

    redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill, 'capacity', capacity)
    redis.call('EXPIRE', key, ttl_seconds)

    return { allowed, tokens, retry_after_ms }
`)

// decision is the outcome of one bucket check.
type decision struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

// NewTokenBucket limits requests per key.  With a Redis client the bucket
// is shared across instances; without one each process keeps its own
// buckets with x/time/rate.  Redis errors let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    var check func(c echo.Context, key string) (decision, error)
    if rdb != nil {
        check = redisCheck(cfg, rdb)
    } else {
        check = newLocalBuckets(cfg).check
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            d, err := check(c, key)
            if err != nil {
                if cfg.Debug {
                    c.Logger().Warnf("[ratelimit] redis error for key=%s: %v", key, err)
                }
                return next(c)
            }

            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))

            if !d.allowed {
                secs := int(math.Ceil(d.retry.Seconds()))
                if secs < 0 {
                    secs = 0
                }
                c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
                if cfg.Debug {
                    c.Logger().Infof("[ratelimit] block key=%s retry=%s", key, d.retry)
                }
                return c.JSON(http.StatusTooManyRequests, map[string]any{
                    "error":       "too_many_requests",
                    "message":     "rate limit exceeded",
                    "retry_after": secs,
                })
            }
            if cfg.Debug {
                c.Response().Header().Set("X-RateLimit-Key", key)
            }
            return next(c)
        }
    }
}

func redisCheck(cfg config.RateLimitConfig, rdb *redis.Client) func(echo.Context, string) (decision, error) {
    return func(c echo.Context, key string) (decision, error) {
        args := []any{
            time.Now().UnixMilli(),
            cfg.Capacity,
            cfg.RefillTokens,
            cfg.RefillInterval.Milliseconds(),
            int64(cfg.TTL / time.Second),
        }
        vals, err := limiterScript.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
        if err != nil {
            return decision{}, err
        }
        arr, ok := vals.([]any)
        if !ok || len(arr) != 3 {
            return decision{}, fmt.Errorf("unexpected script result %#v", vals)
        }
        return decision{
            allowed:   asInt64(arr[0]) == 1,
            remaining: asInt64(arr[1]),
            retry:     time.Duration(asInt64(arr[2])) * time.Millisecond,
        }, nil
    }
}

// localBuckets is the in-process fallback.  Idle buckets are swept once
// they have been unused for the configured TTL.
type localBuckets struct {
    cfg       config.RateLimitConfig
    mu        sync.Mutex
    buckets   map[string]*localBucket
    lastSweep time.Time
}

type localBucket struct {
    lim      *rate.Limiter
    lastSeen time.Time
}

func newLocalBuckets(cfg config.RateLimitConfig) *localBuckets {
    return &localBuckets{cfg: cfg, buckets: map[string]*localBucket{}, lastSweep: time.Now()}
}

func (l *localBuckets) check(_ echo.Context, key string) (decision, error) {
    now := time.Now()
    l.mu.Lock()
    defer l.mu.Unlock()

    if now.Sub(l.lastSweep) > l.cfg.TTL {
        for k, b := range l.buckets {
            if now.Sub(b.lastSeen) > l.cfg.TTL {
                delete(l.buckets, k)
            }
        }
        l.lastSweep = now
    }

    b, ok := l.buckets[key]
    if !ok {
        b = &localBucket{lim: rate.NewLimiter(rate.Limit(l.cfg.RefillPerSecond()), l.cfg.Capacity)}
        l.buckets[key] = b
    }
    b.lastSeen = now

    r := b.lim.ReserveN(now, 1)
    if delay := r.DelayFrom(now); delay > 0 {
        r.CancelAt(now)
        return decision{allowed: false, retry: delay}, nil
    }
    return decision{allowed: true, remaining: int64(b.lim.TokensAt(now))}, nil
}

func asInt64(v any) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int32:
        return int64(t)
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil {
            return n
        }
    }
    return 0
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    uid := identityKey(c)
    route := c.Request().Method + " " + c.Path()

    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "user":
        parts = append(parts, "user", uid)
    case "route":
        parts = append(parts, "route", route)
    case "ip_user":
        parts = append(parts, "ip", ip, "user", uid)
    case "ip_route":
        parts = append(parts, "ip", ip, "route", route)
    case "user_route":
        parts = append(parts, "user", uid, "route", route)
    default:
        parts = append(parts, "ip", ip, "user", uid, "route", route)
    }
    return strings.Join(parts, ":")
}
