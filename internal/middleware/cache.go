package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/store-rating/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit <= 0 {
        cw.buf.Write(b)
    } else if remain := cw.limit - cw.size; remain > 0 {
        if int64(len(b)) <= remain {
            cw.buf.Write(b)
        } else {
            cw.buf.Write(b[:remain])
        }
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// cacheKeyFrom builds "<prefix>:<sha1>" so every entry shares the prefix
// InvalidateCache scans for.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    route := c.Path()
    query := r.URL.RawQuery

    var parts []string
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        parts = []string{"route", route}
    case "user_route_query":
        parts = []string{"user", identityKey(c), "route", route, "q", query}
    default: // "route_query"
        parts = []string{"route", route, "q", query}
    }

    sum := sha1.Sum([]byte(strings.Join(parts, ":")))
    return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:8+len(hdrJSON)], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    hdr := make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, hdr, bs[8+hlen:], true
}

// NewRedisCache caches successful responses of the wrapped routes in Redis,
// headers included, so a hit is byte-identical to the original response.
// It is a pass-through when caching is disabled or rdb is nil.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }

            ctx := c.Request().Context()
            key := cacheKeyFrom(cfg, c)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        // Echo recomputes Content-Length; X-Request-ID belongs to this request
                        if strings.EqualFold(k, "Content-Length") || strings.EqualFold(k, echo.HeaderXRequestID) {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    if len(body) > 0 {
                        _, _ = c.Response().Write(body)
                    }
                    return nil
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            // only complete 200 bodies are stored
            if cw.status == http.StatusOK && (maxBody <= 0 || cw.size <= maxBody) {
                hdr := c.Response().Header().Clone()
                hdr.Del("X-Cache")
                if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
                    _ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
                }
            }
            return nil
        }
    }
}

// InvalidateCache deletes every cached response under prefix.  SCAN is
// used instead of KEYS so a large keyspace never blocks Redis.  A nil
// client is a no-op.
func InvalidateCache(ctx context.Context, rdb *redis.Client, prefix string) error {
    if rdb == nil {
        return nil
    }
    iter := rdb.Scan(ctx, 0, prefix+":*", 200).Iterator()
    var batch []string
    for iter.Next(ctx) {
        batch = append(batch, iter.Val())
        if len(batch) == 200 {
            if err := rdb.Del(ctx, batch...).Err(); err != nil {
                return err
            }
            batch = batch[:0]
        }
    }
    if err := iter.Err(); err != nil {
        return err
    }
    if len(batch) > 0 {
        return rdb.Del(ctx, batch...).Err()
    }
    return nil
}
