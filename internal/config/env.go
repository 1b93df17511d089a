package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// Small typed readers shared by the cache, rate limit and redis loaders.
// Unset or unparsable values fall back to the supplied default.

func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

func envBool(k string, d bool) bool {
    switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if dur, err := time.ParseDuration(v); err == nil {
        return dur
    }
    return d
}

func envList(k, d string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(envStr(k, d), ",") {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}
