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

    "github.com/iliyamo/lab-seat-scheduler/internal/config"
)

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

    local elapsed = math.max(0, now_ms - last_refill)
    local intervals = math.floor(elapsed / interval_ms)
    if intervals > 0 then
        tokens = math.min(capacity, tokens + (intervals * refill_tokens))
        last_refill = last_refill + (intervals * interval_ms)
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
    end

    redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)
    return { allowed, tokens, retry_after_ms }
`)

// decision is one token bucket verdict.
type decision struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

type bucket interface {
    take(c echo.Context, key string) (decision, error)
}

// redisBucket shares buckets between every instance behind the balancer.
type redisBucket struct {
    cfg config.RateLimitConfig
    rdb *redis.Client
}

func (b redisBucket) take(c echo.Context, key string) (decision, error) {
    vals, err := limiterScript.Run(c.Request().Context(), b.rdb, []string{key},
        time.Now().UnixMilli(),
        b.cfg.Capacity,
        b.cfg.RefillTokens,
        b.cfg.RefillInterval.Milliseconds(),
        int64(b.cfg.TTL/time.Second),
    ).Result()
    if err != nil {
        return decision{}, err
    }
    arr, ok := vals.([]interface{})
    if !ok || len(arr) != 3 {
        return decision{}, fmt.Errorf("ratelimit: unexpected script result %#v", vals)
    }
    return decision{
        allowed:   asInt64(arr[0]) == 1,
        remaining: asInt64(arr[1]),
        retry:     time.Duration(asInt64(arr[2])) * time.Millisecond,
    }, nil
}

// localBucket keeps per-key limiters in process; idle keys are swept after TTL.
type localBucket struct {
    cfg  config.RateLimitConfig
    mu   sync.Mutex
    keys map[string]*localEntry
    last time.Time
}

type localEntry struct {
    lim  *rate.Limiter
    seen time.Time
}

func newLocalBucket(cfg config.RateLimitConfig) *localBucket {
    return &localBucket{cfg: cfg, keys: map[string]*localEntry{}, last: time.Now()}
}

func (b *localBucket) take(_ echo.Context, key string) (decision, error) {
    now := time.Now()
    b.mu.Lock()
    defer b.mu.Unlock()

    if now.Sub(b.last) > b.cfg.TTL {
        for k, e := range b.keys {
            if now.Sub(e.seen) > b.cfg.TTL {
                delete(b.keys, k)
            }
        }
        b.last = now
    }
    e, ok := b.keys[key]
    if !ok {
        every := b.cfg.RefillInterval / time.Duration(b.cfg.RefillTokens)
        e = &localEntry{lim: rate.NewLimiter(rate.Every(every), b.cfg.Capacity)}
        b.keys[key] = e
    }
    e.seen = now

    r := e.lim.ReserveN(now, 1)
    if delay := r.DelayFrom(now); delay > 0 {
        r.CancelAt(now)
        return decision{retry: delay}, nil
    }
    return decision{allowed: true, remaining: int64(e.lim.TokensAt(now))}, nil
}

// NewTokenBucket limits requests per key (see RATE_LIMIT_KEY_STRATEGY).  With a
// Redis client the limit is global; without one it is enforced per process.
// Redis errors let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    var b bucket = newLocalBucket(cfg)
    if rdb != nil {
        b = redisBucket{cfg: cfg, rdb: rdb}
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            d, err := b.take(c, key)
            if err != nil {
                if cfg.Debug {
                    c.Logger().Warnf("[ratelimit] key=%s: %v", key, err)
                }
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if !d.allowed {
                secs := int(math.Ceil(d.retry.Seconds()))
                h.Set("Retry-After", strconv.Itoa(secs))
                return c.JSON(http.StatusTooManyRequests, map[string]any{
                    "error":       "too_many_requests",
                    "message":     "rate limit exceeded",
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64: return t
    case int: return int64(t)
    case float64: return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil { return n }
    }
    return 0
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" { ip = "unknown" }
    uid := OperatorID(c)
    route := c.Request().Method + " " + c.Path()

    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "user":
        parts = append(parts, "user", uid)
    case "ip_user":
        parts = append(parts, "ip", ip, "user", uid)
    case "user_route":
        parts = append(parts, "user", uid, "route", route)
    default:
        parts = append(parts, "ip", ip, "user", uid, "route", route)
    }
    return strings.Join(parts, ":")
}
