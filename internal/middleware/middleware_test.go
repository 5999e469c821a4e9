package middleware

import (
    "net/http"
    "net/http/httptest"
    "sync/atomic"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/lab-seat-scheduler/internal/config"
    "github.com/iliyamo/lab-seat-scheduler/internal/utils"
)

const secret = "test-secret"

func bearer(t *testing.T, role string) string {
    t.Helper()
    tok, err := utils.NewOperatorToken(secret, "op-1", role, time.Hour)
    require.NoError(t, err)
    return "Bearer " + tok.Token
}

func serve(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(method, path, nil)
    if auth != "" {
        req.Header.Set("Authorization", auth)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func authEcho() *echo.Echo {
    e := echo.New()
    g := e.Group("/v1", JWTAuth(secret), RequireRole(RoleOperator, RoleAdmin))
    g.GET("/whoami", func(c echo.Context) error { return c.String(http.StatusOK, OperatorID(c)) })
    g.DELETE("/rows/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, RequireRole(RoleAdmin))
    return e
}

func TestJWTAuth(t *testing.T) {
    e := authEcho()

    assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/v1/whoami", "").Code)
    assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/v1/whoami", "Bearer nope").Code)

    rec := serve(e, http.MethodGet, "/v1/whoami", bearer(t, "operator"))
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "op-1", rec.Body.String())

    other, err := utils.NewOperatorToken("another-secret", "op-1", RoleOperator, time.Hour)
    require.NoError(t, err)
    assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/v1/whoami", "Bearer "+other.Token).Code)

    expired, err := utils.NewOperatorToken(secret, "op-1", RoleOperator, -time.Minute)
    require.NoError(t, err)
    assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/v1/whoami", "Bearer "+expired.Token).Code)
}

func TestJWTAuthRejectsOtherAlgorithms(t *testing.T) {
    e := authEcho()
    tok := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "op-1", "role": RoleAdmin, "exp": time.Now().Add(time.Hour).Unix()})
    raw, err := tok.SignedString([]byte(secret))
    require.NoError(t, err)
    assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/v1/whoami", "Bearer "+raw).Code)
}

func TestRequireRole(t *testing.T) {
    e := authEcho()
    assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/v1/whoami", bearer(t, "STUDENT")).Code)
    assert.Equal(t, http.StatusForbidden, serve(e, http.MethodDelete, "/v1/rows/1", bearer(t, RoleOperator)).Code)
    assert.Equal(t, http.StatusNoContent, serve(e, http.MethodDelete, "/v1/rows/1", bearer(t, RoleAdmin)).Code)
}

func limited(cfg config.RateLimitConfig, rdb *redis.Client) *echo.Echo {
    e := echo.New()
    e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") }, NewTokenBucket(cfg, rdb))
    return e
}

func rlConfig() config.RateLimitConfig {
    return config.RateLimitConfig{
        Enabled:        true,
        Capacity:       2,
        RefillTokens:   1,
        RefillInterval: time.Hour,
        TTL:            5 * time.Hour,
        KeyStrategy:    "ip",
        Prefix:         "rl",
    }
}

func TestTokenBucketRedis(t *testing.T) {
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { rdb.Close() })
    e := limited(rlConfig(), rdb)

    assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/ping", "").Code)
    rec := serve(e, http.MethodGet, "/ping", "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

    rec = serve(e, http.MethodGet, "/ping", "")
    assert.Equal(t, http.StatusTooManyRequests, rec.Code)
    assert.NotEmpty(t, rec.Header().Get("Retry-After"))
    assert.True(t, mr.Exists("rl:ip:192.0.2.1"))
}

func TestTokenBucketRedisFailureLetsRequestsThrough(t *testing.T) {
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
    t.Cleanup(func() { rdb.Close() })
    mr.Close()

    e := limited(rlConfig(), rdb)
    for i := 0; i < 4; i++ {
        assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/ping", "").Code)
    }
}

func TestTokenBucketLocalFallback(t *testing.T) {
    e := limited(rlConfig(), nil)
    assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/ping", "").Code)
    assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/ping", "").Code)
    rec := serve(e, http.MethodGet, "/ping", "")
    assert.Equal(t, http.StatusTooManyRequests, rec.Code)

    cfg := rlConfig()
    cfg.Enabled = false
    e = limited(cfg, nil)
    for i := 0; i < 4; i++ {
        assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/ping", "").Code)
    }
}

func TestRedisCache(t *testing.T) {
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { rdb.Close() })

    cfg := config.CacheConfig{
        Enabled:     true,
        Methods:     map[string]bool{http.MethodGet: true},
        Routes:      map[string]bool{"/v1/labs/:id": true},
        TTL:         time.Minute,
        KeyStrategy: "route_query",
        Prefix:      "cache",
    }
    var calls int32
    e := echo.New()
    e.Use(NewRedisCache(cfg, rdb))
    e.GET("/v1/labs/:id", func(c echo.Context) error {
        atomic.AddInt32(&calls, 1)
        return c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
    })
    e.GET("/v1/labs/:id/grid", func(c echo.Context) error {
        atomic.AddInt32(&calls, 1)
        return c.JSON(http.StatusOK, map[string]string{"grid": "live"})
    })

    first := serve(e, http.MethodGet, "/v1/labs/1", "")
    require.Equal(t, http.StatusOK, first.Code)
    assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

    second := serve(e, http.MethodGet, "/v1/labs/1", "")
    require.Equal(t, http.StatusOK, second.Code)
    assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
    assert.Equal(t, first.Body.String(), second.Body.String())
    assert.Contains(t, second.Header().Get(echo.HeaderContentType), "application/json")
    assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

    serve(e, http.MethodGet, "/v1/labs/2", "")
    serve(e, http.MethodGet, "/v1/labs/1/grid", "")
    serve(e, http.MethodGet, "/v1/labs/1/grid", "")
    assert.EqualValues(t, 4, atomic.LoadInt32(&calls))

    mr.FastForward(2 * time.Minute)
    assert.Equal(t, "MISS", serve(e, http.MethodGet, "/v1/labs/1", "").Header().Get("X-Cache"))
}
