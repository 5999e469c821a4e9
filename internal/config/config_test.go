package config

import (
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestLoadReportsAllMissing(t *testing.T) {
    t.Setenv("STORE_DRIVER", "mysql")
    t.Setenv("JWT_SECRET", "")
    t.Setenv("DB_USER", "")
    t.Setenv("DB_HOST", "")
    t.Setenv("DB_NAME", "")

    _, err := Load()
    require.Error(t, err)
    for _, k := range []string{"JWT_SECRET", "DB_USER", "DB_HOST", "DB_NAME"} {
        assert.Contains(t, err.Error(), k)
    }
}

func TestLoadSQLite(t *testing.T) {
    t.Setenv("STORE_DRIVER", "SQLite")
    t.Setenv("JWT_SECRET", "s3cret")
    t.Setenv("SQLITE_PATH", ":memory:")
    t.Setenv("LAB_TIMEZONE", "UTC")
    t.Setenv("EVENTS_ENABLED", "yes")
    t.Setenv("RABBITMQ_URL", "")
    t.Setenv("AMQP_URL", "amqp://lab:lab@mq:5672/")

    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, DriverSQLite, cfg.StoreDriver)
    assert.Equal(t, ":memory:", cfg.SQLitePath)
    assert.Equal(t, time.UTC, cfg.Location)
    assert.True(t, cfg.EventsEnabled)
    assert.Equal(t, "amqp://lab:lab@mq:5672/", cfg.AMQPURL)
}

func TestLoadRejectsBadDriverAndZone(t *testing.T) {
    t.Setenv("JWT_SECRET", "s3cret")
    t.Setenv("STORE_DRIVER", "postgres")
    _, err := Load()
    assert.Error(t, err)

    t.Setenv("STORE_DRIVER", "memory")
    t.Setenv("LAB_TIMEZONE", "Mars/Olympus")
    _, err = Load()
    assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
    dir := t.TempDir()
    p := filepath.Join(dir, "test.env")
    require.NoError(t, os.WriteFile(p, []byte("LABSEAT_DOTENV_PROBE=loaded\n"), 0o600))
    t.Cleanup(func() { os.Unsetenv("LABSEAT_DOTENV_PROBE") })

    require.NoError(t, LoadDotEnv(filepath.Join(dir, "absent.env"), p))
    assert.Equal(t, "loaded", os.Getenv("LABSEAT_DOTENV_PROBE"))
}

func TestRateLimitDefaultsAreClamped(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    cfg := LoadRateLimitConfig()
    assert.Equal(t, 1, cfg.Capacity)
    assert.Equal(t, 5*time.Minute, cfg.TTL)
}

func TestCacheConfigRoutes(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")
    cfg := LoadCacheConfig()
    assert.True(t, cfg.Methods["GET"])
    assert.True(t, cfg.Methods["HEAD"])
    assert.True(t, cfg.Routes["/v1/labs/:id"])
    assert.False(t, cfg.Routes["/v1/labs/:id/grid"])
}

func TestNewRedisClient(t *testing.T) {
    mr := miniredis.RunT(t)

    rdb := NewRedisClient(RedisConfig{Enabled: true, Addr: mr.Addr()})
    require.NotNil(t, rdb)
    t.Cleanup(func() { rdb.Close() })

    assert.Nil(t, NewRedisClient(RedisConfig{Enabled: false, Addr: mr.Addr()}))
    addr := mr.Addr()
    mr.Close()
    assert.Nil(t, NewRedisClient(RedisConfig{Enabled: true, Addr: addr}))
}
