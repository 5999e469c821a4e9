package router // package router registers the HTTP routes of the lab API

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "github.com/redis/go-redis/v9"
    "github.com/rs/zerolog"

    "github.com/iliyamo/lab-seat-scheduler/internal/config"
    "github.com/iliyamo/lab-seat-scheduler/internal/handler"
    "github.com/iliyamo/lab-seat-scheduler/internal/middleware"
)

// Options carries what the route groups need besides the handler.
type Options struct {
    JWTSecret string
    Redis     *redis.Client // nil disables the cache and localizes rate limits
    Cache     config.CacheConfig
    RateLimit config.RateLimitConfig
    Gatherer  prometheus.Gatherer // nil means the default registry
    Log       zerolog.Logger
}

// New builds an echo instance with every route registered.
func New(h *handler.Handler, opt Options) *echo.Echo {
    e := echo.New()
    e.HideBanner = true
    e.HidePort = true
    e.Use(echomw.Recover())
    e.Use(requestLog(opt.Log))
    RegisterRoutes(e, h, opt)
    return e
}

// RegisterRoutes registers the public probes and the authenticated /v1 API.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, opt Options) {
    gatherer := opt.Gatherer
    if gatherer == nil {
        gatherer = prometheus.DefaultGatherer
    }
    e.GET("/healthz", h.Health)
    e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

    // Any operator may read and write; group middlewares run after JWTAuth so
    // the rate limiter can key on the operator.
    g := e.Group(
        "/v1",
        middleware.JWTAuth(opt.JWTSecret),
        middleware.RequireRole(middleware.RoleOperator, middleware.RoleAdmin),
        middleware.NewTokenBucket(opt.RateLimit, opt.Redis),
        middleware.NewRedisCache(opt.Cache, opt.Redis),
    )
    adminOnly := middleware.RequireRole(middleware.RoleAdmin)

    // ---- Labs & rows ----
    g.GET("/labs", h.ListLabs)
    g.GET("/labs/:id", h.GetLab)
    g.GET("/labs/:id/rows", h.ListRows)
    g.POST("/labs/:id/rows", h.AddRow)
    g.PATCH("/rows/:id", h.UpdateRow)
    g.DELETE("/rows/:id", h.DeleteRow, adminOnly)
    g.GET("/labs/:id/grid", h.GetGrid)
    g.POST("/rows/:id/empty-slots", h.AddEmptySlot)
    g.DELETE("/empty-slots/:id", h.RemoveEmptySlot)

    // ---- Workstations ----
    g.POST("/workstations", h.CreateWorkstation)
    g.GET("/workstations/:id", h.GetWorkstation)
    g.PATCH("/workstations/:id", h.UpdateWorkstation)
    g.DELETE("/workstations/:id", h.DeleteWorkstation)
    g.POST("/workstations/:id/move", h.MoveWorkstation)
    g.GET("/workstations/:id/status", h.WorkstationStatus)
    g.POST("/workstations/:id/complaints", h.RaiseComplaint)

    // ---- Schedule ----
    g.GET("/workstations/:id/slots", h.SlotBoard)
    g.PUT("/workstations/:id/slots", h.BatchSlots)
    g.GET("/labs/:id/bookings", h.ListBookings)
    g.POST("/bookings", h.CreateBooking)
    g.PATCH("/bookings/:id", h.UpdateBooking)
    g.DELETE("/bookings/:id", h.DeleteBooking)

    // ---- Waitlist ----
    g.GET("/labs/:id/queue", h.ListQueue)
    g.POST("/labs/:id/queue", h.AddToQueue)
    g.DELETE("/queue/:id", h.RemoveFromQueue)
    g.PATCH("/queue/:id", h.SetQueueStatus)
}

// requestLog writes one zerolog line per request.
func requestLog(log zerolog.Logger) echo.MiddlewareFunc {
    log = log.With().Str("component", "http").Logger()
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:   true,
        LogURI:      true,
        LogStatus:   true,
        LogLatency:  true,
        LogRemoteIP: true,
        LogError:    true,
        HandleError: true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            ev := log.Info()
            if v.Status >= http.StatusInternalServerError || v.Error != nil {
                ev = log.Warn().Err(v.Error)
            }
            ev.Str("method", v.Method).
                Str("uri", v.URI).
                Int("status", v.Status).
                Dur("latency", v.Latency.Round(time.Microsecond)).
                Str("remote_ip", v.RemoteIP).
                Str("operator", middleware.OperatorID(c)).
                Msg("request")
            return nil
        },
    })
}
