package handler // handler translates HTTP requests into engine operations

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/lab-seat-scheduler/internal/apperr"
    "github.com/iliyamo/lab-seat-scheduler/internal/middleware"
    "github.com/iliyamo/lab-seat-scheduler/internal/service"
)

// Handler serves the /v1 lab API on top of a service.Engine.
type Handler struct {
    Engine *service.Engine
    Log    zerolog.Logger
}

// NewHandler constructs a Handler and panics if the engine is nil.
func NewHandler(engine *service.Engine, log zerolog.Logger) *Handler {
    if engine == nil {
        panic("nil engine passed to NewHandler")
    }
    return &Handler{Engine: engine, Log: log.With().Str("component", "http").Logger()}
}

// pathID parses a positive numeric path parameter.  Errors are attributed
// to the matched route.
func pathID(c echo.Context, name string) (uint64, error) {
    n, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || n == 0 {
        return 0, apperr.Validation(routeOp(c), name, "invalid %s %q", name, c.Param(name))
    }
    return n, nil
}

// routeOp names the request by method and route pattern, e.g.
// "GET /v1/labs/:id".
func routeOp(c echo.Context) string {
    route := c.Path()
    if route == "" {
        route = c.Request().URL.Path
    }
    return c.Request().Method + " " + route
}

// statusOf maps an error kind to the HTTP status.
func statusOf(err error) int {
    switch apperr.KindOf(err) {
    case apperr.KindValidation:
        return http.StatusBadRequest
    case apperr.KindConflict:
        return http.StatusConflict
    case apperr.KindNotFound:
        return http.StatusNotFound
    case apperr.KindDependency:
        return http.StatusServiceUnavailable
    }
    return http.StatusInternalServerError
}

type errorBody struct {
    Error string `json:"error"`
    Kind  string `json:"kind,omitempty"`
}

func errorOf(err error) errorBody {
    b := errorBody{Error: err.Error()}
    if k := apperr.KindOf(err); k != 0 {
        b.Kind = k.String()
    }
    return b
}

// fail writes err as a JSON error response.  Server-side failures are logged;
// client errors are not.
func (h *Handler) fail(c echo.Context, err error) error {
    status := statusOf(err)
    if status >= http.StatusInternalServerError {
        h.Log.Error().Err(err).
            Str("operator", middleware.OperatorID(c)).
            Str("method", c.Request().Method).
            Str("route", c.Path()).
            Int("status", status).
            Msg("request failed")
    }
    return c.JSON(status, errorOf(err))
}

func badBody(c echo.Context) error {
    return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body", Kind: apperr.KindValidation.String()})
}
