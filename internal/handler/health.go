package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Health is the liveness endpoint for load balancers.  It also reports the
// lab clock so operators can spot a misconfigured LAB_TIMEZONE.
func (h *Handler) Health(c echo.Context) error {
    now := h.Engine.Now()
    return c.JSON(http.StatusOK, map[string]string{
        "status":   "ok",
        "lab_time": now.Format(time.RFC3339),
        "today":    h.Engine.Today(),
    })
}
