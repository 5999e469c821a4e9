package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/lab-seat-scheduler/internal/service"
)

// ListQueue handles GET /v1/labs/:id/queue.  By default only the live
// waitlist is returned; ?history=true includes every entry.
func (h *Handler) ListQueue(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    history := false
    if raw := c.QueryParam("history"); raw != "" {
        if history, err = strconv.ParseBool(raw); err != nil {
            return c.JSON(http.StatusBadRequest, errorBody{Error: "history must be a boolean", Kind: "validation"})
        }
    }
    entries, err := h.Engine.ListQueue(c.Request().Context(), id, history)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, entries)
}

// AddToQueue handles POST /v1/labs/:id/queue.
func (h *Handler) AddToQueue(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    var body service.NewQueueEntry
    if err := c.Bind(&body); err != nil {
        return badBody(c)
    }
    body.LabID = id
    q, err := h.Engine.AddToQueue(c.Request().Context(), body)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusCreated, q)
}

// RemoveFromQueue handles DELETE /v1/queue/:id; the entry is cancelled, not erased.
func (h *Handler) RemoveFromQueue(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    if err := h.Engine.RemoveFromQueue(c.Request().Context(), id); err != nil {
        return h.fail(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// SetQueueStatus handles PATCH /v1/queue/:id with {"status": "assigned"}.
func (h *Handler) SetQueueStatus(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    var body struct {
        Status string `json:"status"`
    }
    if err := c.Bind(&body); err != nil {
        return badBody(c)
    }
    q, err := h.Engine.SetQueueStatus(c.Request().Context(), id, body.Status)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, q)
}
