package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// ListLabs handles GET /v1/labs.
func (h *Handler) ListLabs(c echo.Context) error {
    labs, err := h.Engine.ListLabs(c.Request().Context())
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, labs)
}

// GetLab handles GET /v1/labs/:id.
func (h *Handler) GetLab(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    lab, err := h.Engine.GetLab(c.Request().Context(), id)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, lab)
}

// GetGrid handles GET /v1/labs/:id/grid: every row with its cells and the
// effective status of each workstation at request time.
func (h *Handler) GetGrid(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    grid, err := h.Engine.GetGrid(c.Request().Context(), id)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, grid)
}

// ListRows handles GET /v1/labs/:id/rows.
func (h *Handler) ListRows(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    rows, err := h.Engine.ListRows(c.Request().Context(), id)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, rows)
}

type rowBody struct {
    Name string `json:"name"` // empty on create means "next free name"
}

// AddRow handles POST /v1/labs/:id/rows.
func (h *Handler) AddRow(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    var body rowBody
    if err := c.Bind(&body); err != nil {
        return badBody(c)
    }
    row, err := h.Engine.AddRow(c.Request().Context(), id, body.Name)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusCreated, row)
}

// UpdateRow handles PATCH /v1/rows/:id (rename).
func (h *Handler) UpdateRow(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    var body rowBody
    if err := c.Bind(&body); err != nil {
        return badBody(c)
    }
    row, err := h.Engine.UpdateRow(c.Request().Context(), id, body.Name)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, row)
}

// DeleteRow handles DELETE /v1/rows/:id.  The row's workstations, their
// bookings and its placeholders go with it.
func (h *Handler) DeleteRow(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    if err := h.Engine.DeleteRow(c.Request().Context(), id); err != nil {
        return h.fail(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// AddEmptySlot handles POST /v1/rows/:id/empty-slots.
func (h *Handler) AddEmptySlot(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    var body struct {
        Position *int `json:"position"`
    }
    if err := c.Bind(&body); err != nil || body.Position == nil {
        return badBody(c)
    }
    slot, err := h.Engine.AddEmptySlot(c.Request().Context(), id, *body.Position)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusCreated, slot)
}

// RemoveEmptySlot handles DELETE /v1/empty-slots/:id.
func (h *Handler) RemoveEmptySlot(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    if err := h.Engine.RemoveEmptySlot(c.Request().Context(), id); err != nil {
        return h.fail(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
