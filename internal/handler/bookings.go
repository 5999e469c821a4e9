package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/lab-seat-scheduler/internal/model"
    "github.com/iliyamo/lab-seat-scheduler/internal/service"
)

// ListBookings handles GET /v1/labs/:id/bookings?date=YYYY-MM-DD (default today).
func (h *Handler) ListBookings(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    books, err := h.Engine.ListBookings(c.Request().Context(), id, c.QueryParam("date"))
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, books)
}

// CreateBooking handles POST /v1/bookings.
func (h *Handler) CreateBooking(c echo.Context) error {
    var body service.NewBooking
    if err := c.Bind(&body); err != nil {
        return badBody(c)
    }
    b, err := h.Engine.CreateBooking(c.Request().Context(), body)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusCreated, b)
}

// UpdateBooking handles PATCH /v1/bookings/:id.
func (h *Handler) UpdateBooking(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    var patch model.BookingPatch
    if err := c.Bind(&patch); err != nil {
        return badBody(c)
    }
    b, err := h.Engine.UpdateBooking(c.Request().Context(), id, patch)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, b)
}

// DeleteBooking handles DELETE /v1/bookings/:id.
func (h *Handler) DeleteBooking(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    if err := h.Engine.DeleteBooking(c.Request().Context(), id); err != nil {
        return h.fail(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
