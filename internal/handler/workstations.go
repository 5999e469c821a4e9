package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/lab-seat-scheduler/internal/model"
    "github.com/iliyamo/lab-seat-scheduler/internal/service"
)

// CreateWorkstation handles POST /v1/workstations.  The target row is given
// either by row_id or by lab_id plus row name.
func (h *Handler) CreateWorkstation(c echo.Context) error {
    var body service.NewWorkstation
    if err := c.Bind(&body); err != nil {
        return badBody(c)
    }
    ws, err := h.Engine.AddWorkstation(c.Request().Context(), body)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusCreated, ws)
}

// GetWorkstation handles GET /v1/workstations/:id.
func (h *Handler) GetWorkstation(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    ws, err := h.Engine.GetWorkstation(c.Request().Context(), id)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, ws)
}

// UpdateWorkstation handles PATCH /v1/workstations/:id.  Coordinates are
// changed through the move endpoint, not here.
func (h *Handler) UpdateWorkstation(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    var patch model.WorkstationPatch
    if err := c.Bind(&patch); err != nil {
        return badBody(c)
    }
    ws, err := h.Engine.UpdateWorkstation(c.Request().Context(), id, patch)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, ws)
}

// DeleteWorkstation handles DELETE /v1/workstations/:id.
func (h *Handler) DeleteWorkstation(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    if err := h.Engine.DeleteWorkstation(c.Request().Context(), id); err != nil {
        return h.fail(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// MoveWorkstation handles POST /v1/workstations/:id/move with
// {"row": "B", "position": 3}.  An occupied target turns the move into a swap.
func (h *Handler) MoveWorkstation(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    var body struct {
        Row      string `json:"row"`
        Position *int   `json:"position"`
    }
    if err := c.Bind(&body); err != nil || body.Position == nil {
        return badBody(c)
    }
    res, err := h.Engine.MoveWorkstation(c.Request().Context(), id, body.Row, *body.Position)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// WorkstationStatus handles GET /v1/workstations/:id/status.
func (h *Handler) WorkstationStatus(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    v, err := h.Engine.EffectiveStatus(c.Request().Context(), id)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, v)
}

// SlotBoard handles GET /v1/workstations/:id/slots?date=YYYY-MM-DD.
func (h *Handler) SlotBoard(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    board, err := h.Engine.SlotBoard(c.Request().Context(), id, c.QueryParam("date"))
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, board)
}

// slotOutcome is one entry of the batch response.
type slotOutcome struct {
    service.SlotResult
    OK    bool   `json:"ok"`
    Error string `json:"error,omitempty"`
    Kind  string `json:"kind,omitempty"`
}

// BatchSlots handles PUT /v1/workstations/:id/slots?date=: a body of
// {"slots": [...]} with up to five instructions.  The response is 200 when
// every slot applied and 207 when only some did; each slot reports its own
// outcome either way.
func (h *Handler) BatchSlots(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    var body struct {
        Date  string                    `json:"date"`
        Slots []service.SlotInstruction `json:"slots"`
    }
    if err := c.Bind(&body); err != nil {
        return badBody(c)
    }
    date := c.QueryParam("date")
    if date == "" {
        date = body.Date
    }
    res, err := h.Engine.BatchUpdateSlots(c.Request().Context(), id, date, body.Slots)
    if err != nil {
        return h.fail(c, err)
    }

    out := make([]slotOutcome, len(res.Slots))
    failed := 0
    for i, s := range res.Slots {
        out[i] = slotOutcome{SlotResult: s, OK: s.OK()}
        if s.Err != nil {
            failed++
            eb := errorOf(s.Err)
            out[i].Error, out[i].Kind = eb.Error, eb.Kind
        }
    }
    status := http.StatusOK
    if failed > 0 {
        status = http.StatusMultiStatus
    }
    return c.JSON(status, echo.Map{
        "workstation_id": res.WorkstationID,
        "date":           res.Date,
        "failed":         failed,
        "slots":          out,
    })
}

// RaiseComplaint handles POST /v1/workstations/:id/complaints.  The complaint
// is forwarded to the ticketing queue; nothing is stored here.
func (h *Handler) RaiseComplaint(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return h.fail(c, err)
    }
    var body service.NewComplaint
    if err := c.Bind(&body); err != nil {
        return badBody(c)
    }
    body.WorkstationID = id
    cmp, err := h.Engine.RaiseComplaint(c.Request().Context(), body)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusAccepted, cmp)
}
