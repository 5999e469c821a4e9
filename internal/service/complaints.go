package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
	"github.com/iliyamo/lab-seat-scheduler/internal/queue"
)

// NewComplaint is the input of RaiseComplaint.
type NewComplaint struct {
	WorkstationID uint64 `json:"workstation_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Priority      string `json:"priority"`
}

// RaiseComplaint forwards a complaint about a workstation to the ticketing
// system.  The engine keeps no copy; if the hand-off fails the caller gets
// a Dependency error and nothing was raised.
func (e *Engine) RaiseComplaint(ctx context.Context, in NewComplaint) (*model.Complaint, error) {
	const op = "raiseComplaint"
	if _, err := e.store.GetWorkstation(ctx, in.WorkstationID); err != nil {
		return nil, e.done(op, err)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, e.done(op, apperr.Validation(op, "complaint", "title is required"))
	}
	prio := strings.ToLower(strings.TrimSpace(in.Priority))
	switch prio {
	case "":
		prio = model.PriorityMedium
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
	default:
		return nil, e.done(op, apperr.Validation(op, "complaint", "invalid priority %q", in.Priority))
	}
	c := &model.Complaint{
		ID:            uuid.NewString(),
		WorkstationID: in.WorkstationID,
		Title:         title,
		Description:   strings.TrimSpace(in.Description),
		Priority:      prio,
		RaisedAt:      e.now().UTC(),
	}
	env, err := queue.NewEnvelope(queue.ComplaintRaised, c.RaisedAt, c)
	if err != nil {
		return nil, e.done(op, apperr.Dependency(op, "complaint", err))
	}
	if err := e.complaints.Publish(ctx, queue.ComplaintsQueue, env); err != nil {
		return nil, e.done(op, apperr.Dependency(op, "complaint", err))
	}
	e.log.Debug().Str("complaint_id", c.ID).Uint64("workstation_id", c.WorkstationID).Msg("complaint forwarded")
	return c, e.done(op, nil)
}
