// Package service implements the scheduling engine: the row registry and
// placeholders, the workstation registry, the arrangement engine, the
// schedule book, the waitlist and the complaint pass-through.
//
// The engine is stateless between calls.  All shared state lives in the
// repository.Store it is given; concurrent operators are reconciled by the
// store's atomic primitives and optimistic version checks.
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
	"github.com/iliyamo/lab-seat-scheduler/internal/metrics"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
	"github.com/iliyamo/lab-seat-scheduler/internal/queue"
	"github.com/iliyamo/lab-seat-scheduler/internal/repository"
)

// Engine exposes the lab scheduling operations.
type Engine struct {
	store      repository.Store
	events     queue.Publisher
	complaints queue.Publisher
	metrics    *metrics.Metrics
	log        zerolog.Logger
	now        func() time.Time
	loc        *time.Location
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall-clock source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the lab's time zone.  "Today" and the slot windows
// are evaluated in it.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithPublisher sets the publisher for lab events and, unless
// WithComplaintPublisher is also given, for complaints.
func WithPublisher(p queue.Publisher) Option {
	return func(e *Engine) { e.events = p }
}

// WithComplaintPublisher sets the publisher that forwards complaints to the
// ticketing system.
func WithComplaintPublisher(p queue.Publisher) Option {
	return func(e *Engine) { e.complaints = p }
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine returns an engine over store.  Without options it publishes
// nothing, records no metrics, logs nothing and uses the local clock.
func NewEngine(store repository.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		events: queue.NopPublisher{},
		log:    zerolog.Nop(),
		now:    time.Now,
		loc:    time.Local,
	}
	for _, o := range opts {
		o(e)
	}
	if e.complaints == nil {
		e.complaints = e.events
	}
	e.log = e.log.With().Str("component", "engine").Logger()
	return e
}

// Now returns the current time in the lab's time zone.
func (e *Engine) Now() time.Time { return e.now().In(e.loc) }

// Today returns the current date in model.DateLayout.
func (e *Engine) Today() string { return e.Now().Format(model.DateLayout) }

// done records the outcome of an operation and logs failures.  It returns
// err with op attached so that every failure is attributable.
func (e *Engine) done(op string, err error) error {
	if err == nil {
		e.metrics.Operation(op, metrics.ResultOK)
		return nil
	}
	err = apperr.WithOp(op, err)
	switch apperr.KindOf(err) {
	case apperr.KindConflict:
		e.metrics.Operation(op, metrics.ResultConflict)
		e.log.Warn().Err(err).Str("op", op).Msg("conflict")
	case apperr.KindDependency:
		e.metrics.Operation(op, metrics.ResultError)
		e.log.Warn().Err(err).Str("op", op).Msg("dependency failure")
	default:
		e.metrics.Operation(op, metrics.ResultError)
	}
	return err
}

// publish sends a lab event.  Failures are logged and never fail the
// operation that produced the event.
func (e *Engine) publish(ctx context.Context, eventType string, payload any) {
	env, err := queue.NewEnvelope(eventType, e.now(), payload)
	if err == nil {
		err = e.events.Publish(ctx, queue.EventsQueue, env)
	}
	if err != nil {
		e.log.Error().Err(err).Str("type", eventType).Msg("event publish failed")
	}
}

// labOfRow returns the id of the lab owning rowID.
func (e *Engine) labOfRow(ctx context.Context, rowID uint64) (uint64, error) {
	row, err := e.store.GetRow(ctx, rowID)
	if err != nil {
		return 0, err
	}
	return row.LabID, nil
}
