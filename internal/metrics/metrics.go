// Package metrics exposes Prometheus counters for engine operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultConflict = "conflict"
)

// Metrics bundles the engine counters.
type Metrics struct {
	operations   *prometheus.CounterVec
	moves        *prometheus.CounterVec
	batchSlots   *prometheus.CounterVec
	queueMatches *prometheus.CounterVec
}

// New registers the engine counters on reg.  If reg is nil, the default
// registerer is used.  Collectors that are already registered are reused so
// that several engines may share one registry.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labseat_operations_total",
			Help: "Engine operations by name and result",
		}, []string{"op", "result"}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labseat_move_total",
			Help: "Applied workstation moves by kind",
		}, []string{"kind"}),
		batchSlots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labseat_batch_slots_total",
			Help: "Per-slot outcomes of batch slot updates",
		}, []string{"action", "result"}),
		queueMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labseat_queue_matches_total",
			Help: "Waitlist name-match fallback attempts",
		}, []string{"result"}),
	}
	var err error
	if m.operations, err = register(reg, m.operations); err != nil {
		return nil, err
	}
	if m.moves, err = register(reg, m.moves); err != nil {
		return nil, err
	}
	if m.batchSlots, err = register(reg, m.batchSlots); err != nil {
		return nil, err
	}
	if m.queueMatches, err = register(reg, m.queueMatches); err != nil {
		return nil, err
	}
	return m, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, err
	}
	return c, nil
}

// Operation counts one engine call.
func (m *Metrics) Operation(op, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, result).Inc()
}

// Move counts an applied move of the given kind (swap, relocate, noop).
func (m *Metrics) Move(kind string) {
	if m == nil {
		return
	}
	m.moves.WithLabelValues(kind).Inc()
}

// BatchSlot counts one instruction of a batch update.
func (m *Metrics) BatchSlot(action, result string) {
	if m == nil {
		return
	}
	m.batchSlots.WithLabelValues(action, result).Inc()
}

// QueueMatch counts a name-match attempt; result is "matched" or "none".
func (m *Metrics) QueueMatch(result string) {
	if m == nil {
		return
	}
	m.queueMatches.WithLabelValues(result).Inc()
}
