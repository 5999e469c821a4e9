package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lab-seat-scheduler/internal/metrics"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
	"github.com/iliyamo/lab-seat-scheduler/internal/queue"
	"github.com/iliyamo/lab-seat-scheduler/internal/repository"
)

type recorder struct {
	mu   sync.Mutex
	envs []queue.Envelope
	err  error
}

func (r *recorder) Publish(_ context.Context, _ string, env queue.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.envs = append(r.envs, env)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.envs))
	for i, e := range r.envs {
		out[i] = e.Type
	}
	return out
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(hour, min int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	y, m, d := c.t.Date()
	c.t = time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

const testDay = "2026-03-02"

type harness struct {
	*Engine
	store  *repository.MemoryStore
	events *recorder
	clock  *fakeClock
	lab    model.Laboratory
	rowA   model.Row
	rowB   model.Row
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:  repository.NewMemoryStore(),
		events: &recorder{},
		clock:  &fakeClock{t: time.Date(2026, 3, 2, 12, 15, 0, 0, time.UTC)},
	}
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)
	h.Engine = NewEngine(h.store,
		WithClock(h.clock.Now),
		WithLocation(time.UTC),
		WithPublisher(h.events),
		WithMetrics(m),
	)

	ctx := context.Background()
	lab, err := h.CreateLab(ctx, "Computing Lab 1")
	require.NoError(t, err)
	h.lab = *lab
	a, err := h.AddRow(ctx, lab.ID, "A")
	require.NoError(t, err)
	b, err := h.AddRow(ctx, lab.ID, "B")
	require.NoError(t, err)
	h.rowA, h.rowB = *a, *b
	return h
}

func (h *harness) ws(t *testing.T, row string, pos int, label string) *model.Workstation {
	t.Helper()
	w, err := h.AddWorkstation(context.Background(), NewWorkstation{
		LabID: h.lab.ID, RowName: row, Position: pos, Label: label,
	})
	require.NoError(t, err)
	return w
}

// liveCoordsDistinct checks that no two live workstations share a
// coordinate.
func (h *harness) liveCoordsDistinct(t *testing.T) {
	t.Helper()
	list, err := h.store.ListWorkstations(context.Background(), h.lab.ID)
	require.NoError(t, err)
	seen := map[model.Coord]uint64{}
	for _, w := range list {
		if other, dup := seen[w.Coord()]; dup {
			t.Fatalf("workstations %d and %d share %+v", other, w.ID, w.Coord())
		}
		seen[w.Coord()] = w.ID
	}
}
