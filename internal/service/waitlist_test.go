package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
	"github.com/iliyamo/lab-seat-scheduler/internal/queue"
)

func TestQueueLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.AddToQueue(ctx, NewQueueEntry{LabID: h.lab.ID, StudentName: "", BatchPreference: "Midday"})
	assert.True(t, apperr.IsValidation(err))
	_, err = h.AddToQueue(ctx, NewQueueEntry{LabID: h.lab.ID, StudentName: "Ana", BatchPreference: "Evening"})
	assert.True(t, apperr.IsValidation(err))
	_, err = h.AddToQueue(ctx, NewQueueEntry{LabID: 999, StudentName: "Ana", BatchPreference: "Midday"})
	assert.True(t, apperr.IsNotFound(err))

	a, err := h.AddToQueue(ctx, NewQueueEntry{LabID: h.lab.ID, StudentName: "Ana", BatchPreference: "midday"})
	require.NoError(t, err)
	assert.Equal(t, model.QueueWaiting, a.Status)
	assert.Equal(t, model.SlotMidday, a.BatchPreference)
	h.clock.Set(12, 40)
	b, err := h.AddToQueue(ctx, NewQueueEntry{LabID: h.lab.ID, StudentName: "Ben", BatchPreference: "Late PM"})
	require.NoError(t, err)

	live, err := h.ListQueue(ctx, h.lab.ID, false)
	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.Equal(t, b.ID, live[0].ID, "newest first")

	require.NoError(t, h.RemoveFromQueue(ctx, a.ID))
	err = h.RemoveFromQueue(ctx, a.ID)
	assert.True(t, apperr.IsConflict(err), "already cancelled: %v", err)

	live, err = h.ListQueue(ctx, h.lab.ID, false)
	require.NoError(t, err)
	require.Len(t, live, 1)
	hist, err := h.ListQueue(ctx, h.lab.ID, true)
	require.NoError(t, err)
	assert.Len(t, hist, 2)

	got, err := h.SetQueueStatus(ctx, b.ID, "assigned")
	require.NoError(t, err)
	assert.Equal(t, model.QueueAssigned, got.Status)
	_, err = h.SetQueueStatus(ctx, b.ID, "done")
	assert.True(t, apperr.IsValidation(err))
	assert.True(t, apperr.IsConflict(h.RemoveFromQueue(ctx, b.ID)))

	live, err = h.ListQueue(ctx, h.lab.ID, false)
	require.NoError(t, err)
	assert.Empty(t, live)

	assert.Equal(t, []string{queue.QueueAdded, queue.QueueAdded, queue.QueueCancelled}, h.events.types())
}

func TestEventFailureDoesNotFailOperation(t *testing.T) {
	h := newHarness(t)
	h.events.err = errors.New("broker down")

	_, err := h.AddToQueue(context.Background(), NewQueueEntry{LabID: h.lab.ID, StudentName: "Ana", BatchPreference: "Midday"})
	assert.NoError(t, err)
}
