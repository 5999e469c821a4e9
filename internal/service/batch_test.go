package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
)

func TestBatchIsolatesFailures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	w := h.ws(t, "A", 0, "cc-01")
	old, err := h.CreateBooking(ctx, NewBooking{WorkstationID: w.ID, TimeSlot: "Late AM", StudentName: "Old"})
	require.NoError(t, err)
	kept, err := h.CreateBooking(ctx, NewBooking{WorkstationID: w.ID, TimeSlot: "Early PM", StudentName: "Kept"})
	require.NoError(t, err)

	res, err := h.BatchUpdateSlots(ctx, w.ID, testDay, []SlotInstruction{
		{TimeSlot: "Early AM", Action: SlotUpsert, StudentName: "Ana", Purpose: "thesis"},
		{TimeSlot: "Late AM", Action: SlotDelete},
		{TimeSlot: "Lunch", Action: SlotUpsert, StudentName: "Ben"},
		{TimeSlot: "Early PM", Action: SlotNoop},
		{TimeSlot: "Late PM", Action: SlotUpsert, StudentName: ""},
	})
	require.NoError(t, err)
	require.Len(t, res.Slots, 5)

	assert.True(t, res.Slots[0].OK())
	require.NotNil(t, res.Slots[0].Booking)
	assert.Equal(t, "Ana", res.Slots[0].Booking.StudentName)
	assert.True(t, res.Slots[1].OK())
	assert.True(t, res.Slots[1].Deleted)
	assert.True(t, apperr.IsValidation(res.Slots[2].Err))
	assert.True(t, res.Slots[3].OK())
	assert.True(t, apperr.IsValidation(res.Slots[4].Err))

	agg := res.Err()
	require.Error(t, agg)
	assert.Contains(t, agg.Error(), "Lunch")
	assert.Contains(t, agg.Error(), "Late PM")

	_, err = h.store.GetBooking(ctx, old.ID)
	assert.True(t, apperr.IsNotFound(err))
	still, err := h.store.GetBooking(ctx, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kept", still.StudentName)
}

func TestBatchUpsertUpdatesExisting(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	w := h.ws(t, "A", 0, "cc-01")
	b, err := h.CreateBooking(ctx, NewBooking{WorkstationID: w.ID, TimeSlot: "Midday", StudentName: "Ana"})
	require.NoError(t, err)

	res, err := h.BatchUpdateSlots(ctx, w.ID, "", []SlotInstruction{
		{TimeSlot: "Midday", Action: SlotUpsert, StudentName: "Ana", Purpose: "rendering"},
		{TimeSlot: "Late PM", Action: SlotDelete},
	})
	require.NoError(t, err)
	require.NoError(t, res.Err())
	assert.Equal(t, testDay, res.Date)
	assert.Equal(t, b.ID, res.Slots[0].Booking.ID)
	assert.Equal(t, "rendering", res.Slots[0].Booking.Purpose)
	assert.False(t, res.Slots[1].Deleted, "deleting an empty slot is a no-op")

	books, err := h.ListBookings(ctx, h.lab.ID, testDay)
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestBatchRejectsDuplicatesAndOversize(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	w := h.ws(t, "A", 0, "cc-01")

	res, err := h.BatchUpdateSlots(ctx, w.ID, testDay, []SlotInstruction{
		{TimeSlot: "Midday", Action: SlotUpsert, StudentName: "Ana"},
		{TimeSlot: "midday", Action: SlotUpsert, StudentName: "Ben"},
		{TimeSlot: "Early AM", Action: "replace", StudentName: "Cy"},
	})
	require.NoError(t, err)
	assert.True(t, res.Slots[0].OK())
	assert.True(t, apperr.IsValidation(res.Slots[1].Err))
	assert.True(t, apperr.IsValidation(res.Slots[2].Err))

	six := make([]SlotInstruction, 6)
	_, err = h.BatchUpdateSlots(ctx, w.ID, testDay, six)
	assert.True(t, apperr.IsValidation(err))

	_, err = h.BatchUpdateSlots(ctx, 999, testDay, nil)
	assert.True(t, apperr.IsNotFound(err))
	_, err = h.BatchUpdateSlots(ctx, w.ID, "tomorrow", nil)
	assert.True(t, apperr.IsValidation(err))
}

func TestBatchMatchesEachEntryOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	w := h.ws(t, "A", 0, "cc-01")
	e1, err := h.AddToQueue(ctx, NewQueueEntry{LabID: h.lab.ID, StudentName: "Asha", BatchPreference: "Midday"})
	require.NoError(t, err)
	h.clock.Set(12, 30)
	e2, err := h.AddToQueue(ctx, NewQueueEntry{LabID: h.lab.ID, StudentName: "Asha", BatchPreference: "Late PM"})
	require.NoError(t, err)

	res, err := h.BatchUpdateSlots(ctx, w.ID, testDay, []SlotInstruction{
		{TimeSlot: "Midday", Action: SlotUpsert, StudentName: "Asha"},
		{TimeSlot: "Late PM", Action: SlotUpsert, StudentName: "Asha"},
		{TimeSlot: "Early AM", Action: SlotUpsert, StudentName: "Asha"},
	})
	require.NoError(t, err)
	require.NoError(t, res.Err())
	assert.Equal(t, e1.ID, *res.Slots[0].Booking.QueueEntryRef)
	assert.Equal(t, e2.ID, *res.Slots[1].Booking.QueueEntryRef)
	assert.Nil(t, res.Slots[2].Booking.QueueEntryRef)

	live, err := h.ListQueue(ctx, h.lab.ID, false)
	require.NoError(t, err)
	assert.Empty(t, live)
}

func TestBatchSlotsSettleConcurrently(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	w := h.ws(t, "A", 0, "cc-01")

	var instr []SlotInstruction
	for _, s := range model.TimeSlots() {
		instr = append(instr, SlotInstruction{TimeSlot: string(s), Action: SlotUpsert, StudentName: "Student " + string(s)})
	}
	res, err := h.BatchUpdateSlots(ctx, w.ID, testDay, instr)
	require.NoError(t, err)
	require.NoError(t, res.Err())

	board, err := h.SlotBoard(ctx, w.ID, testDay)
	require.NoError(t, err)
	for _, v := range board {
		require.NotNil(t, v.Booking, v.TimeSlot)
		assert.Equal(t, "Student "+string(v.TimeSlot), v.Booking.StudentName)
	}
}

func TestBatchReplacingStudentDropsWaitlistLink(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	w := h.ws(t, "A", 0, "cc-01")
	asha, err := h.AddToQueue(ctx, NewQueueEntry{LabID: h.lab.ID, StudentName: "Asha", BatchPreference: "Midday"})
	require.NoError(t, err)
	b, err := h.CreateBooking(ctx, NewBooking{WorkstationID: w.ID, TimeSlot: "Midday", StudentName: "Asha"})
	require.NoError(t, err)
	require.NotNil(t, b.QueueEntryRef)
	require.Equal(t, asha.ID, *b.QueueEntryRef)

	res, err := h.BatchUpdateSlots(ctx, w.ID, testDay, []SlotInstruction{
		{TimeSlot: "Midday", Action: SlotUpsert, StudentName: "Bob"},
	})
	require.NoError(t, err)
	require.NoError(t, res.Err())
	got := res.Slots[0].Booking
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, "Bob", got.StudentName)
	assert.Nil(t, got.QueueEntryRef)

	live, err := h.ListQueue(ctx, h.lab.ID, false)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, asha.ID, live[0].ID)
}

func TestBatchSameStudentKeepsWaitlistLink(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	w := h.ws(t, "A", 0, "cc-01")
	asha, err := h.AddToQueue(ctx, NewQueueEntry{LabID: h.lab.ID, StudentName: "Asha", BatchPreference: "Midday"})
	require.NoError(t, err)
	_, err = h.CreateBooking(ctx, NewBooking{WorkstationID: w.ID, TimeSlot: "Midday", StudentName: "Asha"})
	require.NoError(t, err)

	res, err := h.BatchUpdateSlots(ctx, w.ID, testDay, []SlotInstruction{
		{TimeSlot: "Midday", Action: SlotUpsert, StudentName: " ASHA ", Purpose: "rendering"},
	})
	require.NoError(t, err)
	require.NoError(t, res.Err())
	require.NotNil(t, res.Slots[0].Booking.QueueEntryRef)
	assert.Equal(t, asha.ID, *res.Slots[0].Booking.QueueEntryRef)
	assert.Equal(t, "rendering", res.Slots[0].Booking.Purpose)
}
