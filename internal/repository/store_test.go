package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
	"github.com/iliyamo/lab-seat-scheduler/internal/database"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
	"github.com/iliyamo/lab-seat-scheduler/internal/repository"
)

// stores runs fn once per Store implementation.
func stores(t *testing.T, fn func(t *testing.T, s repository.Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, repository.NewMemoryStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		db, err := database.OpenSQLite(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		require.NoError(t, database.Migrate(context.Background(), db, database.SQLite))
		fn(t, repository.NewSQLStore(db))
	})
}

type fixture struct {
	lab  model.Laboratory
	rowA model.Row
	rowB model.Row
}

func seed(t *testing.T, s repository.Store) fixture {
	t.Helper()
	ctx := context.Background()
	f := fixture{lab: model.Laboratory{Name: "Lab 1"}}
	require.NoError(t, s.CreateLab(ctx, &f.lab))
	f.rowA = model.Row{LabID: f.lab.ID, Name: "A"}
	require.NoError(t, s.CreateRow(ctx, &f.rowA))
	f.rowB = model.Row{LabID: f.lab.ID, Name: "B"}
	require.NoError(t, s.CreateRow(ctx, &f.rowB))
	return f
}

func addWS(t *testing.T, s repository.Store, rowID uint64, pos int, label string) model.Workstation {
	t.Helper()
	w := model.Workstation{
		RowID: rowID, Position: pos, Label: label,
		BaseStatus: model.StatusAvailable, SoftwareList: []string{"gcc", "python"},
	}
	require.NoError(t, s.CreateWorkstation(context.Background(), &w))
	return w
}

func TestRowsUniquePerLab(t *testing.T) {
	stores(t, func(t *testing.T, s repository.Store) {
		ctx := context.Background()
		f := seed(t, s)

		dup := model.Row{LabID: f.lab.ID, Name: "A"}
		err := s.CreateRow(ctx, &dup)
		assert.True(t, apperr.IsConflict(err), "got %v", err)

		other := model.Laboratory{Name: "Lab 2"}
		require.NoError(t, s.CreateLab(ctx, &other))
		require.NoError(t, s.CreateRow(ctx, &model.Row{LabID: other.ID, Name: "A"}))

		err = s.CreateRow(ctx, &model.Row{LabID: 999, Name: "C"})
		assert.True(t, apperr.IsNotFound(err))

		got, err := s.FindRowByName(ctx, f.lab.ID, "B")
		require.NoError(t, err)
		assert.Equal(t, f.rowB.ID, got.ID)

		rows, err := s.ListRows(ctx, f.lab.ID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "A", rows[0].Name)
	})
}

func TestRenameRow(t *testing.T) {
	stores(t, func(t *testing.T, s repository.Store) {
		ctx := context.Background()
		f := seed(t, s)
		require.NoError(t, s.RenameRow(ctx, f.rowA.ID, "C"))
		require.NoError(t, s.RenameRow(ctx, f.rowA.ID, "C"))
		got, err := s.GetRow(ctx, f.rowA.ID)
		require.NoError(t, err)
		assert.Equal(t, "C", got.Name)

		assert.True(t, apperr.IsConflict(s.RenameRow(ctx, f.rowA.ID, "B")))
		assert.True(t, apperr.IsNotFound(s.RenameRow(ctx, 999, "D")))
	})
}

func TestWorkstationCreateReplacesPlaceholder(t *testing.T) {
	stores(t, func(t *testing.T, s repository.Store) {
		ctx := context.Background()
		f := seed(t, s)
		slot := model.EmptySlot{RowID: f.rowA.ID, Position: 2}
		require.NoError(t, s.CreateEmptySlot(ctx, &slot))

		w := addWS(t, s, f.rowA.ID, 2, "cc-01")
		assert.EqualValues(t, 1, w.Version)

		_, err := s.FindEmptySlotAt(ctx, w.Coord())
		assert.True(t, apperr.IsNotFound(err))

		dup := model.Workstation{RowID: f.rowA.ID, Position: 2, Label: "cc-02", BaseStatus: model.StatusAvailable}
		assert.True(t, apperr.IsConflict(s.CreateWorkstation(ctx, &dup)))

		got, err := s.GetWorkstation(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"gcc", "python"}, got.SoftwareList)

		list, err := s.ListWorkstations(ctx, f.lab.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestUpdateWorkstationVersioned(t *testing.T) {
	stores(t, func(t *testing.T, s repository.Store) {
		ctx := context.Background()
		f := seed(t, s)
		w := addWS(t, s, f.rowA.ID, 0, "cc-01")

		first := w
		first.BaseStatus = model.StatusMaintenance
		require.NoError(t, s.UpdateWorkstation(ctx, &first))
		assert.EqualValues(t, 2, first.Version)

		second := w
		second.Label = "cc-99"
		err := s.UpdateWorkstation(ctx, &second)
		assert.True(t, apperr.IsConflict(err))
		assert.True(t, errors.Is(err, repository.ErrStale))

		missing := model.Workstation{ID: 999, Version: 1}
		assert.True(t, apperr.IsNotFound(s.UpdateWorkstation(ctx, &missing)))
	})
}

func TestDeleteWorkstationLeavesPlaceholder(t *testing.T) {
	stores(t, func(t *testing.T, s repository.Store) {
		ctx := context.Background()
		f := seed(t, s)
		w := addWS(t, s, f.rowA.ID, 1, "cc-01")
		require.NoError(t, s.CreateBooking(ctx, &model.Booking{
			WorkstationID: w.ID, Date: "2026-03-02", TimeSlot: model.SlotMidday, StudentName: "Ana",
		}))

		created, err := s.DeleteWorkstation(ctx, w.ID)
		require.NoError(t, err)
		assert.True(t, created)

		_, err = s.FindEmptySlotAt(ctx, w.Coord())
		assert.NoError(t, err)
		books, err := s.ListBookingsByLab(ctx, f.lab.ID, "2026-03-02")
		require.NoError(t, err)
		assert.Empty(t, books)

		_, err = s.DeleteWorkstation(ctx, w.ID)
		assert.True(t, apperr.IsNotFound(err))
	})
}

func TestRelocateStaleAndOccupied(t *testing.T) {
	stores(t, func(t *testing.T, s repository.Store) {
		ctx := context.Background()
		f := seed(t, s)
		a := addWS(t, s, f.rowA.ID, 0, "cc-01")
		b := addWS(t, s, f.rowA.ID, 1, "cc-02")

		err := s.RelocateWorkstation(ctx, a, b.Coord())
		assert.True(t, errors.Is(err, repository.ErrStale), "occupied target: %v", err)

		to := model.Coord{RowID: f.rowB.ID, Position: 3}
		require.NoError(t, s.RelocateWorkstation(ctx, a, to))
		got, err := s.GetWorkstation(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, to, got.Coord())

		// a was read before the first move
		err = s.RelocateWorkstation(ctx, a, model.Coord{RowID: f.rowB.ID, Position: 4})
		assert.True(t, errors.Is(err, repository.ErrStale))

		err = s.RelocateWorkstation(ctx, *got, model.Coord{RowID: 999, Position: 0})
		assert.Error(t, err)
	})
}

func TestSwap(t *testing.T) {
	stores(t, func(t *testing.T, s repository.Store) {
		ctx := context.Background()
		f := seed(t, s)
		a := addWS(t, s, f.rowA.ID, 0, "cc-01")
		b := addWS(t, s, f.rowB.ID, 5, "cc-02")

		require.NoError(t, s.SwapWorkstations(ctx, a, b))
		ga, _ := s.GetWorkstation(ctx, a.ID)
		gb, _ := s.GetWorkstation(ctx, b.ID)
		assert.Equal(t, b.Coord(), ga.Coord())
		assert.Equal(t, a.Coord(), gb.Coord())

		// stale copies leave both untouched
		err := s.SwapWorkstations(ctx, a, b)
		assert.True(t, errors.Is(err, repository.ErrStale))
		again, _ := s.GetWorkstation(ctx, a.ID)
		assert.Equal(t, ga.Coord(), again.Coord())
		assert.Equal(t, ga.Version, again.Version)
	})
}

func TestConcurrentRelocateOneWins(t *testing.T) {
	stores(t, func(t *testing.T, s repository.Store) {
		ctx := context.Background()
		f := seed(t, s)
		var movers []model.Workstation
		for i := 0; i < 4; i++ {
			movers = append(movers, addWS(t, s, f.rowA.ID, i, fmt.Sprintf("cc-%02d", i)))
		}
		target := model.Coord{RowID: f.rowB.ID, Position: 0}

		var wg sync.WaitGroup
		errs := make([]error, len(movers))
		for i, w := range movers {
			wg.Add(1)
			go func(i int, w model.Workstation) {
				defer wg.Done()
				errs[i] = s.RelocateWorkstation(ctx, w, target)
			}(i, w)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.True(t, apperr.IsConflict(err), "loser got %v", err)
		}
		assert.Equal(t, 1, wins)
	})
}

func TestEmptySlots(t *testing.T) {
	stores(t, func(t *testing.T, s repository.Store) {
		ctx := context.Background()
		f := seed(t, s)
		w := addWS(t, s, f.rowA.ID, 0, "cc-01")

		err := s.CreateEmptySlot(ctx, &model.EmptySlot{RowID: f.rowA.ID, Position: 0})
		assert.True(t, apperr.IsConflict(err))

		slot := model.EmptySlot{RowID: f.rowA.ID, Position: 1}
		require.NoError(t, s.CreateEmptySlot(ctx, &slot))
		err = s.CreateEmptySlot(ctx, &model.EmptySlot{RowID: f.rowA.ID, Position: 1})
		assert.True(t, apperr.IsConflict(err))

		got, created, err := s.EnsureEmptySlot(ctx, model.Coord{RowID: f.rowA.ID, Position: 1})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, slot.ID, got.ID)

		// ensure ignores workstation occupancy
		_, created, err = s.EnsureEmptySlot(ctx, w.Coord())
		require.NoError(t, err)
		assert.True(t, created)

		list, err := s.ListEmptySlots(ctx, f.lab.ID)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		require.NoError(t, s.DeleteEmptySlot(ctx, slot.ID))
		require.NoError(t, s.DeleteEmptySlot(ctx, slot.ID))
	})
}

func TestBookingsUniqueTriple(t *testing.T) {
	stores(t, func(t *testing.T, s repository.Store) {
		ctx := context.Background()
		f := seed(t, s)
		w := addWS(t, s, f.rowA.ID, 0, "cc-01")
		ref := uint64(42)

		b := model.Booking{WorkstationID: w.ID, Date: "2026-03-02", TimeSlot: model.SlotEarlyAM,
			StudentName: "Ana", Purpose: "thesis", QueueEntryRef: &ref}
		require.NoError(t, s.CreateBooking(ctx, &b))

		dup := b
		dup.ID = 0
		assert.True(t, apperr.IsConflict(s.CreateBooking(ctx, &dup)))

		other := model.Booking{WorkstationID: w.ID, Date: "2026-03-03", TimeSlot: model.SlotEarlyAM, StudentName: "Ben"}
		require.NoError(t, s.CreateBooking(ctx, &other))

		got, err := s.FindBooking(ctx, w.ID, "2026-03-02", model.SlotEarlyAM)
		require.NoError(t, err)
		require.NotNil(t, got.QueueEntryRef)
		assert.Equal(t, ref, *got.QueueEntryRef)

		got.StudentName = "Ana Maria"
		got.QueueEntryRef = nil
		require.NoError(t, s.UpdateBooking(ctx, got))
		again, err := s.GetBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", again.StudentName)
		assert.Nil(t, again.QueueEntryRef)

		day, err := s.ListBookingsByWorkstation(ctx, w.ID, "2026-03-02")
		require.NoError(t, err)
		assert.Len(t, day, 1)

		require.NoError(t, s.DeleteBooking(ctx, b.ID))
		assert.True(t, apperr.IsNotFound(s.DeleteBooking(ctx, b.ID)))
	})
}

func TestDeleteRowCascade(t *testing.T) {
	stores(t, func(t *testing.T, s repository.Store) {
		ctx := context.Background()
		f := seed(t, s)
		w := addWS(t, s, f.rowA.ID, 0, "cc-01")
		keep := addWS(t, s, f.rowB.ID, 0, "cc-02")
		require.NoError(t, s.CreateEmptySlot(ctx, &model.EmptySlot{RowID: f.rowA.ID, Position: 3}))
		require.NoError(t, s.CreateBooking(ctx, &model.Booking{
			WorkstationID: w.ID, Date: "2026-03-02", TimeSlot: model.SlotLatePM, StudentName: "Ana",
		}))

		require.NoError(t, s.DeleteRowCascade(ctx, f.rowA.ID))

		_, err := s.GetWorkstation(ctx, w.ID)
		assert.True(t, apperr.IsNotFound(err))
		_, err = s.GetWorkstation(ctx, keep.ID)
		assert.NoError(t, err)
		slots, err := s.ListEmptySlots(ctx, f.lab.ID)
		require.NoError(t, err)
		assert.Empty(t, slots)

		assert.True(t, apperr.IsNotFound(s.DeleteRowCascade(ctx, f.rowA.ID)))
	})
}

func TestQueueNewestFirst(t *testing.T) {
	stores(t, func(t *testing.T, s repository.Store) {
		ctx := context.Background()
		f := seed(t, s)
		var ids []uint64
		for _, name := range []string{"Ana", "Ben", "Cy"} {
			q := model.QueueEntry{LabID: f.lab.ID, StudentName: name, BatchPreference: model.SlotMidday, Status: model.QueueWaiting}
			require.NoError(t, s.CreateQueueEntry(ctx, &q))
			ids = append(ids, q.ID)
		}
		list, err := s.ListQueueEntries(ctx, f.lab.ID)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, ids[2], list[0].ID)
		assert.Equal(t, ids[0], list[2].ID)

		require.NoError(t, s.SetQueueStatus(ctx, ids[0], model.QueueCancelled))
		require.NoError(t, s.SetQueueStatus(ctx, ids[0], model.QueueCancelled))
		got, err := s.GetQueueEntry(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, model.QueueCancelled, got.Status)

		assert.True(t, apperr.IsNotFound(s.SetQueueStatus(ctx, 999, model.QueueWaiting)))
		assert.True(t, apperr.IsNotFound(s.CreateQueueEntry(ctx, &model.QueueEntry{LabID: 999})))
	})
}
