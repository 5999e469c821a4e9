package service

import (
	"context"
	"sort"
	"strings"

	"github.com/iliyamo/lab-seat-scheduler/internal/apperr"
	"github.com/iliyamo/lab-seat-scheduler/internal/model"
	"github.com/iliyamo/lab-seat-scheduler/internal/queue"
)

// NewQueueEntry is the input of AddToQueue.
type NewQueueEntry struct {
	LabID           uint64 `json:"lab_id"`
	StudentName     string `json:"student_name"`
	Purpose         string `json:"purpose"`
	BatchPreference string `json:"batch_preference"`
}

// AddToQueue puts a request on a lab's waitlist with status waiting.
func (e *Engine) AddToQueue(ctx context.Context, in NewQueueEntry) (*model.QueueEntry, error) {
	const op = "addToQueue"
	student := strings.TrimSpace(in.StudentName)
	if student == "" {
		return nil, e.done(op, apperr.Validation(op, "queue_entry", "student_name is required"))
	}
	pref, ok := model.ParseTimeSlot(in.BatchPreference)
	if !ok {
		return nil, e.done(op, apperr.Validation(op, "queue_entry", "unknown batch preference %q", in.BatchPreference))
	}
	q := &model.QueueEntry{
		LabID:           in.LabID,
		StudentName:     student,
		Purpose:         strings.TrimSpace(in.Purpose),
		BatchPreference: pref,
		Status:          model.QueueWaiting,
		CreatedAt:       e.now().UTC(),
	}
	if err := e.store.CreateQueueEntry(ctx, q); err != nil {
		return nil, e.done(op, err)
	}
	e.publish(ctx, queue.QueueAdded, queue.QueueEvent{EntryID: q.ID, LabID: q.LabID, StudentName: q.StudentName, Preference: string(pref)})
	return q, e.done(op, nil)
}

// RemoveFromQueue cancels a waiting entry.  The entry stays in the history
// view; cancelling an entry that is no longer waiting is a Conflict.
func (e *Engine) RemoveFromQueue(ctx context.Context, id uint64) error {
	const op = "removeFromQueue"
	q, err := e.store.GetQueueEntry(ctx, id)
	if err != nil {
		return e.done(op, err)
	}
	if q.Status != model.QueueWaiting {
		return e.done(op, apperr.Conflict(op, "queue_entry", "entry %d is %s, not waiting", id, q.Status))
	}
	if err := e.store.SetQueueStatus(ctx, id, model.QueueCancelled); err != nil {
		return e.done(op, err)
	}
	e.publish(ctx, queue.QueueCancelled, queue.QueueEvent{EntryID: q.ID, LabID: q.LabID, StudentName: q.StudentName, Preference: string(q.BatchPreference)})
	return e.done(op, nil)
}

// SetQueueStatus advances the advisory status of an entry.
func (e *Engine) SetQueueStatus(ctx context.Context, id uint64, raw string) (*model.QueueEntry, error) {
	const op = "setQueueStatus"
	s, ok := model.ParseQueueStatus(raw)
	if !ok {
		return nil, e.done(op, apperr.Validation(op, "queue_entry", "invalid status %q", raw))
	}
	if err := e.store.SetQueueStatus(ctx, id, s); err != nil {
		return nil, e.done(op, err)
	}
	q, err := e.store.GetQueueEntry(ctx, id)
	return q, e.done(op, err)
}

// ListQueue returns a lab's waitlist, newest first.  Without history only
// live entries are returned: status waiting and not referenced by any
// booking dated today.  With history every entry is returned unfiltered.
func (e *Engine) ListQueue(ctx context.Context, labID uint64, includeHistory bool) ([]model.QueueEntry, error) {
	const op = "listQueue"
	if _, err := e.store.GetLab(ctx, labID); err != nil {
		return nil, e.done(op, err)
	}
	var (
		out []model.QueueEntry
		err error
	)
	if includeHistory {
		out, err = e.store.ListQueueEntries(ctx, labID)
	} else {
		out, err = e.liveQueue(ctx, labID)
	}
	return out, e.done(op, err)
}

// liveQueue returns the waiting entries of a lab that no booking dated
// today consumes, newest first.
func (e *Engine) liveQueue(ctx context.Context, labID uint64) ([]model.QueueEntry, error) {
	all, err := e.store.ListQueueEntries(ctx, labID)
	if err != nil {
		return nil, err
	}
	books, err := e.store.ListBookingsByLab(ctx, labID, e.Today())
	if err != nil {
		return nil, err
	}
	consumed := make(map[uint64]bool, len(books))
	for _, b := range books {
		if b.QueueEntryRef != nil {
			consumed[*b.QueueEntryRef] = true
		}
	}
	live := make([]model.QueueEntry, 0, len(all))
	for _, q := range all {
		if q.Status == model.QueueWaiting && !consumed[q.ID] {
			live = append(live, q)
		}
	}
	return live, nil
}

// checkQueueRef validates an explicit reference: the entry must exist and
// belong to labID.
func (e *Engine) checkQueueRef(ctx context.Context, op string, labID, ref uint64) error {
	q, err := e.store.GetQueueEntry(ctx, ref)
	if apperr.IsNotFound(err) {
		return apperr.Validation(op, "booking", "queue_entry_ref %d does not exist", ref)
	}
	if err != nil {
		return err
	}
	if q.LabID != labID {
		return apperr.Validation(op, "booking", "queue_entry_ref %d belongs to another lab", ref)
	}
	return nil
}

// resolveQueueRef picks the queue reference for a new booking.  An
// explicit reference is validated and used as is.  Otherwise the live
// waitlist is searched for an exact case-insensitive name match; when
// several entries share the name the oldest wins.  Entries in taken are
// skipped so one batch does not link the same entry twice.
func (e *Engine) resolveQueueRef(ctx context.Context, op string, labID uint64, student string, explicit *uint64, taken map[uint64]bool) (*uint64, error) {
	if explicit != nil {
		if err := e.checkQueueRef(ctx, op, labID, *explicit); err != nil {
			return nil, err
		}
		ref := *explicit
		return &ref, nil
	}
	live, err := e.liveQueue(ctx, labID)
	if err != nil {
		return nil, err
	}
	if m := matchByName(live, student, taken); m != nil {
		e.metrics.QueueMatch("matched")
		e.log.Debug().Uint64("queue_entry_id", m.ID).Str("student", student).Msg("waitlist entry linked by name")
		id := m.ID
		return &id, nil
	}
	e.metrics.QueueMatch("none")
	return nil, nil
}

// matchByName returns the oldest entry whose name equals student ignoring
// case and surrounding space.
func matchByName(entries []model.QueueEntry, student string, taken map[uint64]bool) *model.QueueEntry {
	want := strings.TrimSpace(student)
	if want == "" {
		return nil
	}
	cands := make([]model.QueueEntry, 0, 1)
	for _, q := range entries {
		if !taken[q.ID] && strings.EqualFold(strings.TrimSpace(q.StudentName), want) {
			cands = append(cands, q)
		}
	}
	if len(cands) == 0 {
		return nil
	}
	sort.Slice(cands, func(i, j int) bool {
		if !cands[i].CreatedAt.Equal(cands[j].CreatedAt) {
			return cands[i].CreatedAt.Before(cands[j].CreatedAt)
		}
		return cands[i].ID < cands[j].ID
	})
	return &cands[0]
}
