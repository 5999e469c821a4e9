// Package status derives a workstation's live occupancy from its stored
// base status, today's bookings and the current time.  Nothing computed
// here is ever written back to storage.
package status

import (
	"time"

	"github.com/iliyamo/lab-seat-scheduler/internal/model"
)

// Effective returns the status a workstation presents at now.
//
// A booking whose slot window contains now makes the seat in-use even when
// the base status is maintenance or offline.  A stored in-use base status
// is never trusted and reads as available.  Bookings for other
// workstations or other dates are ignored, so callers may pass the whole
// lab's bookings for the day.
func Effective(ws model.Workstation, todaysBookings []model.Booking, now time.Time) model.Status {
	if BookedAt(ws.ID, todaysBookings, now) {
		return model.StatusInUse
	}
	switch ws.BaseStatus {
	case model.StatusInUse, "":
		return model.StatusAvailable
	}
	return ws.BaseStatus
}

// BookedAt reports whether any booking for workstationID dated on now's
// calendar day covers now.
func BookedAt(workstationID uint64, bookings []model.Booking, now time.Time) bool {
	today := now.Format(model.DateLayout)
	for _, b := range bookings {
		if b.WorkstationID != workstationID || b.Date != today {
			continue
		}
		if w, ok := b.TimeSlot.Window(); ok && w.Contains(now) {
			return true
		}
	}
	return false
}
