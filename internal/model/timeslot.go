package model

import (
    "strings"
    "time"
)

// TimeSlot names one of the five fixed daily booking windows.
type TimeSlot string

const (
    SlotEarlyAM TimeSlot = "Early AM"
    SlotLateAM  TimeSlot = "Late AM"
    SlotMidday  TimeSlot = "Midday"
    SlotEarlyPM TimeSlot = "Early PM"
    SlotLatePM  TimeSlot = "Late PM"
)

// Window is a half-open wall-clock interval [Start, End) in minutes
// after midnight.
type Window struct {
    Start int
    End   int
}

// Contains reports whether the wall-clock time of t falls inside w.
func (w Window) Contains(t time.Time) bool {
    m := t.Hour()*60 + t.Minute()
    return m >= w.Start && m < w.End
}

// StartOn and EndOn place the window on the calendar day of t.
func (w Window) StartOn(t time.Time) time.Time { return onDay(t, w.Start) }
func (w Window) EndOn(t time.Time) time.Time   { return onDay(t, w.End) }

func onDay(t time.Time, minutes int) time.Time {
    y, m, d := t.Date()
    return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, t.Location())
}

// slotTable is ordered; 13:30-14:00 is deliberately not bookable.
var slotTable = []struct {
    slot   TimeSlot
    window Window
}{
    {SlotEarlyAM, Window{9 * 60, 10*60 + 30}},
    {SlotLateAM, Window{10*60 + 30, 12 * 60}},
    {SlotMidday, Window{12 * 60, 13*60 + 30}},
    {SlotEarlyPM, Window{14 * 60, 15*60 + 30}},
    {SlotLatePM, Window{15*60 + 30, 17 * 60}},
}

// TimeSlots returns the five slots in chronological order.
func TimeSlots() []TimeSlot {
    out := make([]TimeSlot, len(slotTable))
    for i, s := range slotTable {
        out[i] = s.slot
    }
    return out
}

// Window returns the wall-clock window of the slot.  Unknown slots
// return ok=false.
func (s TimeSlot) Window() (Window, bool) {
    for _, e := range slotTable {
        if e.slot == s {
            return e.window, true
        }
    }
    return Window{}, false
}

// Valid reports whether s is one of the five known slots.
func (s TimeSlot) Valid() bool {
    _, ok := s.Window()
    return ok
}

// ParseTimeSlot matches a slot name case-insensitively, tolerating
// surrounding whitespace, and returns the canonical spelling.
func ParseTimeSlot(raw string) (TimeSlot, bool) {
    raw = strings.TrimSpace(raw)
    for _, e := range slotTable {
        if strings.EqualFold(string(e.slot), raw) {
            return e.slot, true
        }
    }
    return "", false
}

// SlotAt returns the slot whose window contains t, if any.
func SlotAt(t time.Time) (TimeSlot, bool) {
    for _, e := range slotTable {
        if e.window.Contains(t) {
            return e.slot, true
        }
    }
    return "", false
}

// ParseDate validates a booking date in DateLayout.
func ParseDate(s string) (string, bool) {
    d, err := time.Parse(DateLayout, strings.TrimSpace(s))
    if err != nil {
        return "", false
    }
    return d.Format(DateLayout), true
}
