package domain

import "time"

// Represents an immovable calendar entry anchored to a location.
//
// Start and End are both optional so that open-ended markers ("ends at 13:00")
// can be expressed. When both are present Start must be before End.
// FixedEvents are owned by the calendar source; the planner only reads
// and re-emits them.
type FixedEvent struct {
	ID       string
	Name     string
	Start    *time.Time
	End      *time.Time
	Location string
}

// SortKey is the start time, falling back to the end time for markers
// that only carry an end. ok is false when the event has neither bound.
func (e FixedEvent) SortKey() (t time.Time, ok bool) {
	if e.Start != nil {
		return *e.Start, true
	}
	if e.End != nil {
		return *e.End, true
	}
	return time.Time{}, false
}
