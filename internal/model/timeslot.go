package model

import "time"

// Timeslot is a fixed date and start/end window that can hold at most
// one active reservation per room.  Like rooms, timeslots are reference
// data and are read-only while reservations point at them.
//
// Fields:
//  ID        – primary key identifier.
//  Date      – calendar day of the slot (YYYY-MM-DD).
//  StartTime – start of the window (HH:MM:SS).
//  EndTime   – end of the window (HH:MM:SS), strictly after StartTime.
type Timeslot struct {
	ID        uint64 `json:"id"`         // timeslots.id
	Date      string `json:"date"`       // timeslots.slot_date
	StartTime string `json:"start_time"` // timeslots.start_time
	EndTime   string `json:"end_time"`   // timeslots.end_time
}

const (
	slotDateLayout = "2006-01-02"
	slotTimeLayout = "15:04:05"
)

// Window parses the slot into absolute UTC start and end instants.  It
// reports false when any component is malformed.
func (t Timeslot) Window() (time.Time, time.Time, bool) {
	day, err := time.Parse(slotDateLayout, t.Date)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse(slotTimeLayout, t.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(slotTimeLayout, t.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	at := func(clock time.Time) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC)
	}
	return at(start), at(end), true
}

// Valid reports whether the slot has a parseable date and an end time
// strictly after its start time.
func (t Timeslot) Valid() bool {
	start, end, ok := t.Window()
	return ok && end.After(start)
}
