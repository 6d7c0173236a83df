package model

import "time"

// Room represents a bookable room of the institution.  Rooms are
// reference data: they are created and edited by administrators and
// are never mutated by the reservation flow.  Capacity is consulted by
// the access policy before a booking request reaches the ledger.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – human readable label (e.g. "Lecture Hall A").
//  Capacity  – number of people the room seats.
//  Type      – free-form room type (lecture, lab, meeting, ...).
//  Location  – building / floor description.
//  CreatedAt – creation timestamp.
type Room struct {
	ID        uint64    `json:"id"`         // rooms.id
	Name      string    `json:"name"`       // rooms.room_name
	Capacity  uint32    `json:"capacity"`   // rooms.capacity
	Type      string    `json:"type"`       // rooms.room_type
	Location  string    `json:"location"`   // rooms.location
	CreatedAt time.Time `json:"created_at"` // rooms.created_at
}
