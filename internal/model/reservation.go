package model

import "time"

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// ActiveStatuses are the states that occupy a (room, slot) pair.  At
// most one reservation in one of these states may exist per pair.
var ActiveStatuses = []Status{StatusPending, StatusApproved}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether s occupies its (room, slot) pair.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusApproved
}

// Reservation records a user's request for a room during a timeslot.
// It is created in the pending state by the ledger and afterwards only
// changes through an administrator decision or bulk maintenance.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who requested the room.
//  RoomID    – requested room.
//  SlotID    – requested timeslot.
//  Purpose   – free text supplied with the request.
//  Status    – pending, approved, rejected or cancelled.
//  CreatedAt – creation timestamp (UTC).
type Reservation struct {
	ID        uint64    `json:"id"`         // reservations.id
	UserID    uint64    `json:"user_id"`    // reservations.user_id
	RoomID    uint64    `json:"room_id"`    // reservations.room_id
	SlotID    uint64    `json:"slot_id"`    // reservations.slot_id
	Purpose   string    `json:"purpose"`    // reservations.purpose
	Status    Status    `json:"status"`     // reservations.status
	CreatedAt time.Time `json:"created_at"` // reservations.created_at
}

// ReservationDetail is a reservation joined with the labels needed to
// render it: the room name, the slot window and, for administrator
// listings, the requesting user's name.
type ReservationDetail struct {
	Reservation
	UserName  string `json:"user_name,omitempty"`
	RoomName  string `json:"room_name"`
	SlotDate  string `json:"slot_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}
