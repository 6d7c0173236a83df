// Package queue carries reservation lifecycle events over RabbitMQ: the
// payload type, the publisher used by the reservation service and the
// audit consumer that appends every event to a rotating log file.
package queue

// Event types.
const (
	EventSubmitted = "reservation.submitted"
	EventDecided   = "reservation.decided"
	EventCleared   = "reservation.cleared"
)

// ReservationEvent is published after a reservation transaction commits.
// It carries enough for the audit consumer to write a line without
// querying the database.  Fields that do not apply to an event type are
// left zero (for example Count is only set on reservation.cleared).
type ReservationEvent struct {
	Type          string `json:"type"`
	ReservationID uint64 `json:"reservation_id,omitempty"`
	UserID        uint64 `json:"user_id,omitempty"`
	RoomID        uint64 `json:"room_id,omitempty"`
	SlotID        uint64 `json:"slot_id,omitempty"`
	Status        string `json:"status,omitempty"`
	AdminID       uint64 `json:"admin_id,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Count         int64  `json:"count,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}
