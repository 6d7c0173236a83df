package model

import (
	"strings"
	"time"
)

// Decision is an administrator's verdict on a pending reservation.  The
// values double as the reservation status they lead to.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// ParseDecision accepts both the verb ("approve", "reject") used by
// forms and the resulting state name ("approved", "rejected").
func ParseDecision(s string) (Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approve", "approved":
		return DecisionApproved, true
	case "reject", "rejected":
		return DecisionRejected, true
	}
	return "", false
}

// Status returns the reservation status that the decision produces.
func (d Decision) Status() Status { return Status(d) }

// Approval is the append-only audit record of one decision.  Exactly one
// row is written per status change and rows are never updated; they are
// removed only together with their reservation.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – decided reservation.
//  AdminID       – administrator who decided.
//  Decision      – approved or rejected.
//  Notes         – optional free text.
//  CreatedAt     – decision timestamp (UTC).
type Approval struct {
	ID            uint64    `json:"id"`             // approvals.id
	ReservationID uint64    `json:"reservation_id"` // approvals.reservation_id
	AdminID       uint64    `json:"admin_id"`       // approvals.admin_id
	Decision      Decision  `json:"decision"`       // approvals.decision
	Notes         string    `json:"notes"`          // approvals.notes
	CreatedAt     time.Time `json:"created_at"`     // approvals.created_at
}
