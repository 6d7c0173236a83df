package reservation

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/queue"
)

// MaxNotesLen bounds the admin notes stored with a decision.
const MaxNotesLen = 1000

// Decide moves a pending reservation to approved or rejected and appends
// the matching approval record, both in one transaction.  Only pending
// reservations can be decided; anything else is refused with
// ErrNotPending and leaves the store untouched.
func (s *Service) Decide(ctx context.Context, admin model.Identity, id uint64, decision, notes string) (*model.Reservation, error) {
	const op = "reservation.Decide"
	fields := logrus.Fields{"admin_id": admin.UserID, "reservation_id": id, "decision": decision}

	d, err := s.validateDecision(admin, id, decision, notes)
	if err != nil {
		s.metrics.ObserveDecide(outcome(err))
		s.report(op, fields, err)
		return nil, err
	}
	notes = strings.TrimSpace(notes)

	var decided *model.Reservation
	err = s.store.InTx(ctx, func(tx Tx) error {
		r, err := tx.Lock(ctx, id)
		if err != nil {
			return err
		}
		if r.Status != model.StatusPending {
			return ErrNotPending
		}
		next := d.Status()
		if err := tx.SetStatus(ctx, id, next); err != nil {
			return err
		}
		a := &model.Approval{ReservationID: id, AdminID: admin.UserID, Decision: d, Notes: notes}
		if err := tx.InsertApproval(ctx, a); err != nil {
			return err
		}
		r.Status = next
		decided = r
		return nil
	})
	err = classify(op, err)
	s.metrics.ObserveDecide(outcome(err))
	s.report(op, fields, err)
	if err != nil {
		return nil, err
	}

	s.publish(queue.ReservationEvent{
		Type:          queue.EventDecided,
		ReservationID: decided.ID,
		UserID:        decided.UserID,
		RoomID:        decided.RoomID,
		SlotID:        decided.SlotID,
		Status:        string(decided.Status),
		AdminID:       admin.UserID,
		Notes:         notes,
	})
	return decided, nil
}

func (s *Service) validateDecision(admin model.Identity, id uint64, decision, notes string) (model.Decision, error) {
	if err := requireAdmin(admin); err != nil {
		return "", err
	}
	if id == 0 {
		return "", invalid("reservation_id", "missing")
	}
	d, ok := model.ParseDecision(decision)
	if !ok {
		return "", invalid("decision", "must be approve or reject")
	}
	if utf8.RuneCountInString(strings.TrimSpace(notes)) > MaxNotesLen {
		return "", invalid("notes", "too long")
	}
	return d, nil
}
