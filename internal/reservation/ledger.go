package reservation

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/queue"
)

// MaxPurposeLen is the longest purpose text accepted by Submit, in characters.
const MaxPurposeLen = 255

// SubmitRequest carries the caller-supplied fields of a new reservation.
type SubmitRequest struct {
	RoomID  uint64
	SlotID  uint64
	Purpose string
}

func (r SubmitRequest) validate(who model.Identity) error {
	if who.UserID == 0 {
		return invalid("user_id", "missing")
	}
	if r.RoomID == 0 {
		return invalid("room_id", "missing")
	}
	if r.SlotID == 0 {
		return invalid("slot_id", "missing")
	}
	p := strings.TrimSpace(r.Purpose)
	if p == "" {
		return invalid("purpose", "missing")
	}
	if utf8.RuneCountInString(p) > MaxPurposeLen {
		return invalid("purpose", "too long")
	}
	return nil
}

// Submit admits a new pending reservation for who, unless the room
// already has a pending or approved reservation for the slot.
//
// The check and the insert run in one transaction that holds the
// (room, slot) slot lock, so of two concurrent submissions for the same
// pair exactly one is admitted, whether or not any row existed before.
// Submissions for different pairs do not wait on each other.
func (s *Service) Submit(ctx context.Context, who model.Identity, req SubmitRequest) (*model.Reservation, error) {
	const op = "reservation.Submit"
	fields := logrus.Fields{"user_id": who.UserID, "room_id": req.RoomID, "slot_id": req.SlotID}

	if err := req.validate(who); err != nil {
		s.metrics.ObserveSubmit(outcome(err))
		s.report(op, fields, err)
		return nil, err
	}

	r := &model.Reservation{
		UserID:  who.UserID,
		RoomID:  req.RoomID,
		SlotID:  req.SlotID,
		Purpose: strings.TrimSpace(req.Purpose),
		Status:  model.StatusPending,
	}
	err := s.store.InSlot(ctx, req.RoomID, req.SlotID, func(tx Tx) error {
		ids, err := tx.ActiveIDs(ctx, req.RoomID, req.SlotID)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			return ErrAlreadyBooked
		}
		return tx.Insert(ctx, r)
	})
	err = classify(op, err)
	s.metrics.ObserveSubmit(outcome(err))
	s.report(op, fields, err)
	if err != nil {
		return nil, err
	}

	s.publish(queue.ReservationEvent{
		Type:          queue.EventSubmitted,
		ReservationID: r.ID,
		UserID:        r.UserID,
		RoomID:        r.RoomID,
		SlotID:        r.SlotID,
		Status:        string(r.Status),
	})
	return r, nil
}

// outcome is the metrics label for err.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsValidation(err):
		return "invalid"
	case IsRejection(err):
		return "rejected"
	default:
		return "error"
	}
}
