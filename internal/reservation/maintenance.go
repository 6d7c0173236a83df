package reservation

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/queue"
)

// ClearableStatuses are the statuses ClearByStatus accepts.  Active
// reservations are never bulk-deleted by status.
var ClearableStatuses = []model.Status{model.StatusRejected, model.StatusCancelled}

func clearable(s model.Status) bool {
	for _, c := range ClearableStatuses {
		if c == s {
			return true
		}
	}
	return false
}

// ClearByStatus deletes every reservation with the given status together
// with its approval records and returns how many reservations were
// removed.
func (s *Service) ClearByStatus(ctx context.Context, admin model.Identity, status string) (int64, error) {
	const op = "reservation.ClearByStatus"
	fields := logrus.Fields{"admin_id": admin.UserID, "status": status}

	st := model.Status(status)
	var err error
	switch {
	case !admin.IsAdmin():
		err = ErrForbidden
	case !clearable(st):
		err = invalid("status", "must be rejected or cancelled")
	}
	if err != nil {
		s.metrics.ObserveClear(outcome(err))
		s.report(op, fields, err)
		return 0, err
	}

	var n int64
	err = s.store.InTx(ctx, func(tx Tx) error {
		var err error
		n, err = tx.DeleteByStatus(ctx, st)
		return err
	})
	err = classify(op, err)
	s.metrics.ObserveClear(outcome(err))
	s.report(op, fields, err)
	if err != nil {
		return 0, err
	}
	s.metrics.AddCleared(n)

	s.publish(queue.ReservationEvent{
		Type:    queue.EventCleared,
		Status:  status,
		AdminID: admin.UserID,
		Count:   n,
	})
	return n, nil
}

// ClearAll deletes every approval and every reservation.
func (s *Service) ClearAll(ctx context.Context, admin model.Identity) error {
	const op = "reservation.ClearAll"
	fields := logrus.Fields{"admin_id": admin.UserID}

	if err := requireAdmin(admin); err != nil {
		s.metrics.ObserveClear(outcome(err))
		s.report(op, fields, err)
		return err
	}
	err := s.store.InTx(ctx, func(tx Tx) error {
		return tx.DeleteAll(ctx)
	})
	err = classify(op, err)
	s.metrics.ObserveClear(outcome(err))
	s.report(op, fields, err)
	if err != nil {
		return err
	}

	s.publish(queue.ReservationEvent{
		Type:    queue.EventCleared,
		Status:  "all",
		AdminID: admin.UserID,
	})
	return nil
}
