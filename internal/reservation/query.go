package reservation

import (
	"context"

	"github.com/iliyamo/room-reservation/internal/model"
)

// ListByUser returns the caller's reservations, newest first.
func (s *Service) ListByUser(ctx context.Context, who model.Identity) ([]model.ReservationDetail, error) {
	if who.UserID == 0 {
		return nil, invalid("user_id", "missing")
	}
	out, err := s.store.ListByUser(ctx, who.UserID)
	if err != nil {
		return nil, classify("reservation.ListByUser", err)
	}
	return out, nil
}

// ListAll returns every reservation, newest first.
func (s *Service) ListAll(ctx context.Context, admin model.Identity) ([]model.ReservationDetail, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	out, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, classify("reservation.ListAll", err)
	}
	return out, nil
}

// Get returns one reservation.  Non-admin callers only see their own;
// someone else's reservation is reported as not found.
func (s *Service) Get(ctx context.Context, who model.Identity, id uint64) (*model.ReservationDetail, error) {
	if id == 0 {
		return nil, invalid("reservation_id", "missing")
	}
	d, err := s.store.Detail(ctx, id)
	if err != nil {
		return nil, classify("reservation.Get", err)
	}
	if !who.IsAdmin() && d.UserID != who.UserID {
		return nil, ErrReservationNotFound
	}
	return d, nil
}

// Approvals returns the decision history of a reservation, oldest first.
func (s *Service) Approvals(ctx context.Context, admin model.Identity, id uint64) ([]model.Approval, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, invalid("reservation_id", "missing")
	}
	out, err := s.store.Approvals(ctx, id)
	if err != nil {
		return nil, classify("reservation.Approvals", err)
	}
	return out, nil
}
