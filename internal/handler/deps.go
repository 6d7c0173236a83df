package handler

import (
	"context"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/reservation"
)

// Reservations is the reservation core as the HTTP layer uses it.
// *reservation.Service satisfies it.
type Reservations interface {
	Submit(ctx context.Context, who model.Identity, req reservation.SubmitRequest) (*model.Reservation, error)
	Decide(ctx context.Context, admin model.Identity, id uint64, decision, notes string) (*model.Reservation, error)
	ClearByStatus(ctx context.Context, admin model.Identity, status string) (int64, error)
	ClearAll(ctx context.Context, admin model.Identity) error
	ListByUser(ctx context.Context, who model.Identity) ([]model.ReservationDetail, error)
	ListAll(ctx context.Context, admin model.Identity) ([]model.ReservationDetail, error)
	Get(ctx context.Context, who model.Identity, id uint64) (*model.ReservationDetail, error)
	Approvals(ctx context.Context, admin model.Identity, id uint64) ([]model.Approval, error)
}

// Rooms is implemented by *repository.RoomRepo.
type Rooms interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
	List(ctx context.Context) ([]model.Room, error)
	Update(ctx context.Context, room *model.Room) error
	Delete(ctx context.Context, id uint64) error
}

// Timeslots is implemented by *repository.TimeslotRepo.
type Timeslots interface {
	Create(ctx context.Context, t *model.Timeslot) error
	GetByID(ctx context.Context, id uint64) (*model.Timeslot, error)
	List(ctx context.Context) ([]model.Timeslot, error)
	Update(ctx context.Context, t *model.Timeslot) error
	Delete(ctx context.Context, id uint64) error
}

// Users is implemented by *repository.UserRepo.
type Users interface {
	Create(ctx context.Context, name, email, password string, role model.Role, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	Update(ctx context.Context, id uint64, patch model.UserPatch, cost int) error
}

// Invalidator drops cached reference-data responses after an admin
// write.  A nil Invalidator is a no-op.
type Invalidator func(ctx context.Context) error
