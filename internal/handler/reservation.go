package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-reservation/internal/policy"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/reservation"
)

// ReservationHandler serves the reservation endpoints of ordinary users.
type ReservationHandler struct {
	Svc       Reservations
	Rooms     Rooms
	Timeslots Timeslots
	Policy    policy.Policy
	Log       logrus.FieldLogger
}

func NewReservationHandler(svc Reservations, rooms Rooms, slots Timeslots, p policy.Policy, log logrus.FieldLogger) *ReservationHandler {
	if svc == nil || rooms == nil || slots == nil || log == nil {
		panic("handler: NewReservationHandler requires service, rooms, timeslots and logger")
	}
	return &ReservationHandler{Svc: svc, Rooms: rooms, Timeslots: slots, Policy: p, Log: log}
}

type createReservationReq struct {
	RoomID  uint64 `json:"room_id" validate:"required"`
	SlotID  uint64 `json:"slot_id" validate:"required"`
	Purpose string `json:"purpose" validate:"required"`
}

// Create requests a room for a timeslot.  Unknown rooms and slots are
// validation failures and never reach the ledger.  The access policy is
// checked against the room; the ledger decides whether the slot is free.
//
// POST /v1/reservations
func (h *ReservationHandler) Create(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req createReservationReq
	if err := bind(c, &req); err != nil {
		return respond(c, h.Log, err)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, req.RoomID)
	if errors.Is(err, repository.ErrRoomNotFound) {
		err = &reservation.ValidationError{Field: "room_id", Reason: "does not exist"}
	}
	if err != nil {
		return respond(c, h.Log, err)
	}
	_, err = h.Timeslots.GetByID(ctx, req.SlotID)
	if errors.Is(err, repository.ErrTimeslotNotFound) {
		err = &reservation.ValidationError{Field: "slot_id", Reason: "does not exist"}
	}
	if err != nil {
		return respond(c, h.Log, err)
	}
	if err := h.Policy.CanBook(who, *room); err != nil {
		return respond(c, h.Log, err)
	}

	res, err := h.Svc.Submit(ctx, who, reservation.SubmitRequest{
		RoomID:  req.RoomID,
		SlotID:  req.SlotID,
		Purpose: req.Purpose,
	})
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Mine lists the caller's reservations, newest first.
//
// GET /v1/my-reservations
func (h *ReservationHandler) Mine(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	items, err := h.Svc.ListByUser(ctx, who)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get returns one reservation.  Non-admins see only their own.
//
// GET /v1/reservations/:id
func (h *ReservationHandler) Get(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	d, err := h.Svc.Get(ctx, who, id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, d)
}
