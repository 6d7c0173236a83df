package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-reservation/internal/policy"
)

// CatalogHandler serves the reference data every signed-in user can
// browse.
type CatalogHandler struct {
	Rooms     Rooms
	Timeslots Timeslots
	Policy    policy.Policy
	Log       logrus.FieldLogger
}

func NewCatalogHandler(rooms Rooms, slots Timeslots, p policy.Policy, log logrus.FieldLogger) *CatalogHandler {
	if rooms == nil || slots == nil || log == nil {
		panic("handler: NewCatalogHandler requires rooms, timeslots and logger")
	}
	return &CatalogHandler{Rooms: rooms, Timeslots: slots, Policy: p, Log: log}
}

// ListRooms returns the rooms the caller may book.
//
// GET /v1/rooms
func (h *CatalogHandler) ListRooms(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": h.Policy.BookableRooms(who, rooms)})
}

// ListTimeslots returns every timeslot.
//
// GET /v1/timeslots
func (h *CatalogHandler) ListTimeslots(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	slots, err := h.Timeslots.List(ctx)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": slots})
}
