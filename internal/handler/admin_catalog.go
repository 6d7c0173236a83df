package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/reservation"
)

// AdminCatalogHandler manages rooms and timeslots.  Every successful
// write drops the cached GET responses.
type AdminCatalogHandler struct {
	Rooms      Rooms
	Timeslots  Timeslots
	Invalidate Invalidator
	Log        logrus.FieldLogger
}

func NewAdminCatalogHandler(rooms Rooms, slots Timeslots, inv Invalidator, log logrus.FieldLogger) *AdminCatalogHandler {
	if rooms == nil || slots == nil || log == nil {
		panic("handler: NewAdminCatalogHandler requires rooms, timeslots and logger")
	}
	return &AdminCatalogHandler{Rooms: rooms, Timeslots: slots, Invalidate: inv, Log: log}
}

type roomReq struct {
	Name     string `json:"name" validate:"required,max=100"`
	Capacity uint32 `json:"capacity" validate:"required,gte=1"`
	Type     string `json:"type" validate:"max=50"`
	Location string `json:"location" validate:"max=100"`
}

func (r roomReq) model(id uint64) *model.Room {
	return &model.Room{
		ID:       id,
		Name:     strings.TrimSpace(r.Name),
		Capacity: r.Capacity,
		Type:     strings.TrimSpace(r.Type),
		Location: strings.TrimSpace(r.Location),
	}
}

type timeslotReq struct {
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// model accepts HH:MM as well as HH:MM:SS and rejects windows that do
// not end after they start.
func (r timeslotReq) model(id uint64) (*model.Timeslot, error) {
	t := &model.Timeslot{
		ID:        id,
		Date:      strings.TrimSpace(r.Date),
		StartTime: clock(r.StartTime),
		EndTime:   clock(r.EndTime),
	}
	if !t.Valid() {
		return nil, &reservation.ValidationError{Field: "end_time", Reason: "slot needs a YYYY-MM-DD date and an end time after its start time"}
	}
	return t, nil
}

func clock(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == len("15:04") {
		return s + ":00"
	}
	return s
}

// changed runs the cache invalidation.  A failure only means lists may
// be stale until their TTL runs out, so it is logged and swallowed.
func (h *AdminCatalogHandler) changed(ctx context.Context) {
	if h.Invalidate == nil {
		return
	}
	if err := h.Invalidate(ctx); err != nil {
		h.Log.WithError(err).Warn("cache invalidation failed")
	}
}

// CreateRoom POST /v1/admin/rooms
func (h *AdminCatalogHandler) CreateRoom(c echo.Context) error {
	var req roomReq
	if err := bind(c, &req); err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	room := req.model(0)
	if err := h.Rooms.Create(ctx, room); err != nil {
		return respond(c, h.Log, err)
	}
	h.changed(ctx)
	return c.JSON(http.StatusCreated, room)
}

// UpdateRoom PUT /v1/admin/rooms/:id
func (h *AdminCatalogHandler) UpdateRoom(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req roomReq
	if err := bind(c, &req); err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Rooms.Update(ctx, req.model(id)); err != nil {
		return respond(c, h.Log, err)
	}
	h.changed(ctx)
	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, room)
}

// DeleteRoom DELETE /v1/admin/rooms/:id
func (h *AdminCatalogHandler) DeleteRoom(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Rooms.Delete(ctx, id); err != nil {
		return respond(c, h.Log, err)
	}
	h.changed(ctx)
	return c.NoContent(http.StatusNoContent)
}

// CreateTimeslot POST /v1/admin/timeslots
func (h *AdminCatalogHandler) CreateTimeslot(c echo.Context) error {
	var req timeslotReq
	if err := bind(c, &req); err != nil {
		return respond(c, h.Log, err)
	}
	t, err := req.model(0)
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Timeslots.Create(ctx, t); err != nil {
		return respond(c, h.Log, err)
	}
	h.changed(ctx)
	return c.JSON(http.StatusCreated, t)
}

// UpdateTimeslot PUT /v1/admin/timeslots/:id
func (h *AdminCatalogHandler) UpdateTimeslot(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req timeslotReq
	if err := bind(c, &req); err != nil {
		return respond(c, h.Log, err)
	}
	t, err := req.model(id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Timeslots.Update(ctx, t); err != nil {
		return respond(c, h.Log, err)
	}
	h.changed(ctx)
	return c.JSON(http.StatusOK, t)
}

// DeleteTimeslot DELETE /v1/admin/timeslots/:id
func (h *AdminCatalogHandler) DeleteTimeslot(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Timeslots.Delete(ctx, id); err != nil {
		return respond(c, h.Log, err)
	}
	h.changed(ctx)
	return c.NoContent(http.StatusNoContent)
}
