package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// AdminReservationHandler serves the administrator side of the
// reservation core.  RequireRole guards the routes; the core checks the
// role again for every call.
type AdminReservationHandler struct {
	Svc Reservations
	Log logrus.FieldLogger
}

func NewAdminReservationHandler(svc Reservations, log logrus.FieldLogger) *AdminReservationHandler {
	if svc == nil || log == nil {
		panic("handler: NewAdminReservationHandler requires service and logger")
	}
	return &AdminReservationHandler{Svc: svc, Log: log}
}

type decisionReq struct {
	Decision string `json:"decision" validate:"required"`
	Notes    string `json:"notes"`
}

// List returns every reservation with user, room and slot labels.
//
// GET /v1/admin/reservations
func (h *AdminReservationHandler) List(c echo.Context) error {
	admin, err := caller(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	items, err := h.Svc.ListAll(ctx, admin)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Decide approves or rejects a pending reservation.
//
// POST /v1/admin/reservations/:id/decision
func (h *AdminReservationHandler) Decide(c echo.Context) error {
	admin, err := caller(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req decisionReq
	if err := bind(c, &req); err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	res, err := h.Svc.Decide(ctx, admin, id, req.Decision, req.Notes)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Approvals returns the decision trail of a reservation.
//
// GET /v1/admin/reservations/:id/approvals
func (h *AdminReservationHandler) Approvals(c echo.Context) error {
	admin, err := caller(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	items, err := h.Svc.Approvals(ctx, admin, id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ClearByStatus deletes every reservation in ?status= (rejected or
// cancelled) together with its approvals.
//
// DELETE /v1/admin/reservations?status=
func (h *AdminReservationHandler) ClearByStatus(c echo.Context) error {
	admin, err := caller(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	n, err := h.Svc.ClearByStatus(ctx, admin, c.QueryParam("status"))
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}

// ClearAll deletes every reservation and approval.
//
// DELETE /v1/admin/reservations/all
func (h *AdminReservationHandler) ClearAll(c echo.Context) error {
	admin, err := caller(c)
	if err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Svc.ClearAll(ctx, admin); err != nil {
		return respond(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
