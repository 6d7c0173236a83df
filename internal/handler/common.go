package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-reservation/internal/middleware"
	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/policy"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/reservation"
)

// dbTimeout bounds the store work of one request.
const dbTimeout = 10 * time.Second

// Message shown for internal failures.  The cause is logged, never sent.
const tryAgain = "something went wrong, please try again"

var errUnauthenticated = errors.New("unauthenticated")

// caller returns the identity JWTAuth put on the context.
func caller(c echo.Context) (model.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return model.Identity{}, errUnauthenticated
	}
	return id, nil
}

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, &reservation.ValidationError{Field: name, Reason: "must be a positive integer"}
	}
	return id, nil
}

// bind decodes the body into req and runs the struct validator.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return &reservation.ValidationError{Field: "body", Reason: "malformed JSON"}
	}
	return c.Validate(req)
}

// respond maps err to a JSON error response.  Rejections and validation
// failures carry their message; anything else is logged with its cause
// and answered with a generic text.
func respond(c echo.Context, log logrus.FieldLogger, err error) error {
	var ve *reservation.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, errUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.Is(err, reservation.ErrForbidden), errors.Is(err, policy.ErrCapacityExceeded):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, reservation.ErrReservationNotFound),
		errors.Is(err, repository.ErrRoomNotFound),
		errors.Is(err, repository.ErrTimeslotNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, reservation.ErrAlreadyBooked), errors.Is(err, reservation.ErrNotPending):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflicts with existing records"})
	}

	entry := log.WithError(err).WithField("req_id", c.Response().Header().Get(echo.HeaderXRequestID))
	if errors.Is(err, reservation.ErrLockTimeout) {
		entry.Warn("lock wait timed out")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": tryAgain})
	}
	entry.Error("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": tryAgain})
}
