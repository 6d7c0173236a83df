package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/reservation"
)

// AdminUserHandler edits user accounts.
type AdminUserHandler struct {
	Users      Users
	BcryptCost int
	Log        logrus.FieldLogger
}

func NewAdminUserHandler(u Users, bcryptCost int, log logrus.FieldLogger) *AdminUserHandler {
	if u == nil || log == nil {
		panic("handler: NewAdminUserHandler requires users and logger")
	}
	return &AdminUserHandler{Users: u, BcryptCost: bcryptCost, Log: log}
}

// userPatchReq is the PATCH body.  An absent or null member leaves the
// column unchanged.
type userPatchReq struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Role     *string `json:"role" validate:"omitempty,oneof=student faculty admin"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}

func (r userPatchReq) patch() model.UserPatch {
	var p model.UserPatch
	if r.Name != nil {
		p.Name = model.Set(strings.TrimSpace(*r.Name))
	}
	if r.Email != nil {
		p.Email = model.Set(*r.Email)
	}
	if r.Role != nil {
		role, _ := model.ParseRole(*r.Role)
		p.Role = model.Set(role)
	}
	if r.Password != nil {
		p.Password = model.Set(*r.Password)
	}
	return p
}

// Update PATCH /v1/admin/users/:id
func (h *AdminUserHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respond(c, h.Log, err)
	}
	var req userPatchReq
	if err := bind(c, &req); err != nil {
		return respond(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Users.Update(ctx, id, req.patch(), h.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrEmptyPatch) {
			err = &reservation.ValidationError{Field: "body", Reason: err.Error()}
		}
		return respond(c, h.Log, err)
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
}
