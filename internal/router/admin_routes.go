package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/middleware"
	"github.com/iliyamo/room-reservation/internal/model"
)

// RegisterAdmin registers the administrator endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, jwtSecret string, res *handler.AdminReservationHandler, cat *handler.AdminCatalogHandler, users *handler.AdminUserHandler) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.GET("/reservations", res.List)
	g.POST("/reservations/:id/decision", res.Decide)
	g.GET("/reservations/:id/approvals", res.Approvals)
	g.DELETE("/reservations", res.ClearByStatus)
	g.DELETE("/reservations/all", res.ClearAll)

	g.POST("/rooms", cat.CreateRoom)
	g.PUT("/rooms/:id", cat.UpdateRoom)
	g.DELETE("/rooms/:id", cat.DeleteRoom)

	g.POST("/timeslots", cat.CreateTimeslot)
	g.PUT("/timeslots/:id", cat.UpdateTimeslot)
	g.DELETE("/timeslots/:id", cat.DeleteTimeslot)

	g.PATCH("/users/:id", users.Update)
}
