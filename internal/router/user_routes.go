package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/middleware"
	"github.com/iliyamo/room-reservation/internal/model"
)

// RegisterUser registers the endpoints every signed-in role may use.
// Catalog reads go through the response cache; new reservations go
// through the rate limiter.
func RegisterUser(e *echo.Echo, jwtSecret string, cat *handler.CatalogHandler, res *handler.ReservationHandler, cache, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStudent, model.RoleFaculty, model.RoleAdmin),
	)
	g.GET("/rooms", cat.ListRooms, cache)
	g.GET("/timeslots", cat.ListTimeslots, cache)

	g.POST("/reservations", res.Create, limit)
	g.GET("/my-reservations", res.Mine)
	g.GET("/reservations/:id", res.Get)
}
