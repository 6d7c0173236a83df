package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health is a liveness probe used by load balancers.  It returns a plain
// "ok" as long as the process serves HTTP.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Pinger is a dependency readiness can check.
type Pinger func(ctx context.Context) error

// Ready reports 200 when every named dependency answers its ping within
// two seconds and 503 otherwise, listing each dependency's state.
func Ready(deps map[string]Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		out := make(map[string]string, len(deps))
		for name, ping := range deps {
			if ping == nil {
				out[name] = "disabled"
				continue
			}
			if err := ping(ctx); err != nil {
				out[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			out[name] = "up"
		}
		return c.JSON(status, out)
	}
}
