package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-reservation/internal/metrics"
)

// RequestID assigns every request a UUID, echoed in X-Request-ID.
func RequestID() echo.MiddlewareFunc {
	return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

// RequestLog writes one structured entry per request and records it in
// m.  It runs inside RequestID so the id is already on the response.
func RequestLog(log logrus.FieldLogger, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let echo write the error response so the status is final.
				c.Error(err)
			}
			lat := time.Since(start)

			req, res := c.Request(), c.Response()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(req.Method, route, res.Status, lat.Seconds())

			entry := log.WithFields(logrus.Fields{
				"req_id":     res.Header().Get(echo.HeaderXRequestID),
				"method":     req.Method,
				"path":       req.URL.Path,
				"route":      route,
				"status":     res.Status,
				"latency_ms": lat.Milliseconds(),
				"ip":         c.RealIP(),
				"user_id":    userKey(c),
			})
			switch {
			case res.Status >= 500:
				entry.Error("http")
			case res.Status >= 400:
				entry.Warn("http")
			default:
				entry.Info("http")
			}
			return nil
		}
	}
}
