package api

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/retailshift/scheduler/internal/metrics"
)

// NewRouter builds the Echo router for §6's REST surface, grounded on the
// teacher's middleware stack (internal/api/router.go: Logger, Recover,
// permissive CORS for a browser-facing admin console). reg may be nil, in
// which case request metrics are not recorded.
func NewRouter(h *Handlers, reg *metrics.Registry) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	if reg != nil {
		e.Use(metricsMiddleware(reg))
	}

	e.GET("/api/health", h.Health)

	schedules := e.Group("/api/schedules")
	schedules.POST("/generate", h.Generate)
	schedules.GET("", h.ListAssignments)
	schedules.POST("/version", h.AllocateVersion)
	schedules.POST("/version/duplicate", h.DuplicateVersion)
	schedules.PUT("/versions/:v/status", h.SetVersionStatus)
	schedules.DELETE("/versions/:v", h.DeleteVersion)

	return e
}

// metricsMiddleware times each request and records it on reg, grounded on
// the teacher's HTTP metrics middleware pattern (internal/metrics's
// MetricsMiddleware usage example).
func metricsMiddleware(reg *metrics.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start).Seconds()

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if status == 0 {
					status = 500
				}
			}
			reg.RecordHTTPRequest(c.Request().Method, c.Path(), status, duration)
			if status >= 400 {
				reg.RecordHTTPError(strconvStatus(status))
			}
			return err
		}
	}
}

func strconvStatus(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "unknown"
	}
}
