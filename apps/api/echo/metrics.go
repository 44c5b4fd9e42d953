package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "elearn360",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latencies by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "path", "status"},
)

// requestMetricsMiddleware records per-request latencies on the default
// prometheus registry; the debug mux serves them under /metrics.
func requestMetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)
			if err != nil {
				ctx.Error(err)
			}

			// ctx.Path() is the route pattern, not the raw URL; bounded cardinality
			requestDuration.WithLabelValues(
				ctx.Request().Method,
				ctx.Path(),
				strconv.Itoa(ctx.Response().Status),
			).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
