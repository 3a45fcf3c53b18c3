package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubboard_http_requests_total",
		Help: "Number of HTTP requests served, by route and status code.",
	}, []string{"method", "path", "code"})

	staleFetchDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubboard_stale_fetch_drops_total",
		Help: "Number of upstream fetch results discarded because the selection changed.",
	})

	upstreamErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubboard_upstream_errors_total",
		Help: "Number of failed requests to the upstream club API.",
	})

	markReverts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubboard_attendance_mark_reverts_total",
		Help: "Number of optimistic attendance marks rolled back after an upstream failure.",
	})
)

func metricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			err := next(ctx)
			if err != nil {
				ctx.Error(err)
			}
			requestsTotal.WithLabelValues(
				ctx.Request().Method,
				ctx.Path(),
				strconv.Itoa(ctx.Response().Status),
			).Inc()
			return nil
		}
	}
}

func metricsHandler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
