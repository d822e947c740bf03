// Package middleware provides HTTP middleware for the catalog engine.
package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appOtel "catalog-engine/utils/otel"
)

// Telemetry records per-request duration metrics and, when a span is
// active on the request context, sets HTTP semantic convention
// attributes and the span status. Following the OpenTelemetry spec,
// only 5xx responses mark the span as an error; 4xx is a client
// problem and leaves the status unset.
func Telemetry() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			recordRequest(c, status, time.Since(start))

			span := trace.SpanFromContext(c.Request().Context())
			if span.SpanContext().IsValid() {
				span.SetAttributes(semconv.HTTPResponseStatusCode(status))
				if status >= 500 {
					span.SetStatus(codes.Error, http.StatusText(status))
				}
			}

			return err
		}
	}
}

func recordRequest(c echo.Context, status int, duration time.Duration) {
	m := appOtel.Metrics
	if m == nil {
		return
	}
	m.RequestDuration.Record(c.Request().Context(), duration.Seconds(),
		metric.WithAttributes(
			attribute.String("route", c.Path()),
			attribute.String("method", c.Request().Method),
			attribute.Int("status", status),
		),
	)
}
