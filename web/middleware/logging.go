package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/storefront/pkg/logger"
)

// StructuredLoggingMiddleware provides structured logging for page requests
func StructuredLoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		traceID := "no-trace"
		if span := trace.SpanFromContext(c.UserContext()); span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		}

		requestID := c.Get("X-Request-Id")

		err := c.Next()

		duration := time.Since(start)
		statusCode := c.Response().StatusCode()

		logEvent := logger.WithContext(c.UserContext()).Info()
		if statusCode >= 500 {
			logEvent = logger.WithContext(c.UserContext()).Error()
		} else if statusCode >= 400 {
			logEvent = logger.WithContext(c.UserContext()).Warn()
		}

		logEvent.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("ip", c.IP()).
			Str("trace_id", traceID).
			Str("request_id", requestID).
			Msg("Page request completed")

		if err != nil {
			logger.Error(c.UserContext()).
				Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("trace_id", traceID).
				Msg("Page request error")
		}

		return err
	}
}
