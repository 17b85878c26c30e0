package http

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/tair/storefront/pkg/logger"
)

// LoggingMiddleware logs HTTP requests with structured logging
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		ctx := r.Context()
		span := trace.SpanFromContext(ctx)
		traceID := "no-trace"
		if span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		}

		next.ServeHTTP(ww, r)

		duration := time.Since(start)

		logEvent := logger.WithContext(ctx).Info()
		if ww.statusCode >= 400 {
			logEvent = logger.WithContext(ctx).Error()
		}

		logEvent.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.statusCode).
			Dur("duration", duration).
			Int64("duration_ms", duration.Milliseconds()).
			Str("trace_id", traceID).
			Msg("HTTP request completed")
	})
}

// loggingResponseWriter wraps http.ResponseWriter to capture status code
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}
