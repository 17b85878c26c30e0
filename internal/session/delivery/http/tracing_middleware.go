package http

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/gorilla/mux"
)

// TracingMiddleware wraps HTTP handlers with OpenTelemetry tracing
func TracingMiddleware(operationName string, next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, operationName)
}

// RegisterMiddlewares registers the shared middleware chain on the router
func RegisterMiddlewares(router *mux.Router) {
	// Logging first so it observes the traced handler's status
	router.Use(LoggingMiddleware)
	router.Use(func(next http.Handler) http.Handler {
		return TracingMiddleware("http-request", next)
	})
}
