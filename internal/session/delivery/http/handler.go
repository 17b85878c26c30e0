package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/storefront/internal/session/domain"
	"github.com/tair/storefront/internal/session/usecase/command"
	"github.com/tair/storefront/internal/session/usecase/query"
)

// SessionHandler handles HTTP requests for the auth session
type SessionHandler struct {
	signInHandler   *command.SignInHandler
	signOutHandler  *command.SignOutHandler
	registerHandler *command.RegisterAccountHandler

	getSessionHandler *query.GetSessionHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(
	signInHandler *command.SignInHandler,
	signOutHandler *command.SignOutHandler,
	registerHandler *command.RegisterAccountHandler,
	getSessionHandler *query.GetSessionHandler,
) *SessionHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_session_requests_total",
			Help: "Total number of requests to the session endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_session_request_duration_seconds",
			Help:    "Duration of session requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &SessionHandler{
		signInHandler:     signInHandler,
		signOutHandler:    signOutHandler,
		registerHandler:   registerHandler,
		getSessionHandler: getSessionHandler,
		requestCounter:    requestCounter,
		requestLatency:    requestLatency,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (h *SessionHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// SignIn handles POST /auth/signin
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.signInHandler.Handle(r.Context(), command.SignInCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// SignOut handles POST /auth/signout
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.signOutHandler.Handle(r.Context(), command.SignOutCommand{}); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

// Register handles POST /auth/register
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.registerHandler.Handle(command.RegisterAccountCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     domain.RoleUser,
	})
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, account)
}

// GetSession handles GET /auth/session
//
// The phase is part of the payload on purpose: consumers must treat
// "loading" as distinct from "anonymous" and defer rendering decisions
// until the session has resolved.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap := h.getSessionHandler.Handle(query.GetSessionQuery{})
	h.respondJSON(w, http.StatusOK, snap)
}

// RegisterRoutes registers session routes on the router
func (h *SessionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/signin", h.metricsMiddleware("/auth/signin", h.SignIn)).Methods("POST")
	router.HandleFunc("/auth/signout", h.metricsMiddleware("/auth/signout", h.SignOut)).Methods("POST")
	router.HandleFunc("/auth/register", h.metricsMiddleware("/auth/register", h.Register)).Methods("POST")
	router.HandleFunc("/auth/session", h.metricsMiddleware("/auth/session", h.GetSession)).Methods("GET")
}

func (h *SessionHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *SessionHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
