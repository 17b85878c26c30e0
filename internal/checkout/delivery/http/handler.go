package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/storefront/internal/checkout"
	"github.com/tair/storefront/internal/checkout/domain"
	sessionhttp "github.com/tair/storefront/internal/session/delivery/http"
)

// CheckoutHandler handles HTTP requests for the checkout flow. It talks to
// the machine directly; the machine already is the single write path for
// checkout state, so a command/query layer on top would only echo it.
type CheckoutHandler struct {
	machine *checkout.Machine

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	ordersPlaced   prometheus.Counter
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(machine *checkout.Machine) *CheckoutHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_requests_total",
			Help: "Total number of requests to the checkout endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_checkout_request_duration_seconds",
			Help:    "Duration of checkout requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ordersPlaced := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of completed checkouts",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(ordersPlaced)

	return &CheckoutHandler{
		machine:        machine,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		ordersPlaced:   ordersPlaced,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// decisionPayload is the wire form of a step guard outcome.
type decisionPayload struct {
	Outcome  string `json:"outcome"`
	Target   string `json:"target,omitempty"`
	Step     string `json:"step,omitempty"`
	Reviewed bool   `json:"reviewed"`
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

func (h *CheckoutHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// Enter handles GET /api/checkout
//
// It dispatches the checkout root: back to the product listing when the cart
// is empty, otherwise into the shipping step.
func (h *CheckoutHandler) Enter(w http.ResponseWriter, r *http.Request) {
	h.respondDecision(w, h.machine.Enter())
}

// ResolveStep handles GET /api/checkout/{step}
func (h *CheckoutHandler) ResolveStep(w http.ResponseWriter, r *http.Request) {
	step, ok := domain.ParseStep(mux.Vars(r)["step"])
	if !ok {
		h.respondError(w, http.StatusNotFound, "Unknown checkout step")
		return
	}
	h.respondDecision(w, h.machine.Resolve(step))
}

// SubmitShipping handles POST /api/checkout/shipping
func (h *CheckoutHandler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	var info domain.ShippingInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.machine.SubmitShipping(info); err != nil {
		h.respondError(w, stepErrorStatus(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, Response{Success: true, Data: h.machine.Session()})
}

// ConfirmReview handles POST /api/checkout/review
func (h *CheckoutHandler) ConfirmReview(w http.ResponseWriter, r *http.Request) {
	if err := h.machine.ConfirmReview(); err != nil {
		h.respondError(w, stepErrorStatus(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, Response{Success: true, Data: h.machine.Session()})
}

// CompletePayment handles POST /api/checkout/payment
func (h *CheckoutHandler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(sessionhttp.UserIDKey).(uint)

	orderID, err := h.machine.CompletePayment(r.Context(), userID)
	if err != nil {
		h.respondError(w, stepErrorStatus(err), err.Error())
		return
	}

	h.ordersPlaced.Inc()
	h.respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Order placed",
		Data:    map[string]string{"order_id": orderID},
	})
}

// Leave handles DELETE /api/checkout
func (h *CheckoutHandler) Leave(w http.ResponseWriter, r *http.Request) {
	h.machine.Leave()
	h.respondJSON(w, http.StatusOK, Response{Success: true, Message: "Checkout abandoned"})
}

// RegisterRoutes registers checkout routes on the router. All routes require
// an authenticated caller: guests are bounced by the auth middleware before
// the machine ever sees them.
func (h *CheckoutHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/checkout", h.metricsMiddleware("/api/checkout", sessionhttp.AuthMiddleware(h.Enter))).Methods("GET")
	router.HandleFunc("/api/checkout", h.metricsMiddleware("/api/checkout", sessionhttp.AuthMiddleware(h.Leave))).Methods("DELETE")
	router.HandleFunc("/api/checkout/shipping", h.metricsMiddleware("/api/checkout/shipping", sessionhttp.AuthMiddleware(h.SubmitShipping))).Methods("POST")
	router.HandleFunc("/api/checkout/review", h.metricsMiddleware("/api/checkout/review", sessionhttp.AuthMiddleware(h.ConfirmReview))).Methods("POST")
	router.HandleFunc("/api/checkout/payment", h.metricsMiddleware("/api/checkout/payment", sessionhttp.AuthMiddleware(h.CompletePayment))).Methods("POST")
	router.HandleFunc("/api/checkout/{step}", h.metricsMiddleware("/api/checkout/{step}", sessionhttp.AuthMiddleware(h.ResolveStep))).Methods("GET")
}

func (h *CheckoutHandler) respondDecision(w http.ResponseWriter, decision domain.Decision) {
	payload := decisionPayload{}
	if session := h.machine.Session(); session != nil {
		payload.Step = string(session.Step)
		payload.Reviewed = session.Reviewed
	}

	switch decision.Kind {
	case domain.Proceed:
		payload.Outcome = "proceed"
		h.respondJSON(w, http.StatusOK, Response{Success: true, Data: payload})
	case domain.Wait:
		// The cart has not hydrated yet; the caller should retry.
		payload.Outcome = "wait"
		w.Header().Set("Retry-After", "1")
		h.respondJSON(w, http.StatusAccepted, Response{Success: true, Data: payload})
	default:
		payload.Outcome = "redirect"
		payload.Target = decision.Target
		w.Header().Set("Location", decision.Target)
		h.respondJSON(w, http.StatusSeeOther, Response{Success: true, Data: payload})
	}
}

func stepErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrCartEmpty),
		errors.Is(err, domain.ErrShippingRequired),
		errors.Is(err, domain.ErrReviewRequired):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCartNotHydrated):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func (h *CheckoutHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *CheckoutHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, Response{Success: false, Error: message})
}
