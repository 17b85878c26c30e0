package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/storefront/internal/cart/domain"
	"github.com/tair/storefront/internal/cart/usecase/command"
	"github.com/tair/storefront/internal/cart/usecase/query"
)

// CartHandler handles HTTP requests for the cart
type CartHandler struct {
	// Command handlers
	addHandler    *command.AddItemHandler
	setQtyHandler *command.SetQuantityHandler
	removeHandler *command.RemoveItemHandler
	clearHandler  *command.ClearCartHandler

	// Query handlers
	getHandler   *query.GetCartHandler
	countHandler *query.CountItemsHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	cartItems      prometheus.Gauge
}

// NewCartHandler creates a new cart handler
func NewCartHandler(
	addHandler *command.AddItemHandler,
	setQtyHandler *command.SetQuantityHandler,
	removeHandler *command.RemoveItemHandler,
	clearHandler *command.ClearCartHandler,
	getHandler *query.GetCartHandler,
	countHandler *query.CountItemsHandler,
) *CartHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_requests_total",
			Help: "Total number of requests to the cart endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_cart_request_duration_seconds",
			Help:    "Duration of cart requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	cartItems := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_cart_items",
			Help: "Current number of items in the cart (sum of quantities)",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(cartItems)

	return &CartHandler{
		addHandler:     addHandler,
		setQtyHandler:  setQtyHandler,
		removeHandler:  removeHandler,
		clearHandler:   clearHandler,
		getHandler:     getHandler,
		countHandler:   countHandler,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		cartItems:      cartItems,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
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

func (h *CartHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	result := h.getHandler.Handle(query.GetCartQuery{})
	h.respondJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.addHandler.Handle(command.AddItemCommand{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.updateCartMetric()
	h.respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Data:    h.getHandler.Handle(query.GetCartQuery{}),
	})
}

// SetQuantity handles PUT /api/cart/items/{productId}
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := parseProductID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.setQtyHandler.Handle(command.SetQuantityCommand{
		ProductID: productID,
		Quantity:  req.Quantity,
	}); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrLineNotFound) {
			status = http.StatusNotFound
		}
		h.respondError(w, status, err.Error())
		return
	}

	h.updateCartMetric()
	h.respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    h.getHandler.Handle(query.GetCartQuery{}),
	})
}

// RemoveItem handles DELETE /api/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := parseProductID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := h.removeHandler.Handle(command.RemoveItemCommand{ProductID: productID}); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.updateCartMetric()
	h.respondJSON(w, http.StatusOK, Response{Success: true, Message: "Item removed"})
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.clearHandler.Handle(command.ClearCartCommand{}); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.updateCartMetric()
	h.respondJSON(w, http.StatusOK, Response{Success: true, Message: "Cart cleared"})
}

// RegisterRoutes registers cart routes on the router
func (h *CartHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/cart", h.metricsMiddleware("/api/cart", h.GetCart)).Methods("GET")
	router.HandleFunc("/api/cart", h.metricsMiddleware("/api/cart", h.ClearCart)).Methods("DELETE")
	router.HandleFunc("/api/cart/items", h.metricsMiddleware("/api/cart/items", h.AddItem)).Methods("POST")
	router.HandleFunc("/api/cart/items/{productId}", h.metricsMiddleware("/api/cart/items/{productId}", h.SetQuantity)).Methods("PUT")
	router.HandleFunc("/api/cart/items/{productId}", h.metricsMiddleware("/api/cart/items/{productId}", h.RemoveItem)).Methods("DELETE")
}

func (h *CartHandler) updateCartMetric() {
	h.cartItems.Set(float64(h.countHandler.Handle(query.CountItemsQuery{})))
}

func parseProductID(r *http.Request) (uint, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["productId"], 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (h *CartHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *CartHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, Response{Success: false, Error: message})
}
