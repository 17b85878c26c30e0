package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/storefront/internal/favorites/usecase/command"
	"github.com/tair/storefront/internal/favorites/usecase/query"
)

// FavoritesHandler handles HTTP requests for favorites
type FavoritesHandler struct {
	toggleHandler *command.ToggleFavoriteHandler
	listHandler   *query.ListFavoritesHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	favoritesCount prometheus.Gauge
}

// NewFavoritesHandler creates a new favorites handler
func NewFavoritesHandler(
	toggleHandler *command.ToggleFavoriteHandler,
	listHandler *query.ListFavoritesHandler,
) *FavoritesHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_favorites_requests_total",
			Help: "Total number of requests to the favorites endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_favorites_request_duration_seconds",
			Help:    "Duration of favorites requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	favoritesCount := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_favorites_count",
			Help: "Current number of favorited products",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(favoritesCount)

	return &FavoritesHandler{
		toggleHandler:  toggleHandler,
		listHandler:    listHandler,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		favoritesCount: favoritesCount,
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

func (h *FavoritesHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// ListFavorites handles GET /api/favorites
func (h *FavoritesHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	result := h.listHandler.Handle(query.ListFavoritesQuery{})
	h.respondJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

// ToggleFavorite handles POST /api/favorites/toggle
func (h *FavoritesHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID uint    `json:"product_id"`
		Name      string  `json:"name"`
		Price     float64 `json:"price"`
		ImageURL  string  `json:"image_url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	favorited, err := h.toggleHandler.Handle(command.ToggleFavoriteCommand{
		ProductID: req.ProductID,
		Name:      req.Name,
		Price:     req.Price,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := h.listHandler.Handle(query.ListFavoritesQuery{})
	h.favoritesCount.Set(float64(result.Count))

	h.respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"favorited": favorited,
			"count":     result.Count,
		},
	})
}

// RegisterRoutes registers favorites routes on the router
func (h *FavoritesHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/favorites", h.metricsMiddleware("/api/favorites", h.ListFavorites)).Methods("GET")
	router.HandleFunc("/api/favorites/toggle", h.metricsMiddleware("/api/favorites/toggle", h.ToggleFavorite)).Methods("POST")
}

func (h *FavoritesHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *FavoritesHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, Response{Success: false, Error: message})
}
