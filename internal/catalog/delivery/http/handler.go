package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/storefront/internal/catalog/usecase/command"
	"github.com/tair/storefront/internal/catalog/usecase/query"
	sessionhttp "github.com/tair/storefront/internal/session/delivery/http"
)

// CatalogHandler handles HTTP requests for the product catalog
type CatalogHandler struct {
	// Command handlers
	createHandler *command.CreateProductHandler
	updateHandler *command.UpdateProductHandler
	deleteHandler *command.DeleteProductHandler

	// Query handlers
	getHandler  *query.GetProductHandler
	listHandler *query.ListProductsHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	searchCounter  prometheus.Counter
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(
	createHandler *command.CreateProductHandler,
	updateHandler *command.UpdateProductHandler,
	deleteHandler *command.DeleteProductHandler,
	getHandler *query.GetProductHandler,
	listHandler *query.ListProductsHandler,
) *CatalogHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_requests_total",
			Help: "Total number of requests to the catalog endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_catalog_request_duration_seconds",
			Help:    "Duration of catalog requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	searchCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_catalog_searches_total",
			Help: "Total number of catalog searches",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(searchCounter)

	return &CatalogHandler{
		createHandler:  createHandler,
		updateHandler:  updateHandler,
		deleteHandler:  deleteHandler,
		getHandler:     getHandler,
		listHandler:    listHandler,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		searchCounter:  searchCounter,
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

func (h *CatalogHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// ListProducts handles GET /api/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	search := r.URL.Query().Get("search")

	if search != "" {
		h.searchCounter.Inc()
	}

	products, err := h.listHandler.Handle(query.ListProductsQuery{
		Limit:  limit,
		Offset: offset,
		Search: search,
	})
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"products": products,
			"count":    len(products),
			"search":   search,
		},
	})
}

// GetProduct handles GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	product, err := h.getHandler.Handle(query.GetProductQuery{ID: id})
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, Response{Success: true, Data: product})
}

// CreateProduct handles POST /api/products (admin only)
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
		Category    string  `json:"category"`
		SKU         string  `json:"sku"`
		ImageURL    string  `json:"image_url"`
		IsActive    *bool   `json:"is_active"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product, err := h.createHandler.Handle(command.CreateProductCommand{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		SKU:         req.SKU,
		ImageURL:    req.ImageURL,
		IsActive:    isActive,
	})
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Product created",
		Data:    product,
	})
}

// UpdateProduct handles PUT /api/products/{id} (admin only)
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
		Category    string  `json:"category"`
		ImageURL    string  `json:"image_url"`
		IsActive    bool    `json:"is_active"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.updateHandler.Handle(command.UpdateProductCommand{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product updated",
		Data:    product,
	})
}

// DeleteProduct handles DELETE /api/products/{id} (admin only)
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := h.deleteHandler.Handle(command.DeleteProductCommand{ID: id}); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, Response{Success: true, Message: "Product deleted"})
}

// RegisterRoutes registers catalog routes on the router
func (h *CatalogHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/products", h.metricsMiddleware("/api/products", h.ListProducts)).Methods("GET")
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", h.GetProduct)).Methods("GET")

	// Admin only
	router.HandleFunc("/api/products", h.metricsMiddleware("/api/products", sessionhttp.AdminMiddleware(h.CreateProduct))).Methods("POST")
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", sessionhttp.AdminMiddleware(h.UpdateProduct))).Methods("PUT")
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", sessionhttp.AdminMiddleware(h.DeleteProduct))).Methods("DELETE")
}

func parseID(r *http.Request) (uint, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (h *CatalogHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *CatalogHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, Response{Success: false, Error: message})
}
