package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/tair/storefront/docs"
	catalogHTTP "github.com/tair/storefront/internal/catalog/delivery/http"
	catalogrepo "github.com/tair/storefront/internal/catalog/repository"
	catalogcommand "github.com/tair/storefront/internal/catalog/usecase/command"
	catalogquery "github.com/tair/storefront/internal/catalog/usecase/query"
	cartHTTP "github.com/tair/storefront/internal/cart/delivery/http"
	cartrepo "github.com/tair/storefront/internal/cart/repository"
	cartcommand "github.com/tair/storefront/internal/cart/usecase/command"
	cartquery "github.com/tair/storefront/internal/cart/usecase/query"
	"github.com/tair/storefront/internal/checkout"
	checkoutHTTP "github.com/tair/storefront/internal/checkout/delivery/http"
	favoritesHTTP "github.com/tair/storefront/internal/favorites/delivery/http"
	favoritesrepo "github.com/tair/storefront/internal/favorites/repository"
	favoritescommand "github.com/tair/storefront/internal/favorites/usecase/command"
	favoritesquery "github.com/tair/storefront/internal/favorites/usecase/query"
	"github.com/tair/storefront/internal/session"
	sessionHTTP "github.com/tair/storefront/internal/session/delivery/http"
	sessionrepo "github.com/tair/storefront/internal/session/repository"
	sessioncommand "github.com/tair/storefront/internal/session/usecase/command"
	sessionquery "github.com/tair/storefront/internal/session/usecase/query"
	storagedomain "github.com/tair/storefront/internal/storage/domain"
	storagerepo "github.com/tair/storefront/internal/storage/repository"
	"github.com/tair/storefront/kafka"
	"github.com/tair/storefront/pkg/database"
	"github.com/tair/storefront/pkg/logger"
	"github.com/tair/storefront/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "storefront-api")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting storefront API")

	// Initialize tracer
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Load database configuration
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "storefrontdb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Connect to database
	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	accountRepo := sessionrepo.NewGormAccountRepository(db)
	if err := accountRepo.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run account migrations")
	}

	catalogRepo := catalogrepo.NewGormProductRepositoryWithTracing(db)
	if err := catalogRepo.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run catalog migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Shared state store: Redis when reachable, in-memory otherwise. The
	// in-memory fallback keeps a single instance functional but loses
	// cross-instance session and cart sharing.
	ctx := context.Background()
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})

	var store storagedomain.Store
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn().
			Err(err).
			Str("redis_addr", redisAddr).
			Msg("Failed to connect to Redis - falling back to in-memory state")
		redisClient = nil
		store = storagerepo.NewMemoryStore()
	} else {
		logger.Logger.Info().
			Str("redis_addr", redisAddr).
			Msg("Connected to Redis for shared state")
		store = storagerepo.NewRedisStore(redisClient, getEnv("STATE_PREFIX", "storefront"))
	}
	defer store.Close()

	// Session manager rehydrates asynchronously; requests arriving before it
	// resolves see the loading phase.
	manager := session.NewManager(store)
	manager.Bootstrap(ctx)
	defer manager.Close()

	// Cart and favorites stores hydrate synchronously
	cartStore := cartrepo.NewSlotStore(ctx, store)
	defer cartStore.Close()

	favoritesStore := favoritesrepo.NewSlotStore(ctx, store)
	defer favoritesStore.Close()

	// Kafka publisher for order placed events (optional)
	var publisher *kafka.Publisher
	brokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	publisher, err = kafka.NewPublisher(brokers)
	if err != nil {
		logger.Logger.Warn().
			Err(err).
			Strs("brokers", brokers).
			Msg("Kafka unavailable - order events will not be published")
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Checkout machine over the cart. The nil check matters: a typed nil
	// publisher must not end up inside the interface.
	var orderPublisher checkout.OrderPublisher
	if publisher != nil {
		orderPublisher = publisher
	}
	machine := checkout.NewMachine(cartStore, orderPublisher)

	// Session handlers
	sessionHandler := sessionHTTP.NewSessionHandler(
		sessioncommand.NewSignInHandler(accountRepo, manager),
		sessioncommand.NewSignOutHandler(manager),
		sessioncommand.NewRegisterAccountHandler(accountRepo),
		sessionquery.NewGetSessionHandler(manager),
	)

	// Cart handlers
	cartHandler := cartHTTP.NewCartHandler(
		cartcommand.NewAddItemHandler(cartStore),
		cartcommand.NewSetQuantityHandler(cartStore),
		cartcommand.NewRemoveItemHandler(cartStore),
		cartcommand.NewClearCartHandler(cartStore),
		cartquery.NewGetCartHandler(cartStore),
		cartquery.NewCountItemsHandler(cartStore),
	)

	// Favorites handlers
	favoritesHandler := favoritesHTTP.NewFavoritesHandler(
		favoritescommand.NewToggleFavoriteHandler(favoritesStore),
		favoritesquery.NewListFavoritesHandler(favoritesStore),
	)

	// Catalog handlers
	catalogHandler := catalogHTTP.NewCatalogHandler(
		catalogcommand.NewCreateProductHandler(catalogRepo),
		catalogcommand.NewUpdateProductHandler(catalogRepo),
		catalogcommand.NewDeleteProductHandler(catalogRepo),
		catalogquery.NewGetProductHandler(catalogRepo),
		catalogquery.NewListProductsHandler(catalogRepo),
	)

	// Checkout handler
	checkoutHandler := checkoutHTTP.NewCheckoutHandler(machine)

	// Start HTTP server
	httpPort := getEnv("HTTP_PORT", "8081")
	go startHTTPServer(httpPort, sqlDB, redisClient,
		sessionHandler, cartHandler, favoritesHandler, catalogHandler, checkoutHandler)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
}

func startHTTPServer(
	port string,
	db *sql.DB,
	redisClient *redis.Client,
	sessionHandler *sessionHTTP.SessionHandler,
	cartHandler *cartHTTP.CartHandler,
	favoritesHandler *favoritesHTTP.FavoritesHandler,
	catalogHandler *catalogHTTP.CatalogHandler,
	checkoutHandler *checkoutHTTP.CheckoutHandler,
) {
	// Setup router
	router := mux.NewRouter()

	// Shared middleware chain (logging, tracing)
	sessionHTTP.RegisterMiddlewares(router)

	// Register routes
	sessionHandler.RegisterRoutes(router)
	cartHandler.RegisterRoutes(router)
	favoritesHandler.RegisterRoutes(router)
	catalogHandler.RegisterRoutes(router)
	checkoutHandler.RegisterRoutes(router)

	// Swagger UI
	catalogHTTP.RegisterSwaggerDocs(router, httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Health check endpoint
	registerHealthCheck(router, db, redisClient)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	logger.Logger.Info().
		Str("port", port).
		Str("metrics_endpoint", "/metrics").
		Str("swagger_endpoint", "/swagger/index.html").
		Msg("HTTP server started")

	if err := http.ListenAndServe(":"+port, c.Handler(router)); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

// registerHealthCheck exposes a health endpoint covering the backing stores
func registerHealthCheck(router *mux.Router, db *sql.DB, redisClient *redis.Client) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := map[string]string{}

		if err := db.PingContext(ctx); err != nil {
			checks["postgres"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["postgres"] = "healthy"
		}

		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				checks["redis"] = err.Error()
				status = http.StatusServiceUnavailable
			} else {
				checks["redis"] = "healthy"
			}
		} else {
			checks["redis"] = "disabled (in-memory state)"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": status == http.StatusOK,
			"checks":  checks,
		})
	}).Methods("GET")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
