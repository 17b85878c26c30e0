package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	catalogrepo "github.com/tair/storefront/internal/catalog/repository"
	catalogquery "github.com/tair/storefront/internal/catalog/usecase/query"
	cartrepo "github.com/tair/storefront/internal/cart/repository"
	"github.com/tair/storefront/internal/checkout"
	favoritesrepo "github.com/tair/storefront/internal/favorites/repository"
	favoritesquery "github.com/tair/storefront/internal/favorites/usecase/query"
	"github.com/tair/storefront/internal/session"
	sessionrepo "github.com/tair/storefront/internal/session/repository"
	sessioncommand "github.com/tair/storefront/internal/session/usecase/command"
	storagedomain "github.com/tair/storefront/internal/storage/domain"
	storagerepo "github.com/tair/storefront/internal/storage/repository"
	"github.com/tair/storefront/pkg/database"
	"github.com/tair/storefront/pkg/logger"
	"github.com/tair/storefront/pkg/tracing"
	"github.com/tair/storefront/web/config"
	"github.com/tair/storefront/web/health"
	"github.com/tair/storefront/web/middleware"
	"github.com/tair/storefront/web/routes"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "storefront-web")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Msg("Starting storefront web front")

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

	cfg := config.LoadConfig()

	// Database for accounts and catalog
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "storefrontdb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Shared state store
	ctx := context.Background()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	var store storagedomain.Store
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn().
			Err(err).
			Str("redis_addr", cfg.RedisAddr).
			Msg("Failed to connect to Redis - falling back to in-memory state")
		redisClient = nil
		store = storagerepo.NewMemoryStore()
	} else {
		store = storagerepo.NewRedisStore(redisClient, getEnv("STATE_PREFIX", "storefront"))
	}
	defer store.Close()

	// Session, cart and favorites share the state slots with the API service
	manager := session.NewManager(store)
	manager.Bootstrap(ctx)
	defer manager.Close()

	cartStore := cartrepo.NewSlotStore(ctx, store)
	defer cartStore.Close()

	favoritesStore := favoritesrepo.NewSlotStore(ctx, store)
	defer favoritesStore.Close()

	// The web front never completes payments; the machine here only routes
	// and guards steps, so it carries no publisher.
	machine := checkout.NewMachine(cartStore, nil)

	accountRepo := sessionrepo.NewGormAccountRepository(db)
	catalogRepo := catalogrepo.NewGormProductRepository(db)

	deps := routes.Deps{
		Manager:       manager,
		Machine:       machine,
		SignIn:        sessioncommand.NewSignInHandler(accountRepo, manager),
		SignOut:       sessioncommand.NewSignOutHandler(manager),
		ListProducts:  catalogquery.NewListProductsHandler(catalogRepo),
		ListFavorites: favoritesquery.NewListFavoritesHandler(favoritesStore),
		Health:        health.NewHealthChecker(sqlDB, redisClient),
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Storefront Web",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	setupMiddleware(app, redisClient, cfg)
	routes.SetupRoutes(app, deps)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logger.Logger.Info().Str("addr", addr).Msg("Web front listening")

		if err := app.Listen(addr); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down web front...")

	if err := app.Shutdown(); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
}

// setupMiddleware configures global middleware
func setupMiddleware(app *fiber.App, redisClient *redis.Client, cfg *config.WebConfig) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Request ID first, then tracing, then logging so every log line can
	// carry both ids
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.StructuredLoggingMiddleware())

	if redisClient != nil {
		app.Use(middleware.CatalogCacheMiddleware(redisClient, "/shop/products", cfg.CatalogTTL))
		app.Use(middleware.GlobalRateLimiter(redisClient))
	} else {
		logger.Logger.Warn().Msg("Catalog caching and rate limiting disabled (Redis not available)")
	}

	allowOrigins := getEnv("CORS_ALLOWED_ORIGINS", "*")
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,OPTIONS,HEAD",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-Id, traceparent, tracestate",
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":      err.Error(),
		"statusCode": code,
		"path":       c.Path(),
		"requestId":  c.Get("X-Request-Id"),
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
