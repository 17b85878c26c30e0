package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	catalogrepo "github.com/tair/storefront/internal/catalog/repository"
	catalogcommand "github.com/tair/storefront/internal/catalog/usecase/command"
	"github.com/tair/storefront/kafka"
	"github.com/tair/storefront/pkg/database"
	"github.com/tair/storefront/pkg/logger"
	"github.com/tair/storefront/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "storefront-fulfillment")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Msg("Starting fulfillment worker")

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

	catalogRepo := catalogrepo.NewGormProductRepositoryWithTracing(db)
	adjustStock := catalogcommand.NewAdjustStockHandler(catalogRepo)

	// Kafka consumer for order placed events
	brokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	groupID := getEnv("KAFKA_GROUP_ID", "fulfillment")

	consumer, err := kafka.NewConsumer(brokers, groupID, []string{kafka.TopicOrderPlaced})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
	}
	defer consumer.Close()

	consumer.RegisterHandler(kafka.EventTypeOrderPlaced, func(ctx context.Context, event kafka.OrderPlacedEvent) error {
		for _, line := range event.Lines {
			if err := adjustStock.Handle(catalogcommand.AdjustStockCommand{
				ProductID: line.ProductID,
				Delta:     -line.Quantity,
			}); err != nil {
				// Keep going; one bad line must not block the rest of the
				// order.
				logger.Error(ctx).
					Err(err).
					Str("order_id", event.OrderID).
					Uint("product_id", line.ProductID).
					Msg("Failed to decrement stock")
			}
		}

		logger.Info(ctx).
			Str("order_id", event.OrderID).
			Int("lines", len(event.Lines)).
			Int("item_count", event.ItemCount).
			Msg("Order fulfilled")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start consumer")
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down fulfillment worker...")
	cancel()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
