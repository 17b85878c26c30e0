package config

import (
	"os"
	"time"
)

// WebConfig holds the storefront web front configuration
type WebConfig struct {
	Port          string
	RedisAddr     string
	RedisPassword string
	CatalogTTL    time.Duration
}

// LoadConfig loads the web front configuration
func LoadConfig() *WebConfig {
	return &WebConfig{
		Port:          getEnv("WEB_PORT", "8000"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CatalogTTL:    time.Minute,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
