package health

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/storefront/pkg/logger"
)

// ComponentHealth represents the health status of one backing component
type ComponentHealth struct {
	Name      string        `json:"name"`
	Status    string        `json:"status"` // healthy, unhealthy
	Latency   time.Duration `json:"latency_ms"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// WebHealth represents the overall web front health
type WebHealth struct {
	Service    string                     `json:"service"`
	Status     string                     `json:"status"` // healthy, degraded, unhealthy
	Components map[string]ComponentHealth `json:"components"`
	Uptime     time.Duration              `json:"uptime_seconds"`
}

// HealthChecker checks the web front's backing stores
type HealthChecker struct {
	db        *sql.DB
	redis     *redis.Client
	startTime time.Time
}

// NewHealthChecker creates a new health checker. Either dependency may be
// nil; it is then reported as unhealthy rather than crashing the probe.
func NewHealthChecker(db *sql.DB, redisClient *redis.Client) *HealthChecker {
	return &HealthChecker{
		db:        db,
		redis:     redisClient,
		startTime: time.Now(),
	}
}

// CheckDatabase pings the catalog and account database
func (h *HealthChecker) CheckDatabase(ctx context.Context) ComponentHealth {
	start := time.Now()
	result := ComponentHealth{Name: "postgres", Timestamp: time.Now()}

	if h.db == nil {
		result.Status = "unhealthy"
		result.Error = "database not configured"
		return result
	}

	if err := h.db.PingContext(ctx); err != nil {
		result.Status = "unhealthy"
		result.Error = err.Error()
	} else {
		result.Status = "healthy"
	}
	result.Latency = time.Since(start)
	return result
}

// CheckRedis pings the shared state store
func (h *HealthChecker) CheckRedis(ctx context.Context) ComponentHealth {
	start := time.Now()
	result := ComponentHealth{Name: "redis", Timestamp: time.Now()}

	if h.redis == nil {
		result.Status = "unhealthy"
		result.Error = "redis not configured"
		return result
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		result.Status = "unhealthy"
		result.Error = err.Error()
	} else {
		result.Status = "healthy"
	}
	result.Latency = time.Since(start)
	return result
}

// CheckAll checks all backing components concurrently
func (h *HealthChecker) CheckAll(ctx context.Context) WebHealth {
	components := make(map[string]ComponentHealth)
	var wg sync.WaitGroup
	var mu sync.Mutex

	checks := map[string]func(context.Context) ComponentHealth{
		"postgres": h.CheckDatabase,
		"redis":    h.CheckRedis,
	}

	for name, check := range checks {
		wg.Add(1)
		go func(n string, fn func(context.Context) ComponentHealth) {
			defer wg.Done()
			result := fn(ctx)

			mu.Lock()
			components[n] = result
			mu.Unlock()

			if result.Status != "healthy" {
				logger.Logger.Warn().
					Str("component", n).
					Str("error", result.Error).
					Msg("Component health check failed")
			}
		}(name, check)
	}

	wg.Wait()

	return WebHealth{
		Service:    "storefront-web",
		Status:     overallStatus(components),
		Components: components,
		Uptime:     time.Since(h.startTime),
	}
}

// QuickCheck performs a shallow liveness check
func (h *HealthChecker) QuickCheck() map[string]interface{} {
	return map[string]interface{}{
		"status":    "healthy",
		"service":   "storefront-web",
		"uptime":    time.Since(h.startTime).Seconds(),
		"timestamp": time.Now(),
	}
}

func overallStatus(components map[string]ComponentHealth) string {
	healthy := 0
	for _, c := range components {
		if c.Status == "healthy" {
			healthy++
		}
	}

	switch {
	case healthy == len(components):
		return "healthy"
	case healthy > 0:
		return "degraded"
	default:
		return "unhealthy"
	}
}
