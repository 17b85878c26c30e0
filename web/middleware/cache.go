package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tair/storefront/pkg/logger"
)

// CatalogCacheMiddleware caches catalog page responses in Redis. Only GET
// requests under the given prefix are cached; session-dependent pages must
// never pass through here.
func CatalogCacheMiddleware(redisClient *redis.Client, pathPrefix string, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if redisClient == nil || c.Method() != fiber.MethodGet {
			return c.Next()
		}
		if len(c.Path()) < len(pathPrefix) || c.Path()[:len(pathPrefix)] != pathPrefix {
			return c.Next()
		}

		cacheKey := catalogCacheKey(c)

		cached, err := redisClient.Get(c.UserContext(), cacheKey).Bytes()
		if err == nil && len(cached) > 0 {
			c.Set("X-Cache", "HIT")
			c.Set("Content-Type", "application/json")
			return c.Send(cached)
		}

		err = c.Next()

		if c.Response().StatusCode() == fiber.StatusOK {
			body := c.Response().Body()
			if setErr := redisClient.Set(c.UserContext(), cacheKey, body, ttl).Err(); setErr != nil {
				logger.Logger.Warn().
					Err(setErr).
					Str("cache_key", cacheKey).
					Msg("Failed to cache catalog page")
			}
			c.Set("X-Cache", "MISS")
		}

		return err
	}
}

// catalogCacheKey hashes path and query so search terms get distinct entries.
func catalogCacheKey(c *fiber.Ctx) string {
	raw := fmt.Sprintf("%s?%s", c.Path(), c.Request().URI().QueryString())
	hash := sha256.Sum256([]byte(raw))
	return "webcache:" + hex.EncodeToString(hash[:])
}
