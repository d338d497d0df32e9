package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postgen/internal/ratelimit"
	"github.com/maheshrc27/postgen/internal/telemetry"
)

// RateLimit throttles callers by user id, or by client IP for unowned
// requests. A limiter error lets the request through.
func RateLimit(limiter ratelimit.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}

		key := "ip:" + c.IP()
		if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
			key = "user:" + userID
		}

		allowed, err := limiter.Allow(c.UserContext(), key)
		if err != nil {
			slog.Error("rate limiter unavailable", "error", err)
			return c.Next()
		}
		if !allowed {
			telemetry.RateLimitRejects.Inc()
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded, try again later",
			})
		}
		return c.Next()
	}
}
