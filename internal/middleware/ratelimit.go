package middleware

import (
	"time"

	"charity-run-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// LoginRateLimiter throttles admin login attempts per client IP. In-memory
// only; counters reset on process restart.
func LoginRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.Error(c, "Too many login attempts, try again later", fiber.StatusTooManyRequests)
		},
	})
}
