package handlers

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "matifood/internal/log"
)

// RequireToken guards operational endpoints with a static bearer token. An
// empty token leaves the route open.
func RequireToken(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Next()
		}
		got, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			applog.Security(c, "access.denied.metrics", nil)
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.Next()
	}
}
