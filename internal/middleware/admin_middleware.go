package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// AdminMiddleware lets only tenant admins through. It must run after AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c.UserContext())
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		if !identity.IsTenantAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied: tenant admin role required",
			})
		}

		return c.Next()
	}
}
