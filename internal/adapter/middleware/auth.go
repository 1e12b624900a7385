package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireAdmin rejects requests whose session has not passed admin login.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CurrentSession(c).Admin {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": "Admin login required",
				"code":  "admin_required",
			})
		}
		return c.Next()
	}
}

// RequireCustomer rejects requests without a signed-in customer.
func RequireCustomer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentSession(c).CustomerID == 0 {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": "Login required",
				"code":  "login_required",
			})
		}
		return c.Next()
	}
}
