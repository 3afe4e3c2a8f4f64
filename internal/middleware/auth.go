package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Aryan192003/Chatify-backend/internal/auth"
)

// Authenticate validates the session cookie and stashes the user identity
// in Locals. The same middleware guards the REST routes and the websocket
// upgrade.
func Authenticate(tokens *auth.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(auth.CookieName)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "please login to access this route",
			})
		}
		userID, err := tokens.Verify(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "please login to access this route",
			})
		}
		c.Locals("userID", userID)
		return c.Next()
	}
}
