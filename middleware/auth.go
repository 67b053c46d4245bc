package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// AdminIDKey is the session key holding the authenticated admin's id.
const AdminIDKey = "admin_id"

// RequireAdmin gates mutating routes behind an authenticated admin session.
// The public leaderboard routes are registered outside of it.
func RequireAdmin(sessions *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := sessions.Get(c)
		if err != nil {
			log.Printf("[AUTH] Failed to load session for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load session",
			})
		}

		adminID, ok := sess.Get(AdminIDKey).(uint)
		if !ok || adminID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}

		c.Locals(AdminIDKey, adminID)
		return c.Next()
	}
}
