package handlers

import (
	"errors"
	"log"

	"github.com/DeusGroup/SalesLeaderboard/middleware"
	"github.com/DeusGroup/SalesLeaderboard/models"
	"github.com/DeusGroup/SalesLeaderboard/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"
)

// SetupAuthRoutes registers the admin session endpoints: login, logout and
// the current-admin probe used by the dashboard.
func SetupAuthRoutes(app *fiber.App, sessions *session.Store, authService *services.AuthService) {
	app.Post("/api/login", func(c *fiber.Ctx) error {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid login payload"})
		}

		admin, err := authService.Authenticate(body.Username, body.Password)
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "login failed", "details": err.Error(),
			})
		}

		sess, err := sessions.Get(c)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open session"})
		}
		sess.Set(middleware.AdminIDKey, admin.ID)
		if err := sess.Save(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save session"})
		}

		log.Printf("[AUTH] Admin %q logged in", admin.Username)
		return c.JSON(admin)
	})

	app.Post("/api/logout", func(c *fiber.Ctx) error {
		sess, err := sessions.Get(c)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open session"})
		}
		if err := sess.Destroy(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to destroy session"})
		}
		return c.SendStatus(fiber.StatusOK)
	})

	app.Get("/api/admin", middleware.RequireAdmin(sessions), func(c *fiber.Ctx) error {
		adminID := c.Locals(middleware.AdminIDKey).(uint)
		if authService.DB == nil {
			return c.JSON(fiber.Map{"id": adminID})
		}
		var admin models.Admin
		if err := authService.DB.First(&admin, "id = ?", adminID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load admin", "details": err.Error(),
			})
		}
		return c.JSON(admin)
	})
}
