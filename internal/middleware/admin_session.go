package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/service"
)

// AdminSession guards the dashboard pages. Browsers without a valid session
// cookie are redirected to the login page.
func AdminSession(dashboard service.DashboardService, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookieName)
		session, err := dashboard.Session(c.UserContext(), token)
		if err != nil {
			return c.Redirect("/dashboard/login", fiber.StatusFound)
		}

		c.Locals("admin_username", session.Username)
		c.Locals("admin_token", token)

		return c.Next()
	}
}
