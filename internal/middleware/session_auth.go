package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/service"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/utils"
)

// SessionAuth resolves the bearer token or session cookie to a user and
// stores the identity in request locals.
func SessionAuth(auth service.AuthService, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ExtractSessionToken(c, cookieName)
		if token == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "Nicht authentifiziert")
		}

		identity, err := auth.Verify(c.UserContext(), token)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "Session ungültig oder abgelaufen")
		}

		c.Locals("user_id", identity.UserID)
		c.Locals("username", identity.Username)
		c.Locals("user_role", identity.Role)
		c.Locals("session_token", token)

		return c.Next()
	}
}

// RequireRole rejects authenticated callers whose role does not match.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current, _ := c.Locals("user_role").(string)
		if current != role {
			return utils.SendError(c, fiber.StatusForbidden, "Keine Berechtigung für diese Aktion")
		}
		return c.Next()
	}
}

// ExtractSessionToken reads the session token from the Authorization header
// or, failing that, the session cookie. Handlers mounted outside SessionAuth
// use it when they accept a token without requiring a live session.
func ExtractSessionToken(c *fiber.Ctx, cookieName string) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return strings.TrimSpace(c.Cookies(cookieName))
}
