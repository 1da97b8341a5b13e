package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/dto"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/middleware"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/service"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/utils"
)

// AuthHandler exposes account and session endpoints.
type AuthHandler struct {
	service    service.AuthService
	validator  *validator.Validate
	cookieName string
	logger     zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, validator *validator.Validate, cookieName string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:    service,
		validator:  validator,
		cookieName: cookieName,
		logger:     logger.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterPublic wires the endpoints that need no live session. Logout sits
// here because it must succeed for tokens whose session is already gone.
func (h *AuthHandler) RegisterPublic(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
	router.Post("/logout", h.logout)
}

// RegisterProtected wires the endpoints behind session auth.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Get("/verify", h.verify)
	router.Get("/profile", h.profile)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Ungültiger Request-Body")
	}

	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Register(c.UserContext(), payload, sessionMeta(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Registrierung erfolgreich", response)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Ungültiger Request-Body")
	}

	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Login(c.UserContext(), payload, sessionMeta(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Anmeldung erfolgreich", response)
}

// logout is idempotent: an already removed or expired session still yields a
// success response. Only a request without any token is rejected.
func (h *AuthHandler) logout(c *fiber.Ctx) error {
	token := middleware.ExtractSessionToken(c, h.cookieName)
	if token == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "Nicht authentifiziert")
	}

	if err := h.service.Logout(c.UserContext(), token); err != nil && !errors.Is(err, service.ErrSessionInvalid) {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Abmeldung erfolgreich", nil)
}

func (h *AuthHandler) verify(c *fiber.Ctx) error {
	response, err := h.service.Verify(c.UserContext(), sessionTokenFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Session gültig", response)
}

func (h *AuthHandler) profile(c *fiber.Ctx) error {
	response, err := h.service.Profile(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Profil geladen", response)
}

func (h *AuthHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUserConflict):
		return utils.SendError(c, fiber.StatusConflict, "Benutzername oder E-Mail bereits vergeben")
	case errors.Is(err, service.ErrWeakPassword):
		return utils.SendError(c, fiber.StatusBadRequest, "Passwort ist zu kurz")
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.SendError(c, fiber.StatusUnauthorized, "Ungültige Anmeldedaten")
	case errors.Is(err, service.ErrSessionInvalid):
		return utils.SendError(c, fiber.StatusUnauthorized, "Session ungültig oder abgelaufen")
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "Benutzer nicht gefunden")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("auth operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "Interner Serverfehler")
	}
}

func sessionMeta(c *fiber.Ctx) service.SessionContext {
	return service.SessionContext{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}
