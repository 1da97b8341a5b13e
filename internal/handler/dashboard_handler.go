package handler

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/dto"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/service"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/utils"
)

// DashboardHandler serves the admin dashboard pages and session endpoints.
type DashboardHandler struct {
	service    service.DashboardService
	validator  *validator.Validate
	cookieName string
	logger     zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service service.DashboardService, validator *validator.Validate, cookieName string, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:    service,
		validator:  validator,
		cookieName: cookieName,
		logger:     logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// RegisterPublic wires the login page and session endpoints.
func (h *DashboardHandler) RegisterPublic(router fiber.Router) {
	router.Get("/login", h.loginPage)
	router.Post("/login", h.login)
	router.Post("/logout", h.logout)
	router.Get("/session", h.session)
}

// RegisterProtected wires the pages behind the admin session.
func (h *DashboardHandler) RegisterProtected(router fiber.Router) {
	router.Get("", h.dashboard)
}

func (h *DashboardHandler) loginPage(c *fiber.Ctx) error {
	if _, err := h.service.Session(c.UserContext(), c.Cookies(h.cookieName)); err == nil {
		return c.Redirect("/dashboard", fiber.StatusFound)
	}
	return c.Render("login", fiber.Map{"Error": ""})
}

func (h *DashboardHandler) login(c *fiber.Ctx) error {
	var payload dto.AdminLoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return h.loginFailure(c, "Solicitud inválida")
	}

	if err := h.validator.Struct(payload); err != nil {
		return h.loginFailure(c, "Usuario y contraseña son obligatorios")
	}

	token, expiresAt, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAdminCredentials) {
			return h.loginFailure(c, "Credenciales inválidas")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("admin login failed")
		return h.loginFailure(c, "Error interno del servidor")
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Expires:  expiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	if isFormRequest(c) {
		return c.Redirect("/dashboard", fiber.StatusFound)
	}
	return utils.SendSuccess(c, "Sesión iniciada", dto.AdminSessionResponse{
		Username:  payload.Username,
		ExpiresAt: expiresAt,
	})
}

func (h *DashboardHandler) logout(c *fiber.Ctx) error {
	if err := h.service.Logout(c.UserContext(), c.Cookies(h.cookieName)); err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("admin logout failed")
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Path:     "/",
	})

	if isFormRequest(c) {
		return c.Redirect("/dashboard/login", fiber.StatusFound)
	}
	return utils.SendSuccess(c, "Sesión cerrada", nil)
}

func (h *DashboardHandler) session(c *fiber.Ctx) error {
	response, err := h.service.Session(c.UserContext(), c.Cookies(h.cookieName))
	if err != nil {
		if errors.Is(err, service.ErrAdminSessionInvalid) {
			return utils.SendError(c, fiber.StatusUnauthorized, "Sesión inválida o expirada")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("admin session lookup failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "Error interno del servidor")
	}

	return utils.SendSuccess(c, "Sesión válida", response)
}

func (h *DashboardHandler) dashboard(c *fiber.Ctx) error {
	filter := dto.DashboardFilter{
		ExerciseID:  c.Query("ejercicio"),
		StudentName: c.Query("estudiante"),
		Level:       c.Query("nivel"),
		DateFrom:    c.Query("desde"),
		DateTo:      c.Query("hasta"),
	}

	data, err := h.service.Data(c.UserContext(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("dashboard aggregation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "Error interno del servidor")
	}

	return c.Render("dashboard", fiber.Map{
		"Admin": c.Locals("admin_username"),
		"Data":  data,
	})
}

func (h *DashboardHandler) loginFailure(c *fiber.Ctx, message string) error {
	if isFormRequest(c) {
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Error": message})
	}
	return utils.SendError(c, fiber.StatusUnauthorized, message)
}

func isFormRequest(c *fiber.Ctx) bool {
	return c.Is("form") || c.Is("multipart")
}
