package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/dto"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/models"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/service"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/utils"
)

// SubmissionHandler exposes submission endpoints.
type SubmissionHandler struct {
	service   service.SubmissionService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, validator *validator.Validate, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	if userRoleFromContext(c) != models.RoleStudent {
		return utils.SendError(c, fiber.StatusForbidden, "Nur Schüler können Lösungen einreichen")
	}

	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Ungültiger Request-Body")
	}

	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Submit(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Abgabe gespeichert", response)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	taskID, err := parseQueryUint(c, "task_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Ungültige Aufgaben-ID")
	}

	userID := userIDFromContext(c)
	if userRoleFromContext(c) == models.RoleTeacher {
		submissions, err := h.service.ListForTeacher(c.UserContext(), userID, taskID)
		if err != nil {
			return h.handleError(c, err)
		}
		return utils.SendSuccess(c, "Abgaben geladen", submissions)
	}

	submissions, err := h.service.ListForStudent(c.UserContext(), userID, taskID)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "Abgaben geladen", submissions)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "Aufgabe nicht gefunden")
	case errors.Is(err, service.ErrTaskForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "Keine Berechtigung für diese Aufgabe")
	case errors.Is(err, service.ErrNotAssigned):
		return utils.SendError(c, fiber.StatusForbidden, "Aufgabe nicht zugewiesen")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("submission operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "Interner Serverfehler")
	}
}
