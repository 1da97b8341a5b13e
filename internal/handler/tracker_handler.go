package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/dto"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/service"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/utils"
)

// TrackerHandler exposes the anonymous exercise tracking endpoints.
type TrackerHandler struct {
	service   service.TrackerService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewTrackerHandler constructs the handler.
func NewTrackerHandler(service service.TrackerService, validator *validator.Validate, logger zerolog.Logger) *TrackerHandler {
	return &TrackerHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "tracker_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *TrackerHandler) Register(router fiber.Router) {
	router.Post("/students", h.registerStudent)
	router.Get("/students/:id", h.studentOverview)
	router.Post("/starts", h.startExercise)
	router.Post("/completions", h.completeExercise)
}

func (h *TrackerHandler) registerStudent(c *fiber.Ctx) error {
	var payload dto.RegisterStudentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Cuerpo de solicitud inválido")
	}

	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.RegisterStudent(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Estudiante registrado", response)
}

func (h *TrackerHandler) studentOverview(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "ID de estudiante inválido")
	}

	response, err := h.service.StudentOverview(c.UserContext(), studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Resumen cargado", response)
}

func (h *TrackerHandler) startExercise(c *fiber.Ctx) error {
	var payload dto.StartExerciseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Cuerpo de solicitud inválido")
	}

	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.StartExercise(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Ejercicio iniciado", response)
}

func (h *TrackerHandler) completeExercise(c *fiber.Ctx) error {
	var payload dto.CompleteExerciseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Cuerpo de solicitud inválido")
	}

	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.CompleteExercise(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Ejercicio completado", response)
}

func (h *TrackerHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrStudentNameEmpty):
		return utils.SendError(c, fiber.StatusBadRequest, "El nombre no puede estar vacío")
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "Estudiante no encontrado")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("tracker operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "Error interno del servidor")
	}
}
