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

// TaskHandler exposes task endpoints for teachers and students.
type TaskHandler struct {
	service   service.TaskService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewTaskHandler constructs the handler.
func NewTaskHandler(service service.TaskService, validator *validator.Validate, logger zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "task_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group. Mutating
// endpoints sit behind the teacher-only middleware.
func (h *TaskHandler) Register(router fiber.Router, teacherOnly fiber.Handler) {
	router.Get("", h.list)
	router.Post("", teacherOnly, h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", teacherOnly, h.update)
	router.Delete("/:id", teacherOnly, h.delete)
	router.Post("/:id/assign", teacherOnly, h.assign)
}

// RegisterShared wires the public share-code lookup.
func (h *TaskHandler) RegisterShared(router fiber.Router) {
	router.Get("/shared/:code", h.shared)
}

func (h *TaskHandler) list(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userRoleFromContext(c) == models.RoleTeacher {
		tasks, err := h.service.ListForTeacher(c.UserContext(), userID)
		if err != nil {
			return h.handleError(c, err)
		}
		return utils.SendSuccess(c, "Aufgaben geladen", tasks)
	}

	tasks, err := h.service.ListForStudent(c.UserContext(), userID)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "Aufgaben geladen", tasks)
}

func (h *TaskHandler) get(c *fiber.Ctx) error {
	taskID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Ungültige Aufgaben-ID")
	}

	userID := userIDFromContext(c)
	if userRoleFromContext(c) == models.RoleTeacher {
		task, err := h.service.GetForTeacher(c.UserContext(), taskID, userID)
		if err != nil {
			return h.handleError(c, err)
		}
		return utils.SendSuccess(c, "Aufgabe geladen", task)
	}

	task, err := h.service.GetForStudent(c.UserContext(), taskID, userID)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "Aufgabe geladen", task)
}

func (h *TaskHandler) create(c *fiber.Ctx) error {
	var payload dto.TaskCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Ungültiger Request-Body")
	}

	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Create(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Aufgabe erstellt", response)
}

func (h *TaskHandler) update(c *fiber.Ctx) error {
	taskID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Ungültige Aufgaben-ID")
	}

	var payload dto.TaskUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Ungültiger Request-Body")
	}

	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Update(c.UserContext(), taskID, userIDFromContext(c), payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Aufgabe aktualisiert", nil)
}

func (h *TaskHandler) delete(c *fiber.Ctx) error {
	taskID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Ungültige Aufgaben-ID")
	}

	if err := h.service.Delete(c.UserContext(), taskID, userIDFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Aufgabe gelöscht", nil)
}

func (h *TaskHandler) assign(c *fiber.Ctx) error {
	taskID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Ungültige Aufgaben-ID")
	}

	var payload dto.AssignRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Ungültiger Request-Body")
	}

	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Assign(c.UserContext(), taskID, userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Aufgabe zugewiesen", response)
}

func (h *TaskHandler) shared(c *fiber.Ctx) error {
	task, err := h.service.GetShared(c.UserContext(), c.Params("code"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Aufgabe geladen", task)
}

func (h *TaskHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "Aufgabe nicht gefunden")
	case errors.Is(err, service.ErrTaskForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "Keine Berechtigung für diese Aufgabe")
	case errors.Is(err, service.ErrNotAssigned):
		return utils.SendError(c, fiber.StatusForbidden, "Aufgabe nicht zugewiesen")
	case errors.Is(err, service.ErrNothingToUpdate):
		return utils.SendError(c, fiber.StatusBadRequest, "Keine Felder zum Aktualisieren")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("task operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "Interner Serverfehler")
	}
}
