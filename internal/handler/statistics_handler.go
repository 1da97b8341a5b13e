package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/dto"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/service"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/utils"
)

// StatisticsHandler exposes the teacher reporting endpoints.
type StatisticsHandler struct {
	service service.StatisticsService
	logger  zerolog.Logger
}

// NewStatisticsHandler constructs the handler.
func NewStatisticsHandler(service service.StatisticsService, logger zerolog.Logger) *StatisticsHandler {
	return &StatisticsHandler{
		service: service,
		logger:  logger.With().Str("component", "statistics_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *StatisticsHandler) Register(router fiber.Router) {
	router.Get("/tasks/:id", h.task)
	router.Get("/dashboard", h.dashboard)
	router.Get("/students/:id", h.student)
	router.Get("/activity", h.activity)
}

func (h *StatisticsHandler) task(c *fiber.Ctx) error {
	taskID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Ungültige Aufgaben-ID")
	}

	response, err := h.service.TaskStatistics(c.UserContext(), taskID, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Statistik geladen", response)
}

func (h *StatisticsHandler) dashboard(c *fiber.Ctx) error {
	response, err := h.service.TeacherDashboard(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Dashboard geladen", response)
}

func (h *StatisticsHandler) student(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Ungültige Schüler-ID")
	}

	response, err := h.service.StudentStatistics(c.UserContext(), userIDFromContext(c), studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Statistik geladen", response)
}

func (h *StatisticsHandler) activity(c *fiber.Ctx) error {
	query := dto.ActivityQuery{
		ActivityType: c.Query("type"),
		Limit:        c.QueryInt("limit"),
	}
	if raw := c.Query("user_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "Ungültige Benutzer-ID")
		}
		userID := uint(parsed)
		query.UserID = &userID
	}

	response, err := h.service.RecentActivity(c.UserContext(), query)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Aktivitäten geladen", response)
}

func (h *StatisticsHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "Aufgabe nicht gefunden")
	case errors.Is(err, service.ErrTaskForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "Keine Berechtigung für diese Aufgabe")
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "Schüler nicht gefunden")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("statistics operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "Interner Serverfehler")
	}
}
