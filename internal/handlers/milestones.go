package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/auth"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/models"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/notifications"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/repository"
)

type MilestoneHandler struct {
	Milestones *repository.MilestoneRepository
	Dreams     *repository.DreamRepository
	Notifier   *notifications.Hub
}

// NewMilestoneHandler создает обработчик вех.
func NewMilestoneHandler(milestones *repository.MilestoneRepository, dreams *repository.DreamRepository, notifier *notifications.Hub) *MilestoneHandler {
	return &MilestoneHandler{Milestones: milestones, Dreams: dreams, Notifier: notifier}
}

type PhaseRequest struct {
	Index int    `json:"index" validate:"gte=0"`
	Title string `json:"title" validate:"required,max=200"`
}

type MilestoneRequest struct {
	Title       string         `json:"title" validate:"required,max=200"`
	TargetDate  *time.Time     `json:"target_date"`
	BudgetCents *int64         `json:"budget_cents" validate:"omitempty,gte=0"`
	Phases      []PhaseRequest `json:"phases" validate:"omitempty,dive"`
}

// Create создает веху в мечте.
func (h *MilestoneHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	dreamID, err := uuid.Parse(c.Param("dreamId"))
	if err != nil {
		return badRequest(c, "invalid dream id")
	}

	var req MilestoneRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return badRequest(c, "title is required")
	}

	phases := make([]models.Phase, 0, len(req.Phases))
	for _, phase := range req.Phases {
		phases = append(phases, models.Phase{
			Index: phase.Index,
			Title: strings.TrimSpace(phase.Title),
		})
	}

	milestone, err := h.Milestones.Create(c.Request().Context(), userID, dreamID, title, req.TargetDate, req.BudgetCents, phases)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "dream not found")
		}
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "phase indexes must be unique and non-negative")
		}
		return serverError(c)
	}

	publishDreamMetrics(c, h.Dreams, h.Notifier, userID, milestone.DreamID)
	return c.JSON(http.StatusCreated, milestone)
}

// Toggle выставляет флаг завершения вехи. Без тела запроса веха
// помечается завершенной.
func (h *MilestoneHandler) Toggle(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	milestoneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid milestone id")
	}

	completed := true
	var req CompleteRequest
	if err := c.Bind(&req); err == nil && req.Completed != nil {
		completed = *req.Completed
	}

	milestone, err := h.Milestones.SetCompleted(c.Request().Context(), userID, milestoneID, completed)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "milestone not found")
		}
		return serverError(c)
	}

	publishDreamMetrics(c, h.Dreams, h.Notifier, userID, milestone.DreamID)
	return c.JSON(http.StatusOK, milestone)
}

// TogglePhase выставляет флаг завершения одной фазы вехи.
func (h *MilestoneHandler) TogglePhase(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	milestoneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid milestone id")
	}

	phaseIndex, err := strconv.Atoi(c.Param("index"))
	if err != nil || phaseIndex < 0 {
		return badRequest(c, "invalid phase index")
	}

	completed := true
	var req CompleteRequest
	if err := c.Bind(&req); err == nil && req.Completed != nil {
		completed = *req.Completed
	}

	milestone, err := h.Milestones.SetPhaseCompleted(c.Request().Context(), userID, milestoneID, phaseIndex, completed)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "milestone or phase not found")
		}
		return serverError(c)
	}

	publishDreamMetrics(c, h.Dreams, h.Notifier, userID, milestone.DreamID)
	return c.JSON(http.StatusOK, milestone)
}

// Delete удаляет веху.
func (h *MilestoneHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	milestoneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid milestone id")
	}

	dreamID, err := h.Milestones.Delete(c.Request().Context(), userID, milestoneID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "milestone not found")
		}
		return serverError(c)
	}

	publishDreamMetrics(c, h.Dreams, h.Notifier, userID, dreamID)
	return c.NoContent(http.StatusNoContent)
}
