package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/auth"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/insights"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/models"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/notifications"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/repository"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/telemetry"
)

type DreamHandler struct {
	Dreams   *repository.DreamRepository
	Notifier *notifications.Hub
}

// NewDreamHandler создает обработчик мечт.
func NewDreamHandler(dreams *repository.DreamRepository, notifier *notifications.Hub) *DreamHandler {
	return &DreamHandler{Dreams: dreams, Notifier: notifier}
}

type DreamRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	TargetDate  *time.Time `json:"target_date"`
	BudgetCents *int64     `json:"budget_cents" validate:"omitempty,gte=0"`
}

type CompleteRequest struct {
	Completed *bool `json:"completed"`
}

type DreamResponse struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description,omitempty"`
	TargetDate  *time.Time        `json:"target_date,omitempty"`
	BudgetCents *int64            `json:"budget_cents,omitempty"`
	IsCompleted bool              `json:"is_completed"`
	Metrics     *insights.Metrics `json:"metrics,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type MilestoneResponse struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	TargetDate  *time.Time       `json:"target_date,omitempty"`
	BudgetCents *int64           `json:"budget_cents,omitempty"`
	IsCompleted bool             `json:"is_completed"`
	Phases      []models.Phase   `json:"phases,omitempty"`
	ProgressPct int              `json:"progress_pct"`
	SortOrder   int              `json:"sort_order"`
	Tasks       []models.Task    `json:"tasks"`
	Expenses    []models.Expense `json:"expenses"`
}

type DreamDetailResponse struct {
	Dream      DreamResponse       `json:"dream"`
	Milestones []MilestoneResponse `json:"milestones"`
	Alerts     []insights.Alert    `json:"alerts"`
}

// List возвращает мечты пользователя с метриками по каждой.
func (h *DreamHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	snapshots, err := h.Dreams.SnapshotsByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	now := time.Now().UTC()
	response := make([]DreamResponse, 0, len(snapshots))
	for _, snapshot := range snapshots {
		metrics := insights.ComputeMetrics(snapshot, now)
		response = append(response, toDreamResponse(snapshot.Dream, &metrics))
	}
	telemetry.CountComputation("metrics")

	return c.JSON(http.StatusOK, map[string][]DreamResponse{"dreams": response})
}

// Create создает мечту.
func (h *DreamHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req DreamRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return badRequest(c, "title is required")
	}

	dream, err := h.Dreams.Create(c.Request().Context(), userID, title, req.Description, req.TargetDate, req.BudgetCents)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, toDreamResponse(dream, nil))
}

// Get возвращает мечту с вехами, метриками и уведомлениями.
func (h *DreamHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	dreamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid dream id")
	}

	snapshot, err := h.Dreams.Snapshot(c.Request().Context(), userID, dreamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "dream not found")
		}
		return serverError(c)
	}

	now := time.Now().UTC()
	metrics := insights.ComputeMetrics(snapshot, now)
	alerts := insights.ComputeAlerts(snapshot, metrics, now)
	telemetry.CountComputation("metrics")
	telemetry.CountComputation("alerts")

	response := DreamDetailResponse{
		Dream:      toDreamResponse(snapshot.Dream, &metrics),
		Milestones: toMilestoneResponses(snapshot),
		Alerts:     alerts,
	}

	return c.JSON(http.StatusOK, response)
}

// Update обновляет мечту.
func (h *DreamHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	dreamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid dream id")
	}

	var req DreamRequest
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

	dream, err := h.Dreams.Update(c.Request().Context(), userID, dreamID, title, req.Description, req.TargetDate, req.BudgetCents)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "dream not found")
		}
		return serverError(c)
	}

	h.publishMetrics(c, userID, dream.ID)
	return c.JSON(http.StatusOK, toDreamResponse(dream, nil))
}

// Complete выставляет флаг завершения мечты. Без тела запроса мечта
// помечается завершенной.
func (h *DreamHandler) Complete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	dreamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid dream id")
	}

	completed := true
	var req CompleteRequest
	if err := c.Bind(&req); err == nil && req.Completed != nil {
		completed = *req.Completed
	}

	dream, err := h.Dreams.SetCompleted(c.Request().Context(), userID, dreamID, completed)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "dream not found")
		}
		return serverError(c)
	}

	h.publishMetrics(c, userID, dream.ID)
	return c.JSON(http.StatusOK, toDreamResponse(dream, nil))
}

// Delete удаляет мечту.
func (h *DreamHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	dreamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid dream id")
	}

	if err := h.Dreams.Delete(c.Request().Context(), userID, dreamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "dream not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *DreamHandler) publishMetrics(c echo.Context, userID, dreamID uuid.UUID) {
	publishDreamMetrics(c, h.Dreams, h.Notifier, userID, dreamID)
}

func toDreamResponse(dream models.Dream, metrics *insights.Metrics) DreamResponse {
	return DreamResponse{
		ID:          dream.ID,
		Title:       dream.Title,
		Description: dream.Description,
		TargetDate:  dream.TargetDate,
		BudgetCents: dream.BudgetCents,
		IsCompleted: dream.IsCompleted,
		Metrics:     metrics,
		CreatedAt:   dream.CreatedAt,
		UpdatedAt:   dream.UpdatedAt,
	}
}

func toMilestoneResponses(snapshot insights.DreamSnapshot) []MilestoneResponse {
	response := make([]MilestoneResponse, 0, len(snapshot.Milestones))
	for _, ms := range snapshot.Milestones {
		tasks := ms.Tasks
		if tasks == nil {
			tasks = []models.Task{}
		}
		expenses := ms.Expenses
		if expenses == nil {
			expenses = []models.Expense{}
		}

		response = append(response, MilestoneResponse{
			ID:          ms.Milestone.ID,
			Title:       ms.Milestone.Title,
			TargetDate:  ms.Milestone.TargetDate,
			BudgetCents: ms.Milestone.BudgetCents,
			IsCompleted: ms.Milestone.IsCompleted,
			Phases:      ms.Milestone.Phases,
			ProgressPct: insights.MilestoneProgress(ms.Milestone, ms.Tasks),
			SortOrder:   ms.Milestone.SortOrder,
			Tasks:       tasks,
			Expenses:    expenses,
		})
	}
	return response
}
