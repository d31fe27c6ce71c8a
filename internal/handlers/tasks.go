package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/auth"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/notifications"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/repository"
)

type TaskHandler struct {
	Tasks    *repository.TaskRepository
	Dreams   *repository.DreamRepository
	Notifier *notifications.Hub
}

// NewTaskHandler создает обработчик задач.
func NewTaskHandler(tasks *repository.TaskRepository, dreams *repository.DreamRepository, notifier *notifications.Hub) *TaskHandler {
	return &TaskHandler{Tasks: tasks, Dreams: dreams, Notifier: notifier}
}

type TaskRequest struct {
	Title      string     `json:"title" validate:"required,max=200"`
	DueDate    *time.Time `json:"due_date"`
	AssigneeID *uuid.UUID `json:"assignee_id"`
	PhaseIndex *int       `json:"phase_index" validate:"omitempty,gte=0"`
}

type AssignRequest struct {
	AssigneeID *uuid.UUID `json:"assignee_id"`
}

// Create создает задачу в вехе.
func (h *TaskHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	milestoneID, err := uuid.Parse(c.Param("milestoneId"))
	if err != nil {
		return badRequest(c, "invalid milestone id")
	}

	var req TaskRequest
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

	task, dreamID, err := h.Tasks.Create(c.Request().Context(), userID, milestoneID, title, req.DueDate, req.AssigneeID, req.PhaseIndex)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "milestone not found")
		}
		return serverError(c)
	}

	publishDreamMetrics(c, h.Dreams, h.Notifier, userID, dreamID)
	return c.JSON(http.StatusCreated, task)
}

// Toggle выставляет флаг завершения задачи. Без тела запроса задача
// помечается завершенной.
func (h *TaskHandler) Toggle(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid task id")
	}

	completed := true
	var req CompleteRequest
	if err := c.Bind(&req); err == nil && req.Completed != nil {
		completed = *req.Completed
	}

	task, dreamID, err := h.Tasks.SetCompleted(c.Request().Context(), userID, taskID, completed)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "task not found")
		}
		return serverError(c)
	}

	publishDreamMetrics(c, h.Dreams, h.Notifier, userID, dreamID)
	return c.JSON(http.StatusOK, task)
}

// Assign назначает или снимает исполнителя задачи.
func (h *TaskHandler) Assign(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid task id")
	}

	var req AssignRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	task, dreamID, err := h.Tasks.Assign(c.Request().Context(), userID, taskID, req.AssigneeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "task not found")
		}
		return serverError(c)
	}

	publishDreamMetrics(c, h.Dreams, h.Notifier, userID, dreamID)
	return c.JSON(http.StatusOK, task)
}

// Delete удаляет задачу.
func (h *TaskHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid task id")
	}

	dreamID, err := h.Tasks.Delete(c.Request().Context(), userID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "task not found")
		}
		return serverError(c)
	}

	publishDreamMetrics(c, h.Dreams, h.Notifier, userID, dreamID)
	return c.NoContent(http.StatusNoContent)
}
