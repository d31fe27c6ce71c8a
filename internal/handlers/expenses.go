package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/auth"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/models"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/notifications"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/repository"
)

type ExpenseHandler struct {
	Expenses *repository.ExpenseRepository
	Dreams   *repository.DreamRepository
	Notifier *notifications.Hub
}

// NewExpenseHandler создает обработчик расходов.
func NewExpenseHandler(expenses *repository.ExpenseRepository, dreams *repository.DreamRepository, notifier *notifications.Hub) *ExpenseHandler {
	return &ExpenseHandler{Expenses: expenses, Dreams: dreams, Notifier: notifier}
}

type ExpenseRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	AmountCents int64      `json:"amount_cents" validate:"gte=0"`
	Status      *string    `json:"status" validate:"omitempty,oneof=pending paid cancelled"`
	DueDate     *time.Time `json:"due_date"`
	PaidBy      *uuid.UUID `json:"paid_by"`
}

type ExpenseStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid cancelled"`
}

// Create создает расход в вехе.
func (h *ExpenseHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	milestoneID, err := uuid.Parse(c.Param("milestoneId"))
	if err != nil {
		return badRequest(c, "invalid milestone id")
	}

	var req ExpenseRequest
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

	status := models.ExpenseStatusPending
	if req.Status != nil {
		status = models.ExpenseStatus(*req.Status)
	}

	expense, dreamID, err := h.Expenses.Create(c.Request().Context(), userID, milestoneID, title, req.AmountCents, status, req.DueDate, req.PaidBy)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "milestone not found")
		}
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "amount must be non-negative")
		}
		return serverError(c)
	}

	publishDreamMetrics(c, h.Dreams, h.Notifier, userID, dreamID)
	return c.JSON(http.StatusCreated, expense)
}

// UpdateStatus меняет статус расхода.
func (h *ExpenseHandler) UpdateStatus(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	var req ExpenseStatusRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	expense, dreamID, err := h.Expenses.UpdateStatus(c.Request().Context(), userID, expenseID, models.ExpenseStatus(req.Status))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense not found")
		}
		return serverError(c)
	}

	publishDreamMetrics(c, h.Dreams, h.Notifier, userID, dreamID)
	return c.JSON(http.StatusOK, expense)
}

// Delete удаляет расход.
func (h *ExpenseHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	dreamID, err := h.Expenses.Delete(c.Request().Context(), userID, expenseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense not found")
		}
		return serverError(c)
	}

	publishDreamMetrics(c, h.Dreams, h.Notifier, userID, dreamID)
	return c.NoContent(http.StatusNoContent)
}
