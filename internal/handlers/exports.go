package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/auth"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/insights"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/repository"
)

const (
	exportTypeTasks    = "tasks"
	exportTypeExpenses = "expenses"
)

const timeLayout = time.RFC3339

// ExportJSON выгружает мечту с вехами, метриками и уведомлениями в
// JSON-файл.
func (h *DreamHandler) ExportJSON(c echo.Context) error {
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
	response := DreamDetailResponse{
		Dream:      toDreamResponse(snapshot.Dream, &metrics),
		Milestones: toMilestoneResponses(snapshot),
		Alerts:     insights.ComputeAlerts(snapshot, metrics, now),
	}

	filename := "dream-" + snapshot.Dream.ID.String() + ".json"
	c.Response().Header().Set(echo.HeaderContentType, "application/json")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.JSON(http.StatusOK, response)
}

// ExportCSV выгружает задачи или расходы мечты в CSV-файл.
func (h *DreamHandler) ExportCSV(c echo.Context) error {
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

	exportType := strings.ToLower(strings.TrimSpace(c.QueryParam("type")))
	if exportType == "" {
		exportType = exportTypeTasks
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	switch exportType {
	case exportTypeTasks:
		err = writeTasksCSV(writer, snapshot)
	case exportTypeExpenses:
		err = writeExpensesCSV(writer, snapshot)
	default:
		return badRequest(c, "invalid export type")
	}
	if err != nil {
		return serverError(c)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	filename := "dream-" + snapshot.Dream.ID.String() + "-" + exportType + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func writeTasksCSV(writer *csv.Writer, snapshot insights.DreamSnapshot) error {
	header := []string{
		"dream_id",
		"dream_title",
		"milestone_id",
		"milestone_title",
		"task_id",
		"task_title",
		"is_completed",
		"completed_at",
		"due_date",
		"assignee_id",
		"phase_index",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, ms := range snapshot.Milestones {
		for _, task := range ms.Tasks {
			record := []string{
				snapshot.Dream.ID.String(),
				snapshot.Dream.Title,
				ms.Milestone.ID.String(),
				ms.Milestone.Title,
				task.ID.String(),
				task.Title,
				formatBool(task.IsCompleted),
				formatTimePtr(task.CompletedAt),
				formatTimePtr(task.DueDate),
				formatUUIDPtr(task.AssigneeID),
				formatIntPtr(task.PhaseIndex),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeExpensesCSV(writer *csv.Writer, snapshot insights.DreamSnapshot) error {
	header := []string{
		"dream_id",
		"dream_title",
		"milestone_id",
		"milestone_title",
		"expense_id",
		"expense_title",
		"amount_cents",
		"status",
		"due_date",
		"paid_by",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, ms := range snapshot.Milestones {
		for _, expense := range ms.Expenses {
			record := []string{
				snapshot.Dream.ID.String(),
				snapshot.Dream.Title,
				ms.Milestone.ID.String(),
				ms.Milestone.Title,
				expense.ID.String(),
				expense.Title,
				strconv.FormatInt(expense.AmountCents, 10),
				string(expense.Status),
				formatTimePtr(expense.DueDate),
				formatUUIDPtr(expense.PaidBy),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	return nil
}

func formatBool(value bool) string {
	if value {
		return "true"
	}
	return "false"
}

func formatTimePtr(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(timeLayout)
}

func formatUUIDPtr(value *uuid.UUID) string {
	if value == nil {
		return ""
	}
	return value.String()
}

func formatIntPtr(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}
