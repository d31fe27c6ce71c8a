package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/auth"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/insights"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/repository"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/telemetry"
)

type InsightHandler struct {
	Dreams    *repository.DreamRepository
	MaxAlerts int
}

// NewInsightHandler создает обработчик метрик и уведомлений мечт.
func NewInsightHandler(dreams *repository.DreamRepository, maxAlerts int) *InsightHandler {
	return &InsightHandler{Dreams: dreams, MaxAlerts: maxAlerts}
}

type AlertsResponse struct {
	Alerts []insights.Alert `json:"alerts"`
	Total  int              `json:"total"`
}

type VelocityResponse struct {
	Score  float64                `json:"score"`
	Label  insights.VelocityLabel `json:"label"`
	Dreams int                    `json:"dreams"`
}

// Metrics возвращает метрики мечты, пересчитанные на момент запроса.
func (h *InsightHandler) Metrics(c echo.Context) error {
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

	metrics := insights.ComputeMetrics(snapshot, time.Now().UTC())
	telemetry.CountComputation("metrics")

	return c.JSON(http.StatusOK, metrics)
}

// Alerts возвращает уведомления мечты в порядке приоритета. Список
// обрезается до настроенного максимума, Total содержит полное число.
func (h *InsightHandler) Alerts(c echo.Context) error {
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
	telemetry.CountComputation("alerts")

	total := len(alerts)
	if h.MaxAlerts > 0 && total > h.MaxAlerts {
		alerts = alerts[:h.MaxAlerts]
	}

	return c.JSON(http.StatusOK, AlertsResponse{Alerts: alerts, Total: total})
}

// Velocity возвращает портфельную скорость по всем мечтам пользователя.
func (h *InsightHandler) Velocity(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	snapshots, err := h.Dreams.SnapshotsByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	now := time.Now().UTC()
	inputs := make([]insights.VelocityInput, 0, len(snapshots))
	for _, snapshot := range snapshots {
		metrics := insights.ComputeMetrics(snapshot, now)
		inputs = append(inputs, insights.VelocityInput{
			ProgressPct:    metrics.ProgressPct,
			BudgetUsedPct:  metrics.BudgetUsedPct,
			TimeElapsedPct: metrics.TimeElapsedPct,
			HasTargetDate:  snapshot.Dream.TargetDate != nil,
		})
	}

	score, label := insights.PortfolioVelocity(inputs)
	telemetry.CountComputation("velocity")

	return c.JSON(http.StatusOK, VelocityResponse{
		Score:  score,
		Label:  label,
		Dreams: len(inputs),
	})
}
