package handlers

import (
	"encoding/json"
	"net/http"
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

type NotificationHandler struct {
	Hub *notifications.Hub
}

// NewNotificationHandler создает SSE-обработчик уведомлений.
func NewNotificationHandler(hub *notifications.Hub) *NotificationHandler {
	return &NotificationHandler{Hub: hub}
}

// Stream открывает SSE-поток событий для пользователя.
func (h *NotificationHandler) Stream(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	ch, unsubscribe := h.Hub.Subscribe(userID)
	defer unsubscribe()

	_ = writeSSE(c, notifications.Event{
		Type: notifications.EventConnected,
		Data: map[string]string{"user_id": userID.String()},
	})
	flusher.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := c.Response().Write([]byte("event: " + event.Type + "\n")); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}

	return nil
}

// publishDreamMetrics пересчитывает метрики мечты после мутации и
// рассылает события подписчикам. Ошибки пересчета основной ответ не
// прерывают.
func publishDreamMetrics(c echo.Context, dreams *repository.DreamRepository, hub *notifications.Hub, userID, dreamID uuid.UUID) {
	if hub == nil {
		return
	}

	snapshot, err := dreams.Snapshot(c.Request().Context(), userID, dreamID)
	if err != nil {
		return
	}

	now := time.Now().UTC()
	metrics := insights.ComputeMetrics(snapshot, now)
	alerts := insights.ComputeAlerts(snapshot, metrics, now)
	telemetry.CountComputation("metrics")

	publishMetricsUpdate(hub, userID, dreamID, metrics)
	publishCriticalAlerts(hub, userID, dreamID, alerts)
}

func publishMetricsUpdate(hub *notifications.Hub, userID, dreamID uuid.UUID, metrics insights.Metrics) {
	if hub == nil {
		return
	}

	hub.Publish(userID, notifications.Event{
		Type: notifications.EventMetricsUpdated,
		Data: map[string]interface{}{
			"dream_id":      dreamID.String(),
			"progress_pct":  metrics.ProgressPct,
			"health_score":  metrics.HealthScore,
			"health_status": metrics.HealthStatus,
			"on_track":      metrics.OnTrack,
		},
	})
}

func publishCriticalAlerts(hub *notifications.Hub, userID, dreamID uuid.UUID, alerts []insights.Alert) {
	if hub == nil {
		return
	}

	for _, alert := range alerts {
		if alert.Severity != models.AlertSeverityCritical {
			continue
		}

		hub.Publish(userID, notifications.Event{
			Type: notifications.EventAlertTriggered,
			Data: map[string]interface{}{
				"dream_id": dreamID.String(),
				"type":     alert.Type,
				"severity": alert.Severity,
				"message":  alert.Message,
				"action":   alert.Action,
			},
		})
	}
}
