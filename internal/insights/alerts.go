package insights

import (
	"fmt"
	"time"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/models"
)

const dueSoonWindow = 3 * 24 * time.Hour

// ComputeAlerts строит список уведомлений по снимку мечты и ее метрикам.
// Порядок фиксированный: бюджет, дедлайн, задачи, прогресс. Список не
// ограничен по длине, усечение для выдачи делает вызывающий код.
func ComputeAlerts(snap DreamSnapshot, m Metrics, now time.Time) []Alert {
	alerts := make([]Alert, 0, 4)

	if alert := budgetAlert(snap.BudgetCents(), snap.SpentCents(), m.BudgetUsedPct, snap.ExpenseCount()); alert != nil {
		alerts = append(alerts, *alert)
	}

	if alert := deadlineAlert(snap.Dream.TargetDate, m.DaysRemaining); alert != nil {
		alerts = append(alerts, *alert)
	}

	alerts = append(alerts, taskAlerts(snap.AllTasks(), now)...)

	if alert := progressAlert(m.HealthScore); alert != nil {
		alerts = append(alerts, *alert)
	}

	return alerts
}

func budgetAlert(budget *int64, spent int64, usedPct, expenseCount int) *Alert {
	if budget == nil || *budget <= 0 {
		return nil
	}

	remaining := *budget - spent
	switch {
	case usedPct > 100:
		return &Alert{
			Type:     models.AlertTypeBudget,
			Severity: models.AlertSeverityCritical,
			Message:  fmt.Sprintf("Over budget by %s", formatCents(-remaining)),
			Action:   "Review recent expenses or raise the budget",
		}
	case usedPct > 90:
		return &Alert{
			Type:     models.AlertTypeBudget,
			Severity: models.AlertSeverityWarning,
			Message:  fmt.Sprintf("%d%% of budget used (%s left)", usedPct, formatCents(remaining)),
			Action:   "Plan the remaining spend carefully",
		}
	case usedPct < 50 && expenseCount > 5:
		return &Alert{
			Type:     models.AlertTypeBudget,
			Severity: models.AlertSeverityInfo,
			Message:  fmt.Sprintf("Under budget by %s", formatCents(remaining)),
			Action:   "Keep tracking expenses as they come in",
		}
	default:
		return nil
	}
}

// Диапазоны дедлайна взаимоисключающие: срабатывает не больше одного.
func deadlineAlert(target *time.Time, days *int) *Alert {
	if target == nil || days == nil {
		return nil
	}

	daysUntil := *days
	switch {
	case daysUntil < 0:
		return &Alert{
			Type:     models.AlertTypeDeadline,
			Severity: models.AlertSeverityCritical,
			Message:  fmt.Sprintf("%d days overdue", -daysUntil),
			Action:   "Move the target date or close out the dream",
		}
	case daysUntil == 0:
		return &Alert{
			Type:     models.AlertTypeDeadline,
			Severity: models.AlertSeverityCritical,
			Message:  "Due today",
			Action:   "Wrap up the remaining work today",
		}
	case daysUntil <= 7:
		return &Alert{
			Type:     models.AlertTypeDeadline,
			Severity: models.AlertSeverityWarning,
			Message:  fmt.Sprintf("Only %s remaining", pluralDays(daysUntil)),
			Action:   "Focus on the most important tasks first",
		}
	case daysUntil <= 30:
		return &Alert{
			Type:     models.AlertTypeDeadline,
			Severity: models.AlertSeverityInfo,
			Message:  fmt.Sprintf("%d days until target date", daysUntil),
			Action:   "Check that the plan still fits the timeline",
		}
	default:
		return nil
	}
}

// taskAlerts может вернуть до трех независимых уведомлений:
// просроченные, скоро истекающие и задачи без исполнителя.
func taskAlerts(tasks []models.Task, now time.Time) []Alert {
	overdue := 0
	dueSoon := 0
	unassigned := 0

	dueSoonCutoff := now.Add(dueSoonWindow)
	for _, task := range tasks {
		if task.IsCompleted {
			continue
		}

		if task.DueDate != nil {
			if task.DueDate.Before(now) {
				overdue++
			} else if !task.DueDate.After(dueSoonCutoff) {
				dueSoon++
			}
		}

		if task.AssigneeID == nil {
			unassigned++
		}
	}

	alerts := make([]Alert, 0, 3)
	if overdue > 0 {
		alerts = append(alerts, Alert{
			Type:     models.AlertTypeTask,
			Severity: models.AlertSeverityWarning,
			Message:  fmt.Sprintf("%s overdue", pluralTasks(overdue)),
			Action:   "Reschedule or complete the overdue tasks",
		})
	}
	if dueSoon > 0 {
		alerts = append(alerts, Alert{
			Type:     models.AlertTypeTask,
			Severity: models.AlertSeverityInfo,
			Message:  fmt.Sprintf("%s due within 3 days", pluralTasks(dueSoon)),
			Action:   "Set aside time for the upcoming tasks",
		})
	}
	if unassigned > 0 {
		alerts = append(alerts, Alert{
			Type:     models.AlertTypeTask,
			Severity: models.AlertSeverityInfo,
			Message:  fmt.Sprintf("%s without an assignee", pluralTasks(unassigned)),
			Action:   "Agree who owns each task",
		})
	}

	return alerts
}

func progressAlert(score int) *Alert {
	switch {
	case score < 50:
		return &Alert{
			Type:     models.AlertTypeProgress,
			Severity: models.AlertSeverityCritical,
			Message:  "Dream health is poor",
			Action:   "Review the milestones and refresh the plan",
		}
	case score < onTrackThreshold:
		return &Alert{
			Type:     models.AlertTypeProgress,
			Severity: models.AlertSeverityWarning,
			Message:  "Dream needs attention",
			Action:   "Pick one milestone to push forward this week",
		}
	default:
		return nil
	}
}

func formatCents(cents int64) string {
	if cents < 0 {
		cents = -cents
	}
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func pluralTasks(n int) string {
	if n == 1 {
		return "1 task"
	}
	return fmt.Sprintf("%d tasks", n)
}
