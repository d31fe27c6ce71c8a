package insights

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/models"
)

func alertsOfType(alerts []Alert, alertType models.AlertType) []Alert {
	var filtered []Alert
	for _, alert := range alerts {
		if alert.Type == alertType {
			filtered = append(filtered, alert)
		}
	}
	return filtered
}

// TestBudgetAlertOverrun проверяет критическое уведомление о перерасходе:
// бюджет 1000, траты 1100, перерасход 100.
func TestBudgetAlertOverrun(t *testing.T) {
	snap := DreamSnapshot{
		Dream: models.Dream{
			CreatedAt:   testNow.AddDate(0, -1, 0),
			BudgetCents: int64Ptr(100000),
		},
		Milestones: []MilestoneSnapshot{
			{
				Expenses: []models.Expense{
					{AmountCents: 110000, Status: models.ExpenseStatusPaid},
				},
			},
		},
	}

	m := ComputeMetrics(snap, testNow)
	budget := alertsOfType(ComputeAlerts(snap, m, testNow), models.AlertTypeBudget)

	if len(budget) != 1 {
		t.Fatalf("expected 1 budget alert, got %d", len(budget))
	}
	if budget[0].Severity != models.AlertSeverityCritical {
		t.Fatalf("expected critical, got %s", budget[0].Severity)
	}
	if budget[0].Message != "Over budget by $100.00" {
		t.Fatalf("unexpected message: %s", budget[0].Message)
	}
}

// TestBudgetAlertNearLimit проверяет предупреждение после 90% бюджета.
func TestBudgetAlertNearLimit(t *testing.T) {
	alert := budgetAlert(int64Ptr(100000), 95000, 95, 2)
	if alert == nil {
		t.Fatal("expected alert")
	}
	if alert.Severity != models.AlertSeverityWarning {
		t.Fatalf("expected warning, got %s", alert.Severity)
	}
	if alert.Message != "95% of budget used ($50.00 left)" {
		t.Fatalf("unexpected message: %s", alert.Message)
	}
}

// TestBudgetAlertUnderBudget проверяет информационное уведомление: меньше
// половины бюджета и больше пяти расходов.
func TestBudgetAlertUnderBudget(t *testing.T) {
	alert := budgetAlert(int64Ptr(100000), 30000, 30, 6)
	if alert == nil {
		t.Fatal("expected alert")
	}
	if alert.Severity != models.AlertSeverityInfo {
		t.Fatalf("expected info, got %s", alert.Severity)
	}
	if alert.Message != "Under budget by $700.00" {
		t.Fatalf("unexpected message: %s", alert.Message)
	}

	// Мало расходов — позитивное уведомление не срабатывает.
	if got := budgetAlert(int64Ptr(100000), 30000, 30, 5); got != nil {
		t.Fatalf("expected no alert, got %+v", got)
	}
}

// TestBudgetAlertNoBudget проверяет отсутствие уведомлений без бюджета.
func TestBudgetAlertNoBudget(t *testing.T) {
	if got := budgetAlert(nil, 50000, 0, 10); got != nil {
		t.Fatalf("expected no alert, got %+v", got)
	}
}

// TestDeadlineAlertWarning проверяет ровно одно уведомление о дедлайне
// при целевой дате через пять дней.
func TestDeadlineAlertWarning(t *testing.T) {
	snap := DreamSnapshot{
		Dream: models.Dream{
			CreatedAt:  testNow.AddDate(0, 0, -5),
			TargetDate: timePtr(testNow.Add(120 * time.Hour)),
		},
	}

	m := ComputeMetrics(snap, testNow)
	deadline := alertsOfType(ComputeAlerts(snap, m, testNow), models.AlertTypeDeadline)

	if len(deadline) != 1 {
		t.Fatalf("expected 1 deadline alert, got %d", len(deadline))
	}
	if deadline[0].Severity != models.AlertSeverityWarning {
		t.Fatalf("expected warning, got %s", deadline[0].Severity)
	}
	if deadline[0].Message != "Only 5 days remaining" {
		t.Fatalf("unexpected message: %s", deadline[0].Message)
	}
}

// TestDeadlineAlertRanges проверяет взаимоисключающие диапазоны дедлайна.
func TestDeadlineAlertRanges(t *testing.T) {
	target := timePtr(testNow)

	overdue := deadlineAlert(target, intPtr(-3))
	if overdue == nil || overdue.Severity != models.AlertSeverityCritical || overdue.Message != "3 days overdue" {
		t.Fatalf("unexpected overdue alert: %+v", overdue)
	}

	today := deadlineAlert(target, intPtr(0))
	if today == nil || today.Severity != models.AlertSeverityCritical || today.Message != "Due today" {
		t.Fatalf("unexpected due-today alert: %+v", today)
	}

	single := deadlineAlert(target, intPtr(1))
	if single == nil || single.Message != "Only 1 day remaining" {
		t.Fatalf("unexpected one-day alert: %+v", single)
	}

	info := deadlineAlert(target, intPtr(20))
	if info == nil || info.Severity != models.AlertSeverityInfo || info.Message != "20 days until target date" {
		t.Fatalf("unexpected info alert: %+v", info)
	}

	if got := deadlineAlert(target, intPtr(31)); got != nil {
		t.Fatalf("expected no alert beyond 30 days, got %+v", got)
	}
	if got := deadlineAlert(nil, nil); got != nil {
		t.Fatalf("expected no alert without target, got %+v", got)
	}
}

// TestTaskAlerts проверяет три независимых уведомления по задачам:
// просроченные, скоро истекающие и без исполнителя.
func TestTaskAlerts(t *testing.T) {
	assignee := uuid.New()
	tasks := []models.Task{
		{Title: "overdue", DueDate: timePtr(testNow.Add(-24 * time.Hour)), AssigneeID: &assignee},
		{Title: "due soon", DueDate: timePtr(testNow.Add(48 * time.Hour)), AssigneeID: &assignee},
		{Title: "unassigned"},
		{Title: "done", IsCompleted: true, DueDate: timePtr(testNow.Add(-48 * time.Hour))},
	}

	alerts := taskAlerts(tasks, testNow)
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d: %+v", len(alerts), alerts)
	}

	if alerts[0].Severity != models.AlertSeverityWarning || alerts[0].Message != "1 task overdue" {
		t.Fatalf("unexpected overdue alert: %+v", alerts[0])
	}
	if alerts[1].Severity != models.AlertSeverityInfo || alerts[1].Message != "1 task due within 3 days" {
		t.Fatalf("unexpected due-soon alert: %+v", alerts[1])
	}
	if alerts[2].Severity != models.AlertSeverityInfo || alerts[2].Message != "1 task without an assignee" {
		t.Fatalf("unexpected unassigned alert: %+v", alerts[2])
	}
}

// TestTaskAlertsIgnoreCompleted проверяет, что завершенные задачи не
// порождают уведомлений.
func TestTaskAlertsIgnoreCompleted(t *testing.T) {
	tasks := []models.Task{
		{IsCompleted: true, DueDate: timePtr(testNow.Add(-24 * time.Hour))},
		{IsCompleted: true},
	}

	if alerts := taskAlerts(tasks, testNow); len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", alerts)
	}
}

// TestProgressAlert проверяет пороги уведомления о прогрессе.
func TestProgressAlert(t *testing.T) {
	low := progressAlert(49)
	if low == nil || low.Severity != models.AlertSeverityCritical {
		t.Fatalf("unexpected alert for score 49: %+v", low)
	}

	mid := progressAlert(69)
	if mid == nil || mid.Severity != models.AlertSeverityWarning {
		t.Fatalf("unexpected alert for score 69: %+v", mid)
	}

	if got := progressAlert(70); got != nil {
		t.Fatalf("expected no alert for score 70, got %+v", got)
	}
}

// TestAlertsEmptyForHealthyDream проверяет пустой список для мечты без
// бюджета, даты и задач с оценкой не ниже 70.
func TestAlertsEmptyForHealthyDream(t *testing.T) {
	snap := DreamSnapshot{
		Dream: models.Dream{
			IsCompleted: true,
			CreatedAt:   testNow.AddDate(0, -1, 0),
		},
	}

	m := ComputeMetrics(snap, testNow)
	if m.HealthScore < 70 {
		t.Fatalf("expected score >= 70, got %d", m.HealthScore)
	}

	if alerts := ComputeAlerts(snap, m, testNow); len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", alerts)
	}
}
