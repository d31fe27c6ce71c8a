package insights

import (
	"reflect"
	"testing"
	"time"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/models"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func int64Ptr(v int64) *int64 {
	return &v
}

func timePtr(v time.Time) *time.Time {
	return &v
}

// TestComputeMetricsNeutralDefaults проверяет нейтральные очки без
// целевой даты, бюджета и задач.
func TestComputeMetricsNeutralDefaults(t *testing.T) {
	snap := DreamSnapshot{
		Dream: models.Dream{CreatedAt: testNow.AddDate(0, -1, 0)},
	}

	m := ComputeMetrics(snap, testNow)

	if m.ProgressPct != 0 {
		t.Fatalf("expected progress 0, got %d", m.ProgressPct)
	}
	if m.Breakdown.Timeline != 15 {
		t.Fatalf("expected neutral timeline 15, got %v", m.Breakdown.Timeline)
	}
	if m.Breakdown.Budget != 8 {
		t.Fatalf("expected neutral budget 8, got %v", m.Breakdown.Budget)
	}
	if m.Breakdown.Activity != 3 {
		t.Fatalf("expected neutral activity 3, got %v", m.Breakdown.Activity)
	}
	if m.HealthScore != 26 {
		t.Fatalf("expected score 26, got %d", m.HealthScore)
	}
	if m.OnTrack {
		t.Fatal("expected on_track to be false")
	}
	if m.DaysRemaining != nil {
		t.Fatalf("expected nil days remaining, got %d", *m.DaysRemaining)
	}
	if m.TimeElapsedPct != 0 {
		t.Fatalf("expected elapsed 0, got %d", m.TimeElapsedPct)
	}
}

// TestComputeMetricsAllTasksDone проверяет сумму компонентов при полном
// прогрессе без даты и бюджета: 50 + 15 + 8 + активность.
func TestComputeMetricsAllTasksDone(t *testing.T) {
	recent := testNow.Add(-24 * time.Hour)
	snap := DreamSnapshot{
		Dream: models.Dream{CreatedAt: testNow.AddDate(0, -2, 0)},
		Milestones: []MilestoneSnapshot{
			{
				Tasks: []models.Task{
					{IsCompleted: true, CompletedAt: timePtr(recent), CreatedAt: recent},
					{IsCompleted: true, CompletedAt: timePtr(recent), CreatedAt: recent},
					{IsCompleted: true, CompletedAt: timePtr(recent), CreatedAt: recent},
					{IsCompleted: true, CompletedAt: timePtr(recent), CreatedAt: recent},
				},
			},
		},
	}

	m := ComputeMetrics(snap, testNow)

	if m.ProgressPct != 100 {
		t.Fatalf("expected progress 100, got %d", m.ProgressPct)
	}
	if m.HealthScore != 78 {
		t.Fatalf("expected score 78 (50+15+8+5), got %d", m.HealthScore)
	}
	if !m.OnTrack {
		t.Fatal("expected on_track to be true")
	}
}

// TestComputeMetricsStaleActivity проверяет нулевую активность, когда все
// задачи старше семи дней.
func TestComputeMetricsStaleActivity(t *testing.T) {
	old := testNow.AddDate(0, -1, 0)
	snap := DreamSnapshot{
		Dream: models.Dream{CreatedAt: testNow.AddDate(0, -2, 0)},
		Milestones: []MilestoneSnapshot{
			{
				Tasks: []models.Task{
					{IsCompleted: true, CompletedAt: timePtr(old), CreatedAt: old},
				},
			},
		},
	}

	m := ComputeMetrics(snap, testNow)

	if m.Breakdown.Activity != 0 {
		t.Fatalf("expected activity 0, got %v", m.Breakdown.Activity)
	}
	if m.HealthScore != 73 {
		t.Fatalf("expected score 73, got %d", m.HealthScore)
	}
}

// TestComputeMetricsIdempotent проверяет детерминированность расчета.
func TestComputeMetricsIdempotent(t *testing.T) {
	snap := DreamSnapshot{
		Dream: models.Dream{
			CreatedAt:   testNow.AddDate(0, -1, 0),
			TargetDate:  timePtr(testNow.AddDate(0, 1, 0)),
			BudgetCents: int64Ptr(500000),
		},
		Milestones: []MilestoneSnapshot{
			{
				Tasks: []models.Task{
					{IsCompleted: true, CreatedAt: testNow.Add(-time.Hour)},
					{CreatedAt: testNow.Add(-time.Hour)},
				},
				Expenses: []models.Expense{
					{AmountCents: 100000, Status: models.ExpenseStatusPaid},
				},
			},
		},
	}

	first := ComputeMetrics(snap, testNow)
	second := ComputeMetrics(snap, testNow)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical metrics, got %+v and %+v", first, second)
	}
}

// TestComputeMetricsBudgetOverrun проверяет нулевой бюджетный компонент и
// неограниченный сверху процент трат при перерасходе.
func TestComputeMetricsBudgetOverrun(t *testing.T) {
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

	if m.BudgetUsedPct != 110 {
		t.Fatalf("expected budget used 110, got %d", m.BudgetUsedPct)
	}
	if m.Breakdown.Budget != 0 {
		t.Fatalf("expected budget component 0, got %v", m.Breakdown.Budget)
	}
}

// TestCancelledExpensesIgnored проверяет, что отмененные расходы не
// попадают в сумму трат.
func TestCancelledExpensesIgnored(t *testing.T) {
	snap := DreamSnapshot{
		Milestones: []MilestoneSnapshot{
			{
				Expenses: []models.Expense{
					{AmountCents: 5000, Status: models.ExpenseStatusPaid},
					{AmountCents: 3000, Status: models.ExpenseStatusPending},
					{AmountCents: 100000, Status: models.ExpenseStatusCancelled},
				},
			},
		},
	}

	if got := snap.SpentCents(); got != 8000 {
		t.Fatalf("expected 8000, got %d", got)
	}
	if got := snap.ExpenseCount(); got != 2 {
		t.Fatalf("expected 2 expenses, got %d", got)
	}
}

// TestTimeElapsedPct проверяет границы расчета прошедшего времени.
func TestTimeElapsedPct(t *testing.T) {
	created := testNow.AddDate(0, 0, -5)

	if got := timeElapsedPct(created, timePtr(testNow.AddDate(0, 0, 5)), testNow); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
	if got := timeElapsedPct(created, nil, testNow); got != 0 {
		t.Fatalf("expected 0 without target, got %d", got)
	}
	// Целевая дата раньше создания: интервал неположительный.
	if got := timeElapsedPct(created, timePtr(created.AddDate(0, 0, -1)), testNow); got != 0 {
		t.Fatalf("expected 0 for inverted span, got %d", got)
	}
	// Дедлайн в прошлом: не больше 100.
	if got := timeElapsedPct(created, timePtr(testNow.AddDate(0, 0, -1)), testNow); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

// TestDaysRemaining проверяет округление вверх и отрицательные значения.
func TestDaysRemaining(t *testing.T) {
	if got := daysRemaining(timePtr(testNow.Add(120*time.Hour)), testNow); got == nil || *got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
	if got := daysRemaining(timePtr(testNow.Add(1*time.Hour)), testNow); got == nil || *got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	if got := daysRemaining(timePtr(testNow.Add(-48*time.Hour)), testNow); got == nil || *got != -2 {
		t.Fatalf("expected -2, got %v", got)
	}
	if got := daysRemaining(nil, testNow); got != nil {
		t.Fatalf("expected nil, got %d", *got)
	}
}

// TestTimelineScore проверяет пороги компонента графика.
func TestTimelineScore(t *testing.T) {
	target := timePtr(testNow.AddDate(0, 1, 0))
	days := intPtr(30)

	cases := []struct {
		progress int
		elapsed  int
		want     float64
	}{
		{60, 40, 30},
		{50, 45, 25},
		{40, 50, 15},
		{30, 55, 8},
		{10, 80, 3},
	}

	for _, tc := range cases {
		if got := timelineScore(target, days, tc.progress, tc.elapsed); got != tc.want {
			t.Fatalf("progress=%d elapsed=%d: expected %v, got %v", tc.progress, tc.elapsed, tc.want, got)
		}
	}

	if got := timelineScore(nil, nil, 50, 0); got != 15 {
		t.Fatalf("expected neutral 15, got %v", got)
	}
	if got := timelineScore(target, intPtr(-1), 90, 100); got != 0 {
		t.Fatalf("expected 0 when overdue, got %v", got)
	}
}

// TestBudgetScore проверяет пороги бюджетного компонента.
func TestBudgetScore(t *testing.T) {
	budget := int64Ptr(100000)

	cases := []struct {
		used     int
		progress int
		want     float64
	}{
		{40, 50, 15},
		{50, 50, 12},
		{60, 50, 8},
		{75, 50, 4},
		{90, 50, 1},
		{101, 50, 0},
	}

	for _, tc := range cases {
		if got := budgetScore(budget, tc.used, tc.progress); got != tc.want {
			t.Fatalf("used=%d progress=%d: expected %v, got %v", tc.used, tc.progress, tc.want, got)
		}
	}

	if got := budgetScore(nil, 0, 0); got != 8 {
		t.Fatalf("expected neutral 8, got %v", got)
	}
}

// TestHealthStatus проверяет разбиение шкалы на статусы без пересечений.
func TestHealthStatus(t *testing.T) {
	if got := HealthStatus(nil); got != StatusGettingStarted {
		t.Fatalf("expected %q, got %q", StatusGettingStarted, got)
	}

	cases := []struct {
		score int
		want  string
	}{
		{100, StatusExcellent},
		{80, StatusExcellent},
		{79, StatusGood},
		{70, StatusGood},
		{69, StatusFair},
		{50, StatusFair},
		{49, StatusAtRisk},
		{0, StatusAtRisk},
	}

	for _, tc := range cases {
		if got := HealthStatus(&tc.score); got != tc.want {
			t.Fatalf("score=%d: expected %q, got %q", tc.score, tc.want, got)
		}
	}
}

// TestHealthScoreWithinRange проверяет клиппинг итоговой оценки.
func TestHealthScoreWithinRange(t *testing.T) {
	snap := DreamSnapshot{
		Dream: models.Dream{
			IsCompleted: true,
			CreatedAt:   testNow.AddDate(0, -1, 0),
			TargetDate:  timePtr(testNow.AddDate(0, 1, 0)),
			BudgetCents: int64Ptr(100000),
		},
		Milestones: []MilestoneSnapshot{
			{
				Tasks: []models.Task{
					{IsCompleted: true, CompletedAt: timePtr(testNow.Add(-time.Hour)), CreatedAt: testNow.Add(-time.Hour)},
				},
			},
		},
	}

	m := ComputeMetrics(snap, testNow)
	if m.HealthScore < 0 || m.HealthScore > 100 {
		t.Fatalf("score out of range: %d", m.HealthScore)
	}
}
