package insights

import (
	"math"
	"time"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/models"
)

const (
	onTrackThreshold = 70
	activityWindow   = 7 * 24 * time.Hour
)

// Статусы здоровья мечты. Вместе с nil-случаем они покрывают весь
// диапазон оценок без пересечений.
const (
	StatusGettingStarted = "Getting Started"
	StatusExcellent      = "Excellent"
	StatusGood           = "Good"
	StatusFair           = "Fair"
	StatusAtRisk         = "At Risk"
)

// ComputeMetrics считает метрики мечты на момент now. Функция чистая:
// одинаковый снимок и одинаковое now всегда дают одинаковый результат.
func ComputeMetrics(snap DreamSnapshot, now time.Time) Metrics {
	progress := Progress(snap)
	budget := snap.BudgetCents()
	spent := snap.SpentCents()
	tasks := snap.AllTasks()

	elapsed := timeElapsedPct(snap.Dream.CreatedAt, snap.Dream.TargetDate, now)
	used := budgetUsedPct(budget, spent)
	days := daysRemaining(snap.Dream.TargetDate, now)

	breakdown := HealthBreakdown{
		Progress: float64(progress) * 0.5,
		Timeline: timelineScore(snap.Dream.TargetDate, days, progress, elapsed),
		Budget:   budgetScore(budget, used, progress),
		Activity: activityScore(tasks, now),
	}

	total := breakdown.Progress + breakdown.Timeline + breakdown.Budget + breakdown.Activity
	score := clampPct(int(math.Round(total)))

	return Metrics{
		ProgressPct:    progress,
		HealthScore:    score,
		HealthStatus:   HealthStatus(&score),
		Breakdown:      breakdown,
		BudgetUsedPct:  used,
		DaysRemaining:  days,
		TimeElapsedPct: elapsed,
		OnTrack:        score >= onTrackThreshold,
		ComputedAt:     now,
	}
}

// HealthStatus возвращает текстовый статус по оценке здоровья.
// nil означает, что оценки еще нет.
func HealthStatus(score *int) string {
	switch {
	case score == nil:
		return StatusGettingStarted
	case *score >= 80:
		return StatusExcellent
	case *score >= onTrackThreshold:
		return StatusGood
	case *score >= 50:
		return StatusFair
	default:
		return StatusAtRisk
	}
}

// timeElapsedPct — доля прошедшего времени плана в [0,100]. Без целевой
// даты и при неположительном интервале возвращает 0.
func timeElapsedPct(created time.Time, target *time.Time, now time.Time) int {
	if target == nil {
		return 0
	}

	span := target.Sub(created)
	if span <= 0 {
		return 0
	}

	pct := int(math.Round(float64(now.Sub(created)) / float64(span) * 100))
	return clampPct(pct)
}

// budgetUsedPct не ограничен сверху: значение выше 100 сигнализирует о
// перерасходе.
func budgetUsedPct(budget *int64, spent int64) int {
	if budget == nil || *budget <= 0 {
		return 0
	}

	pct := int(math.Round(float64(spent) / float64(*budget) * 100))
	if pct < 0 {
		return 0
	}
	return pct
}

func daysRemaining(target *time.Time, now time.Time) *int {
	if target == nil {
		return nil
	}

	days := int(math.Ceil(target.Sub(now).Hours() / 24))
	return &days
}

func timelineScore(target *time.Time, days *int, progress, elapsed int) float64 {
	if target == nil {
		return 15
	}
	if days != nil && *days < 0 {
		return 0
	}

	gap := progress - elapsed
	switch {
	case gap >= 10:
		return 30
	case gap >= 0:
		return 25
	case gap >= -15:
		return 15
	case gap >= -30:
		return 8
	default:
		return 3
	}
}

func budgetScore(budget *int64, usedPct, progressPct int) float64 {
	if budget == nil || *budget <= 0 {
		return 8
	}
	if usedPct > 100 {
		return 0
	}

	eff := progressPct - usedPct
	switch {
	case eff >= 10:
		return 15
	case eff >= 0:
		return 12
	case eff >= -15:
		return 8
	case eff >= -30:
		return 4
	default:
		return 1
	}
}

// activityScore: без задач нейтральные 3 балла; иначе 5, если за
// последние 7 дней была создана или закрыта хотя бы одна задача.
func activityScore(tasks []models.Task, now time.Time) float64 {
	if len(tasks) == 0 {
		return 3
	}

	cutoff := now.Add(-activityWindow)
	for _, task := range tasks {
		if task.CompletedAt != nil && task.CompletedAt.After(cutoff) {
			return 5
		}
		if !task.CreatedAt.IsZero() && task.CreatedAt.After(cutoff) {
			return 5
		}
	}

	return 0
}
