package insights

import (
	"time"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/models"
)

// DreamSnapshot — срез мечты со всеми вехами, задачами и расходами.
// Снимок собирается слоем репозитория и принадлежит вызывающему коду;
// функции пакета его не изменяют и не удерживают после возврата.
type DreamSnapshot struct {
	Dream      models.Dream
	Milestones []MilestoneSnapshot
}

type MilestoneSnapshot struct {
	Milestone models.Milestone
	Tasks     []models.Task
	Expenses  []models.Expense
}

type HealthBreakdown struct {
	Progress float64 `json:"progress"`
	Timeline float64 `json:"timeline"`
	Budget   float64 `json:"budget"`
	Activity float64 `json:"activity"`
}

// Metrics — результат расчета, эфемерный: пересчитывается на каждый вызов
// и нигде не сохраняется.
type Metrics struct {
	ProgressPct    int             `json:"progress_pct"`
	HealthScore    int             `json:"health_score"`
	HealthStatus   string          `json:"health_status"`
	Breakdown      HealthBreakdown `json:"breakdown"`
	BudgetUsedPct  int             `json:"budget_used_pct"`
	DaysRemaining  *int            `json:"days_remaining,omitempty"`
	TimeElapsedPct int             `json:"time_elapsed_pct"`
	OnTrack        bool            `json:"on_track"`
	ComputedAt     time.Time       `json:"computed_at"`
}

type Alert struct {
	Type     models.AlertType     `json:"type"`
	Severity models.AlertSeverity `json:"severity"`
	Message  string               `json:"message"`
	Action   string               `json:"action"`
}

// AllTasks возвращает задачи всех вех в порядке вех.
func (s DreamSnapshot) AllTasks() []models.Task {
	var tasks []models.Task
	for _, m := range s.Milestones {
		tasks = append(tasks, m.Tasks...)
	}
	return tasks
}

// SpentCents суммирует расходы мечты; отмененные расходы не считаются.
func (s DreamSnapshot) SpentCents() int64 {
	var total int64
	for _, m := range s.Milestones {
		for _, e := range m.Expenses {
			if e.Status == models.ExpenseStatusCancelled {
				continue
			}
			total += e.AmountCents
		}
	}
	return total
}

// ExpenseCount возвращает количество неотмененных расходов.
func (s DreamSnapshot) ExpenseCount() int {
	count := 0
	for _, m := range s.Milestones {
		for _, e := range m.Expenses {
			if e.Status == models.ExpenseStatusCancelled {
				continue
			}
			count++
		}
	}
	return count
}

// BudgetCents возвращает действующий бюджет мечты: собственный бюджет,
// а если он не задан — сумму бюджетов вех. nil, если бюджета нет нигде.
func (s DreamSnapshot) BudgetCents() *int64 {
	if s.Dream.BudgetCents != nil {
		return s.Dream.BudgetCents
	}

	var total int64
	found := false
	for _, m := range s.Milestones {
		if m.Milestone.BudgetCents != nil {
			total += *m.Milestone.BudgetCents
			found = true
		}
	}

	if !found {
		return nil
	}
	return &total
}
