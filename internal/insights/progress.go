package insights

import (
	"math"
	"strings"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/models"
)

const keywordMinLength = 3

// Progress считает процент выполнения мечты в диапазоне [0,100].
// Завершенная мечта всегда дает 100; иначе берется округленное среднее
// прогресса вех. Без вех прогресс равен 0.
func Progress(snap DreamSnapshot) int {
	if snap.Dream.IsCompleted {
		return 100
	}

	if len(snap.Milestones) == 0 {
		return 0
	}

	total := 0
	for _, m := range snap.Milestones {
		total += MilestoneProgress(m.Milestone, m.Tasks)
	}

	return clampPct(int(math.Round(float64(total) / float64(len(snap.Milestones)))))
}

// MilestoneProgress считает прогресс одной вехи. Правила по приоритету:
// флаг завершения вехи, затем фазы, затем доля закрытых задач, иначе 0.
func MilestoneProgress(m models.Milestone, tasks []models.Task) int {
	if m.IsCompleted {
		return 100
	}

	if len(m.Phases) > 0 {
		done := 0
		for _, phase := range m.Phases {
			if phaseDone(phase, tasks) {
				done++
			}
		}
		return clampPct(roundRatio(done, len(m.Phases)))
	}

	if len(tasks) > 0 {
		completed := 0
		for _, task := range tasks {
			if task.IsCompleted {
				completed++
			}
		}
		return clampPct(roundRatio(completed, len(tasks)))
	}

	return 0
}

// Фаза закрыта, если выставлен ее флаг либо к ней привязана хотя бы одна
// задача и все привязанные задачи завершены.
func phaseDone(phase models.Phase, tasks []models.Task) bool {
	if phase.IsCompleted {
		return true
	}

	matched := 0
	for _, task := range tasks {
		if !taskMatchesPhase(task, phase) {
			continue
		}
		matched++
		if !task.IsCompleted {
			return false
		}
	}

	return matched > 0
}

// taskMatchesPhase привязывает задачу к фазе по явному индексу фазы.
// Для старых задач без индекса остается эвристика по ключевым словам
// заголовка фазы: она не гарантирует стабильность при переименованиях
// и сохранена только ради обратной совместимости.
func taskMatchesPhase(task models.Task, phase models.Phase) bool {
	if task.PhaseIndex != nil {
		return *task.PhaseIndex == phase.Index
	}

	title := strings.ToLower(task.Title)
	for _, word := range phaseKeywords(phase.Title) {
		if strings.Contains(title, word) {
			return true
		}
	}

	return false
}

func phaseKeywords(title string) []string {
	words := strings.Fields(strings.ToLower(title))
	keywords := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) > keywordMinLength {
			keywords = append(keywords, word)
		}
	}
	return keywords
}

// roundRatio округляет numerator/denominator*100 до целого процента.
func roundRatio(numerator, denominator int) int {
	if denominator <= 0 {
		return 0
	}
	return int(math.Round(float64(numerator) / float64(denominator) * 100))
}

func clampPct(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
