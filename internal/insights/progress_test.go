package insights

import (
	"testing"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/models"
)

func intPtr(v int) *int {
	return &v
}

// TestProgressCompletedDream проверяет, что завершенная мечта дает 100
// независимо от состояния задач.
func TestProgressCompletedDream(t *testing.T) {
	snap := DreamSnapshot{
		Dream: models.Dream{IsCompleted: true},
		Milestones: []MilestoneSnapshot{
			{
				Milestone: models.Milestone{Title: "Planning"},
				Tasks:     []models.Task{{Title: "Find venue"}},
			},
		},
	}

	if got := Progress(snap); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

// TestProgressNoMilestones проверяет нулевой прогресс без вех.
func TestProgressNoMilestones(t *testing.T) {
	if got := Progress(DreamSnapshot{}); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

// TestMilestoneProgressPhases проверяет подсчет по фазам: из трех фаз
// закрыта только та, у которой все привязанные задачи завершены.
func TestMilestoneProgressPhases(t *testing.T) {
	milestone := models.Milestone{
		Phases: []models.Phase{
			{Index: 0, Title: "Research"},
			{Index: 1, Title: "Booking"},
			{Index: 2, Title: "Packing"},
		},
	}
	tasks := []models.Task{
		{Title: "Compare options", IsCompleted: true, PhaseIndex: intPtr(0)},
		{Title: "Read reviews", IsCompleted: true, PhaseIndex: intPtr(0)},
		{Title: "Reserve hotel", PhaseIndex: intPtr(1)},
		{Title: "Buy tickets", PhaseIndex: intPtr(1)},
	}

	if got := MilestoneProgress(milestone, tasks); got != 33 {
		t.Fatalf("expected 33, got %d", got)
	}
}

// TestMilestoneProgressPhaseFlag проверяет, что флаг фазы закрывает ее
// даже при незавершенных привязанных задачах.
func TestMilestoneProgressPhaseFlag(t *testing.T) {
	milestone := models.Milestone{
		Phases: []models.Phase{
			{Index: 0, Title: "Research", IsCompleted: true},
			{Index: 1, Title: "Booking"},
		},
	}
	tasks := []models.Task{
		{Title: "Compare options", PhaseIndex: intPtr(0)},
	}

	if got := MilestoneProgress(milestone, tasks); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
}

// TestMilestoneProgressKeywordFallback проверяет эвристику привязки задач
// без явного индекса фазы по словам заголовка.
func TestMilestoneProgressKeywordFallback(t *testing.T) {
	milestone := models.Milestone{
		Phases: []models.Phase{
			{Index: 0, Title: "Book flights"},
			{Index: 1, Title: "Hotel search"},
		},
	}
	tasks := []models.Task{
		{Title: "Booked the flights to Lisbon", IsCompleted: true},
	}

	if got := MilestoneProgress(milestone, tasks); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
}

// TestMilestoneProgressShortWordsIgnored проверяет, что слова короче
// четырех символов не участвуют в привязке.
func TestMilestoneProgressShortWordsIgnored(t *testing.T) {
	milestone := models.Milestone{
		Phases: []models.Phase{
			{Index: 0, Title: "Go to gym"},
		},
	}
	tasks := []models.Task{
		{Title: "go shopping", IsCompleted: true},
	}

	// Ни одно слово фазы не длиннее трех символов, задача не привязана,
	// фаза без задач и без флага остается открытой.
	if got := MilestoneProgress(milestone, tasks); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

// TestMilestoneProgressTaskRatio проверяет долю закрытых задач без фаз.
func TestMilestoneProgressTaskRatio(t *testing.T) {
	tasks := []models.Task{
		{Title: "a", IsCompleted: true},
		{Title: "b", IsCompleted: true},
		{Title: "c"},
	}

	if got := MilestoneProgress(models.Milestone{}, tasks); got != 67 {
		t.Fatalf("expected 67, got %d", got)
	}
}

// TestMilestoneProgressEmpty проверяет нулевой прогресс пустой вехи.
func TestMilestoneProgressEmpty(t *testing.T) {
	if got := MilestoneProgress(models.Milestone{}, nil); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

// TestMilestoneProgressCompletedFlag проверяет приоритет флага вехи.
func TestMilestoneProgressCompletedFlag(t *testing.T) {
	tasks := []models.Task{{Title: "open task"}}
	if got := MilestoneProgress(models.Milestone{IsCompleted: true}, tasks); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

// TestProgressMeanAcrossMilestones проверяет усреднение прогресса вех.
func TestProgressMeanAcrossMilestones(t *testing.T) {
	snap := DreamSnapshot{
		Milestones: []MilestoneSnapshot{
			{Milestone: models.Milestone{IsCompleted: true}},
			{
				Tasks: []models.Task{
					{Title: "a", IsCompleted: true},
					{Title: "b"},
				},
			},
			{},
		},
	}

	// (100 + 50 + 0) / 3 = 50
	if got := Progress(snap); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
}
