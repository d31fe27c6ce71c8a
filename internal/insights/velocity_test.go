package insights

import (
	"math"
	"testing"
)

// TestPortfolioVelocityBoundary проверяет включение границы: темпы +15 и
// +5 дают среднее ровно 10 и метку Excellent.
func TestPortfolioVelocityBoundary(t *testing.T) {
	inputs := []VelocityInput{
		{ProgressPct: 65},
		{ProgressPct: 55},
	}

	score, label := PortfolioVelocity(inputs)
	if score != 10 {
		t.Fatalf("expected score 10, got %v", score)
	}
	if label != VelocityExcellent {
		t.Fatalf("expected %s, got %s", VelocityExcellent, label)
	}
}

// TestPortfolioVelocityEmpty проверяет нулевой темп пустого портфеля.
func TestPortfolioVelocityEmpty(t *testing.T) {
	score, label := PortfolioVelocity(nil)
	if score != 0 {
		t.Fatalf("expected 0, got %v", score)
	}
	if label != VelocityOnTrack {
		t.Fatalf("expected %s, got %s", VelocityOnTrack, label)
	}
}

// TestVelocityScoreWithTarget проверяет взвешенную формулу с целевой
// датой: опережение графика и соответствие трат.
func TestVelocityScoreWithTarget(t *testing.T) {
	in := VelocityInput{
		ProgressPct:    50,
		BudgetUsedPct:  25,
		TimeElapsedPct: 40,
		HasTargetDate:  true,
	}

	// delta = 10, alignment = 25/50*100 = 50: 10*0.7 + 0*0.3 = 7
	if got := VelocityScore(in); math.Abs(got-7) > 1e-9 {
		t.Fatalf("expected 7, got %v", got)
	}
}

// TestVelocityScoreWithoutTarget проверяет формулу без целевой даты.
func TestVelocityScoreWithoutTarget(t *testing.T) {
	if got := VelocityScore(VelocityInput{ProgressPct: 30}); got != -20 {
		t.Fatalf("expected -20, got %v", got)
	}
}

// TestBudgetAlignmentBranches проверяет ветки соответствия трат.
func TestBudgetAlignmentBranches(t *testing.T) {
	// Траты без прогресса: худший случай, 100.
	if got := budgetAlignment(VelocityInput{BudgetUsedPct: 30}); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
	// Ни трат, ни прогресса: нейтральные 50.
	if got := budgetAlignment(VelocityInput{}); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
	// Трат больше прогресса: ограничение сверху.
	if got := budgetAlignment(VelocityInput{ProgressPct: 50, BudgetUsedPct: 80}); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
}

// TestVelocityLabels проверяет пороги меток.
func TestVelocityLabels(t *testing.T) {
	cases := []struct {
		score float64
		want  VelocityLabel
	}{
		{15, VelocityExcellent},
		{10, VelocityExcellent},
		{0, VelocityOnTrack},
		{-10, VelocityOnTrack},
		{-11, VelocityNeedsAttention},
		{-25, VelocityNeedsAttention},
		{-26, VelocityAtRisk},
	}

	for _, tc := range cases {
		if got := velocityLabel(tc.score); got != tc.want {
			t.Fatalf("score=%v: expected %s, got %s", tc.score, tc.want, got)
		}
	}
}
