package insights

type VelocityLabel string

const (
	VelocityExcellent      VelocityLabel = "Excellent"
	VelocityOnTrack        VelocityLabel = "On Track"
	VelocityNeedsAttention VelocityLabel = "Needs Attention"
	VelocityAtRisk         VelocityLabel = "At Risk"
)

// VelocityInput — метрики одной мечты для портфельной оценки темпа.
type VelocityInput struct {
	ProgressPct    int
	BudgetUsedPct  int
	TimeElapsedPct int
	HasTargetDate  bool
}

// VelocityScore считает темп одной мечты. С целевой датой темп взвешивает
// опережение графика и соответствие трат прогрессу; без даты остается
// только сам прогресс относительно середины шкалы.
func VelocityScore(in VelocityInput) float64 {
	if !in.HasTargetDate {
		return float64(in.ProgressPct - 50)
	}

	progressDelta := float64(in.ProgressPct - in.TimeElapsedPct)
	return progressDelta*0.7 + (budgetAlignment(in)-50)*0.3
}

// PortfolioVelocity усредняет темп по всем мечтам и возвращает оценку с
// текстовой меткой. Пустой портфель дает 0, что трактуется как On Track.
func PortfolioVelocity(inputs []VelocityInput) (float64, VelocityLabel) {
	if len(inputs) == 0 {
		return 0, VelocityOnTrack
	}

	total := 0.0
	for _, in := range inputs {
		total += VelocityScore(in)
	}

	score := total / float64(len(inputs))
	return score, velocityLabel(score)
}

func budgetAlignment(in VelocityInput) float64 {
	if in.ProgressPct > 0 {
		alignment := float64(in.BudgetUsedPct) / float64(in.ProgressPct) * 100
		if alignment > 100 {
			return 100
		}
		return alignment
	}

	if in.BudgetUsedPct > 0 {
		return 100
	}
	return 50
}

func velocityLabel(score float64) VelocityLabel {
	switch {
	case score >= 10:
		return VelocityExcellent
	case score >= -10:
		return VelocityOnTrack
	case score >= -25:
		return VelocityNeedsAttention
	default:
		return VelocityAtRisk
	}
}
