package scoring

// ToastMetric scores doneness on a triangular curve peaking at Ideal.
type ToastMetric struct {
	Weight float64
	Ideal  int // doneness that earns 100
	Slope  int // points lost per unit of distance from Ideal
}

func (m *ToastMetric) Key() string  { return "toast" }
func (m *ToastMetric) Name() string { return "Toasting" }

func (m *ToastMetric) Evaluate(stats GameStats) MetricResult {
	raw := clampStat(stats.ToastLevel)
	return MetricResult{
		Key:    m.Key(),
		Name:   m.Name(),
		Raw:    raw,
		Score:  toastCurve(raw, m.Ideal, m.Slope),
		Weight: m.Weight,
	}
}

// ToastSubScore maps a toast level to its 0-100 sub-score using the
// canonical curve: 100 - 2*|level-50|, never below zero.
func ToastSubScore(level int) int {
	return toastCurve(clampStat(level), IdealToastLevel, ToastSlope)
}

func toastCurve(level, ideal, slope int) int {
	dist := level - ideal
	if dist < 0 {
		dist = -dist
	}
	score := MaxStat - slope*dist
	if score < 0 {
		return 0
	}
	return score
}

// clampStat pins a stage metric into 0-100. Stages are not trusted to
// stay in range.
func clampStat(v int) int {
	switch {
	case v < 0:
		return 0
	case v > MaxStat:
		return MaxStat
	default:
		return v
	}
}
