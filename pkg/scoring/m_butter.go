package scoring

// ButterMetric scores the buttering stage by grid coverage.
type ButterMetric struct {
	Weight float64
}

func (m *ButterMetric) Key() string  { return "butter" }
func (m *ButterMetric) Name() string { return "Buttering" }

func (m *ButterMetric) Evaluate(stats GameStats) MetricResult {
	raw := clampStat(stats.ButterCoverage)
	return MetricResult{
		Key:    m.Key(),
		Name:   m.Name(),
		Raw:    raw,
		Score:  raw,
		Weight: m.Weight,
	}
}
