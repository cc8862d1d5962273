package scoring

// SliceMetric scores the cutting stage. SliceQuality is already a 0-100
// goodness value, so it passes through unchanged.
type SliceMetric struct {
	Weight float64
}

func (m *SliceMetric) Key() string  { return "slice" }
func (m *SliceMetric) Name() string { return "Cutting" }

func (m *SliceMetric) Evaluate(stats GameStats) MetricResult {
	raw := clampStat(stats.SliceQuality)
	return MetricResult{
		Key:    m.Key(),
		Name:   m.Name(),
		Raw:    raw,
		Score:  raw,
		Weight: m.Weight,
	}
}
