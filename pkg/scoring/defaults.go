package scoring

// DefaultMetrics returns the stage metrics with canonical weights.
func DefaultMetrics() []Metric {
	return MetricsFor(Defaults())
}

// MetricsFor builds the stage metrics for a configuration, in display order.
func MetricsFor(cfg Config) []Metric {
	return []Metric{
		&SliceMetric{Weight: cfg.Weights.Slice},
		&ToastMetric{
			Weight: cfg.Weights.Toast,
			Ideal:  cfg.Thresholds.IdealToast,
			Slope:  cfg.Thresholds.ToastSlope,
		},
		&ButterMetric{Weight: cfg.Weights.Butter},
	}
}
