package scoring_test

import (
	"strings"
	"testing"

	"github.com/toastmaster/toastmaster/pkg/scoring"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := scoring.Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults().Validate() = %v", err)
	}
	if cfg.Weights.Slice != 0.2 || cfg.Weights.Toast != 0.5 || cfg.Weights.Butter != 0.3 {
		t.Errorf("unexpected default weights: %+v", cfg.Weights)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*scoring.Config)
		wantErr string
	}{
		{
			name:   "within tolerance",
			mutate: func(c *scoring.Config) { c.Weights.Butter = 0.3005 },
		},
		{
			name:    "sum too high",
			mutate:  func(c *scoring.Config) { c.Weights.Slice = 0.3 },
			wantErr: "weights: weights sum",
		},
		{
			name: "negative weight",
			mutate: func(c *scoring.Config) {
				c.Weights = scoring.Weights{Slice: -0.5, Toast: 1.2, Butter: 0.3}
			},
			wantErr: "negative slice weight",
		},
		{
			name:    "raw above ideal",
			mutate:  func(c *scoring.Config) { c.Thresholds.RawBelow = 60 },
			wantErr: "thresholds: thresholds out of order",
		},
		{
			name:    "burnt out of range",
			mutate:  func(c *scoring.Config) { c.Thresholds.BurntAbove = 120 },
			wantErr: "burnt_above must be within",
		},
		{
			name:    "scorched below ideal",
			mutate:  func(c *scoring.Config) { c.Thresholds.ScorchedAbove = 40 },
			wantErr: "scorched_above=40 must not be below ideal",
		},
		{
			name:    "zero slope",
			mutate:  func(c *scoring.Config) { c.Thresholds.ToastSlope = 0 },
			wantErr: "toast_slope must be positive",
		},
		{
			name:    "cap of zero",
			mutate:  func(c *scoring.Config) { c.Thresholds.CriticalCap = 0 },
			wantErr: "critical_cap",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := scoring.Defaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestCustomThresholdsChangeRules(t *testing.T) {
	cfg := scoring.Defaults()
	cfg.Thresholds.RawBelow = 10
	cfg.Thresholds.CriticalCap = 2

	e, err := scoring.NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}

	v := e.ComputeVerdict(scoring.GameStats{SliceQuality: 100, ToastLevel: 20, ButterCoverage: 100})
	if v.Capped {
		t.Error("expected toast level 20 to be acceptable with raw_below=10")
	}

	v = e.ComputeVerdict(scoring.GameStats{SliceQuality: 100, ToastLevel: 90, ButterCoverage: 100})
	if !v.Capped || v.FinalScore != 2 {
		t.Errorf("expected burnt round capped at 2, got capped=%v score=%d", v.Capped, v.FinalScore)
	}
}
