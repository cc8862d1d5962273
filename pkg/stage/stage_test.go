package stage

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero ideal", func(c *Config) { c.IdealCuts = 0 }},
		{"negative penalty", func(c *Config) { c.CutPenalty = -1 }},
		{"zero tick", func(c *Config) { c.ToastTick = 0 }},
		{"huge grid", func(c *Config) { c.GridSize = 50 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestResultString(t *testing.T) {
	if got := (Result{Kind: KindToast, Value: 50}).String(); got != "toast=50" {
		t.Errorf("String() = %q", got)
	}
	if got := (Result{Kind: KindTopping, Topping: "Honey"}).String(); got != `topping="Honey"` {
		t.Errorf("String() = %q", got)
	}
	if DefaultConfig().ToastTick != 100*time.Millisecond {
		t.Error("unexpected default toast tick")
	}
}
