// Package config handles loading and managing Toastmaster configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/toastmaster/toastmaster/pkg/scoring"
	"github.com/toastmaster/toastmaster/pkg/stage"
)

// Config is the top-level configuration for Toastmaster.
type Config struct {
	Scoring  ScoringConfig  `yaml:"scoring"`
	Stages   StagesConfig   `yaml:"stages"`
	Critique CritiqueConfig `yaml:"critique"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// ScoringConfig controls scoring behavior. Weights are keyed by stage:
// slice, toast, butter. Missing keys keep their default.
type ScoringConfig struct {
	Weights    map[string]float64 `yaml:"weights"`
	Thresholds ThresholdsConfig   `yaml:"thresholds"`
}

// ThresholdsConfig mirrors scoring.Thresholds.
type ThresholdsConfig struct {
	IdealToast  int `yaml:"ideal_toast"`
	ToastSlope  int `yaml:"toast_slope"`
	RawBelow    int `yaml:"raw_below"`
	BurntAbove  int `yaml:"burnt_above"`
	DryBelow    int `yaml:"dry_below"`
	CriticalCap int `yaml:"critical_cap"`
	// ScorchedAbove is where the critic prompt starts calling toast burnt.
	ScorchedAbove int `yaml:"scorched_above"`
}

// StagesConfig tunes the stage controllers.
type StagesConfig struct {
	IdealCuts  int           `yaml:"ideal_cuts"`
	CutPenalty int           `yaml:"cut_penalty"`
	ToastTick  time.Duration `yaml:"toast_tick"`
	GridSize   int           `yaml:"grid_size"`
	Topping    bool          `yaml:"topping"` // include the topping stage
}

// CritiqueConfig controls the chef collaborator.
type CritiqueConfig struct {
	Provider   string        `yaml:"provider"` // gemini, local or none
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	APIKeyEnv  string        `yaml:"api_key_env"`
}

// ArchiveConfig controls where collaborator exchanges are written.
type ArchiveConfig struct {
	Backend string `yaml:"backend"` // "", local, s3 or gcs
	Dir     string `yaml:"dir"`
	Bucket  string `yaml:"bucket"`
	Prefix  string `yaml:"prefix"`
	Region  string `yaml:"region"`
}

// Critique providers.
const (
	ProviderGemini = "gemini"
	ProviderLocal  = "local"
	ProviderNone   = "none"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	sc := scoring.Defaults()
	st := stage.DefaultConfig()
	return &Config{
		Scoring: ScoringConfig{
			Weights: map[string]float64{
				"slice":  sc.Weights.Slice,
				"toast":  sc.Weights.Toast,
				"butter": sc.Weights.Butter,
			},
			Thresholds: ThresholdsConfig{
				IdealToast:    sc.Thresholds.IdealToast,
				ToastSlope:    sc.Thresholds.ToastSlope,
				RawBelow:      sc.Thresholds.RawBelow,
				BurntAbove:    sc.Thresholds.BurntAbove,
				DryBelow:      sc.Thresholds.DryBelow,
				CriticalCap:   sc.Thresholds.CriticalCap,
				ScorchedAbove: sc.Thresholds.ScorchedAbove,
			},
		},
		Stages: StagesConfig{
			IdealCuts:  st.IdealCuts,
			CutPenalty: st.CutPenalty,
			ToastTick:  st.ToastTick,
			GridSize:   st.GridSize,
			Topping:    true,
		},
		Critique: CritiqueConfig{
			Provider:   ProviderGemini,
			Model:      "gemini-2.5-flash",
			Timeout:    8 * time.Second,
			MaxRetries: 2,
			APIKeyEnv:  "GEMINI_API_KEY",
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// ScoringSettings converts the scoring section for the engine.
func (c *Config) ScoringSettings() (scoring.Config, error) {
	out := scoring.Defaults()
	keys := make([]string, 0, len(c.Scoring.Weights))
	for k := range c.Scoring.Weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := c.Scoring.Weights[k]
		switch k {
		case "slice":
			out.Weights.Slice = v
		case "toast":
			out.Weights.Toast = v
		case "butter":
			out.Weights.Butter = v
		default:
			return scoring.Config{}, fmt.Errorf("unknown weight %q (want slice, toast or butter)", k)
		}
	}
	t := c.Scoring.Thresholds
	out.Thresholds = scoring.Thresholds{
		IdealToast:    t.IdealToast,
		ToastSlope:    t.ToastSlope,
		RawBelow:      t.RawBelow,
		BurntAbove:    t.BurntAbove,
		DryBelow:      t.DryBelow,
		CriticalCap:   t.CriticalCap,
		ScorchedAbove: t.ScorchedAbove,
	}
	if err := out.Validate(); err != nil {
		return scoring.Config{}, err
	}
	return out, nil
}

// Engine builds the scoring engine for this configuration.
func (c *Config) Engine() (*scoring.Engine, error) {
	sc, err := c.ScoringSettings()
	if err != nil {
		return nil, err
	}
	return scoring.NewEngine(sc)
}

// StageSettings converts the stages section for the controllers.
func (c *Config) StageSettings() stage.Config {
	return stage.Config{
		IdealCuts:  c.Stages.IdealCuts,
		CutPenalty: c.Stages.CutPenalty,
		ToastTick:  c.Stages.ToastTick,
		GridSize:   c.Stages.GridSize,
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := c.ScoringSettings(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if err := c.StageSettings().Validate(); err != nil {
		return fmt.Errorf("stages: %w", err)
	}
	switch c.Critique.Provider {
	case ProviderGemini, ProviderLocal, ProviderNone:
	default:
		return fmt.Errorf("critique: unknown provider %q", c.Critique.Provider)
	}
	if c.Critique.Timeout < 0 {
		return fmt.Errorf("critique: timeout must not be negative")
	}
	switch c.Archive.Backend {
	case "", "local":
	case "s3", "gcs":
		if c.Archive.Bucket == "" {
			return fmt.Errorf("archive: %s backend needs a bucket", c.Archive.Backend)
		}
	default:
		return fmt.Errorf("archive: unknown backend %q", c.Archive.Backend)
	}
	return nil
}

// APIKeyFromEnv returns the collaborator key from the configured variable.
func (c *Config) APIKeyFromEnv() string {
	if c.Critique.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Critique.APIKeyEnv)
}

// FindConfigFile looks for .toastmaster/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".toastmaster", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// CacheDir returns ~/.cache/toastmaster.
func CacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache", "toastmaster")
}

// ArchiveDir returns the default directory for archived exchanges.
func ArchiveDir() string {
	return filepath.Join(CacheDir(), "exchanges")
}

// SecretsFile returns the fallback secrets file used when no OS keychain
// is available.
func SecretsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = CacheDir()
	}
	return filepath.Join(dir, "toastmaster", "secrets.json")
}
