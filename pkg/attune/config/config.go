// Package config loads the engine configuration from YAML and applies
// defaults for every knob.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/attune/pkg/attune/internalerr"
)

// EnvNoRemote is an optional host-environment flag. The core performs no
// remote calls regardless; the flag exists so host environments can assert
// the guarantee uniformly across services.
const EnvNoRemote = "ATTUNE_NO_REMOTE"

// Config holds every path, toggle, and numeric knob of the learning core.
type Config struct {
	// Root is the directory the documented file layout lives under.
	Root string `yaml:"root"`

	// EnableAnonymization turns on per-exchange anonymization maps.
	EnableAnonymization bool `yaml:"enable_anonymization"`

	// AllowMedicalDetails leaves medical terms unmasked.
	AllowMedicalDetails bool `yaml:"allow_medical_details"`

	// AllowNames leaves personal names unmasked.
	AllowNames bool `yaml:"allow_names"`

	// AdaptiveSignals enables corpus-driven dimension discovery.
	AdaptiveSignals bool `yaml:"adaptive_signals"`

	// MinPatternFrequency is the informational cross-session threshold
	// (default 300; 1 makes every per-exchange sighting qualify).
	MinPatternFrequency int64 `yaml:"min_pattern_frequency_for_composite"`

	// AcceptThreshold is the minimum composite confidence for emission
	// (default 0.8).
	AcceptThreshold float64 `yaml:"accept_threshold"`

	// MaxUserContextsPerSignal bounds retained example contexts (default 10).
	MaxUserContextsPerSignal int `yaml:"max_user_contexts_per_signal"`

	// MaxRecentMemory bounds the dedup recent-memory window (default 500).
	MaxRecentMemory int `yaml:"max_recent_memory"`

	// PairDBPath, when set, stores cross-session pair counts in SQLite at
	// this path. Empty keeps the counter in memory.
	PairDBPath string `yaml:"pair_db_path"`
}

// Default returns the documented defaults rooted at root.
func Default(root string) Config {
	return Config{
		Root:                     root,
		EnableAnonymization:      true,
		MinPatternFrequency:      300,
		AcceptThreshold:          0.8,
		MaxUserContextsPerSignal: 10,
		MaxRecentMemory:          500,
	}
}

// Load reads a YAML config file and fills in defaults for zero-valued knobs.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() (Config, error) {
	if c.Root == "" {
		return Config{}, fmt.Errorf("%w: root is required", internalerr.ErrInvalidConfig)
	}
	if c.MinPatternFrequency <= 0 {
		c.MinPatternFrequency = 300
	}
	if c.AcceptThreshold <= 0 {
		c.AcceptThreshold = 0.8
	}
	if c.MaxUserContextsPerSignal <= 0 {
		c.MaxUserContextsPerSignal = 10
	}
	if c.MaxRecentMemory <= 0 {
		c.MaxRecentMemory = 500
	}
	return c, nil
}
