package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/attune/pkg/attune/internalerr"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attune.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default("/data/attune")

	if cfg.Root != "/data/attune" {
		t.Errorf("root = %q", cfg.Root)
	}
	if !cfg.EnableAnonymization {
		t.Error("anonymization off by default")
	}
	if cfg.MinPatternFrequency != 300 || cfg.AcceptThreshold != 0.8 {
		t.Errorf("thresholds = %d, %v", cfg.MinPatternFrequency, cfg.AcceptThreshold)
	}
	if cfg.MaxUserContextsPerSignal != 10 || cfg.MaxRecentMemory != 500 {
		t.Errorf("bounds = %d, %d", cfg.MaxUserContextsPerSignal, cfg.MaxRecentMemory)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeConfig(t, "root: /data/attune\nadaptive_signals: true\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Root != "/data/attune" || !cfg.AdaptiveSignals {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.MinPatternFrequency != 300 || cfg.AcceptThreshold != 0.8 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadExplicitValuesWin(t *testing.T) {
	path := writeConfig(t, `
root: /data/attune
min_pattern_frequency_for_composite: 1
accept_threshold: 0.6
max_recent_memory: 50
pair_db_path: /data/attune/pairs.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MinPatternFrequency != 1 {
		t.Errorf("min frequency = %d", cfg.MinPatternFrequency)
	}
	if cfg.AcceptThreshold != 0.6 {
		t.Errorf("accept threshold = %v", cfg.AcceptThreshold)
	}
	if cfg.MaxRecentMemory != 50 {
		t.Errorf("recent memory = %d", cfg.MaxRecentMemory)
	}
	if cfg.PairDBPath != "/data/attune/pairs.db" {
		t.Errorf("pair db = %q", cfg.PairDBPath)
	}
}

func TestLoadRejectsMissingRoot(t *testing.T) {
	path := writeConfig(t, "adaptive_signals: true\n")

	if _, err := Load(path); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "root: [unterminated\n")

	if _, err := Load(path); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
