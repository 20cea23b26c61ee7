package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
	cfg, err := load(env(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SaveDir != ".saves" || cfg.Store != StoreFile || cfg.Pattern != "chartres" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Tolerance != 1.5 || cfg.Threshold != 0.9 || cfg.Radius != 30 {
		t.Errorf("unexpected numeric defaults %+v", cfg)
	}
	if cfg.GeminiAPIKey != "" {
		t.Error("API key should be optional")
	}
}

func TestFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "athanor.yaml")
	data := "store: sqlite\npattern: spiral\nradius: 40\nsound: true\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := load(env(map[string]string{
		"ATHANOR_CONFIG":  path,
		"ATHANOR_PATTERN": "mandala",
		"GEMINI_API_KEY":  "k",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreSQLite || !cfg.Sound || cfg.Radius != 40 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Pattern != "mandala" || cfg.GeminiAPIKey != "k" {
		t.Errorf("env should override file: %+v", cfg)
	}
}

func TestInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad number": {"ATHANOR_TOLERANCE": "wide"},
		"bad bool":   {"ATHANOR_SOUND": "loud"},
		"bad store":  {"ATHANOR_STORE": "redis"},
		"threshold":  {"ATHANOR_THRESHOLD": "1.5"},
		"radius":     {"ATHANOR_RADIUS": "0"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := load(env(vars)); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, err := load(env(map[string]string{"ATHANOR_CONFIG": filepath.Join(t.TempDir(), "nope.yaml")}))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
