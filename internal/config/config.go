package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds the application configuration.
type Config struct {
	GeminiAPIKey string  `yaml:"gemini_api_key"`
	SaveDir      string  `yaml:"save_dir"`
	Store        string  `yaml:"store"`
	Pattern      string  `yaml:"pattern"`
	Tolerance    float64 `yaml:"tolerance"`
	Threshold    float64 `yaml:"threshold"`
	Radius       float64 `yaml:"radius"`
	Sound        bool    `yaml:"sound"`
	LogFile      string  `yaml:"log_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SaveDir:   ".saves",
		Store:     StoreFile,
		Pattern:   "chartres",
		Tolerance: 1.5,
		Threshold: 0.9,
		Radius:    30,
		LogFile:   "athanor.log",
	}
}

// LoadConfig loads the configuration: defaults, then the YAML file named by
// ATHANOR_CONFIG if set, then environment variables.
func LoadConfig() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path := getenv("ATHANOR_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	for env, dst := range map[string]*string{
		"GEMINI_API_KEY":   &cfg.GeminiAPIKey,
		"ATHANOR_SAVE_DIR": &cfg.SaveDir,
		"ATHANOR_STORE":    &cfg.Store,
		"ATHANOR_PATTERN":  &cfg.Pattern,
		"ATHANOR_LOG_FILE": &cfg.LogFile,
	} {
		if v := getenv(env); v != "" {
			*dst = v
		}
	}

	for env, dst := range map[string]*float64{
		"ATHANOR_TOLERANCE": &cfg.Tolerance,
		"ATHANOR_THRESHOLD": &cfg.Threshold,
		"ATHANOR_RADIUS":    &cfg.Radius,
	} {
		v := getenv(env)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, env, v)
		}
		*dst = f
	}

	if v := getenv("ATHANOR_SOUND"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: ATHANOR_SOUND=%q is not a boolean", ErrInvalid, v)
		}
		cfg.Sound = b
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and the store backend.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalid, c.Store)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive", ErrInvalid)
	}
	if c.Threshold <= 0 || c.Threshold > 1 {
		return fmt.Errorf("%w: threshold must be in (0,1]", ErrInvalid)
	}
	if c.Radius <= 0 {
		return fmt.Errorf("%w: radius must be positive", ErrInvalid)
	}
	return nil
}
