// Package config loads the schemadiff configuration file.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/wudi/schemadiff/config"
)

var (
	validLogFormats    = map[string]bool{"json": true, "console": true}
	validLogLevels     = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validHistoryModes  = map[string]bool{"warn": true, "block": true}
	validOutputFormats = map[string]bool{"yaml": true, "json": true, "template": true}
	validRuleActions   = map[string]bool{"": true, "fail": true, "warn": true}
)

// Loader handles configuration loading and parsing
type Loader struct {
	envPattern *regexp.Regexp
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		envPattern: regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`),
	}
}

// Load reads and parses a configuration file
func (l *Loader) Load(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return l.Parse(data)
}

// Parse parses configuration from YAML bytes. Unset keys keep their
// defaults; unknown keys are rejected.
func (l *Loader) Parse(data []byte) (*config.Config, error) {
	expanded := l.expandEnvVars(string(data))

	cfg := config.DefaultConfig()
	if strings.TrimSpace(expanded) != "" {
		if err := yaml.UnmarshalWithOptions([]byte(expanded), cfg, yaml.DisallowUnknownField()); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := l.validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} with environment variable values
func (l *Loader) expandEnvVars(input string) string {
	return l.envPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match // Keep original if env var not set
	})
}

// validate checks configuration for errors
func (l *Loader) validate(cfg *config.Config) error {
	if !validLogFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging: invalid format: %s", cfg.Logging.Format)
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging: invalid level: %s", cfg.Logging.Level)
	}
	if cfg.Logging.Output == "" {
		return fmt.Errorf("logging: output is required")
	}

	if cfg.Cache.Enabled {
		if cfg.Cache.Size <= 0 {
			return fmt.Errorf("cache: size must be positive, got %d", cfg.Cache.Size)
		}
		if cfg.Cache.TTL < 0 {
			return fmt.Errorf("cache: ttl must not be negative")
		}
	}

	if cfg.History.Enabled {
		if !validHistoryModes[cfg.History.Mode] {
			return fmt.Errorf("history: mode must be warn or block, got %q", cfg.History.Mode)
		}
		if cfg.History.StoreDir == "" {
			return fmt.Errorf("history: store_dir is required")
		}
		if cfg.History.MaxVersions < 0 {
			return fmt.Errorf("history: max_versions must not be negative")
		}
	}

	if cfg.Batch.Concurrency <= 0 {
		return fmt.Errorf("batch: concurrency must be positive, got %d", cfg.Batch.Concurrency)
	}

	if !validOutputFormats[cfg.Output.Format] {
		return fmt.Errorf("output: invalid format: %s", cfg.Output.Format)
	}
	if cfg.Output.Format == "template" && cfg.Output.Template == "" {
		return fmt.Errorf("output: template is required when format is template")
	}

	seen := make(map[string]bool, len(cfg.Rules))
	for i, r := range cfg.Rules {
		if r.ID == "" {
			return fmt.Errorf("rules[%d]: id is required", i)
		}
		if seen[r.ID] {
			return fmt.Errorf("rules[%d]: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = true
		if r.Expression == "" {
			return fmt.Errorf("rule %s: expression is required", r.ID)
		}
		if !validRuleActions[r.Action] {
			return fmt.Errorf("rule %s: action must be fail or warn, got %q", r.ID, r.Action)
		}
	}

	return nil
}
