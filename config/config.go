package config

import "time"

// Config represents the complete schemadiff configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Cache   CacheConfig   `yaml:"cache"`
	Metrics MetricsConfig `yaml:"metrics"`
	History HistoryConfig `yaml:"history"`
	Batch   BatchConfig   `yaml:"batch"`
	Output  OutputConfig  `yaml:"output"`
	Rules   []RuleConfig  `yaml:"rules"`
}

// LoggingConfig defines logging settings
type LoggingConfig struct {
	Format   string            `yaml:"format"` // "json" or "console"
	Level    string            `yaml:"level"`
	Output   string            `yaml:"output"` // "stderr", "stdout" or a file path
	Rotation LogRotationConfig `yaml:"rotation"`
}

// LogRotationConfig defines log file rotation settings (powered by lumberjack).
type LogRotationConfig struct {
	MaxSize    int  `yaml:"max_size"`    // max megabytes before rotation (default 100)
	MaxBackups int  `yaml:"max_backups"` // old rotated files to keep (default 3)
	MaxAge     int  `yaml:"max_age"`     // days to retain old files (default 28)
	Compress   bool `yaml:"compress"`    // gzip rotated files (default true)
	LocalTime  bool `yaml:"local_time"`  // use local time in backup filenames (default false)
}

// CacheConfig controls the parsed-document cache shared by analyzers.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"` // max cached documents per format
	TTL     time.Duration `yaml:"ttl"`
}

// MetricsConfig controls comparison metrics.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Textfile string `yaml:"textfile"` // write Prometheus text format here on exit
}

// HistoryConfig defines the schema version history used by check and watch.
type HistoryConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Mode           string `yaml:"mode"`             // "warn" (log) or "block" (reject)
	StoreDir       string `yaml:"store_dir"`        // directory for schema version history
	MaxVersions    int    `yaml:"max_versions"`     // max stored versions per subject (default 10)
	FailOnBreaking bool   `yaml:"fail_on_breaking"` // in block mode, also reject compatible but breaking versions
}

// BatchConfig controls batch comparisons.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// OutputConfig selects how results are printed.
type OutputConfig struct {
	Format   string `yaml:"format"`   // "yaml", "json" or "template"
	Template string `yaml:"template"` // Go template text, used with format "template"
	Query    string `yaml:"query"`    // JMESPath expression applied before formatting
}

// RuleConfig is a gate evaluated against every comparison result.
type RuleConfig struct {
	ID         string `yaml:"id"`
	Expression string `yaml:"expression"` // expr-lang boolean expression
	Action     string `yaml:"action"`     // "fail" (default) or "warn"
	Message    string `yaml:"message"`
	Enabled    *bool  `yaml:"enabled"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Format: "console",
			Level:  "warn",
			Output: "stderr",
			Rotation: LogRotationConfig{
				MaxSize:    100,
				MaxBackups: 3,
				MaxAge:     28,
				Compress:   true,
			},
		},
		Cache: CacheConfig{
			Size: 256,
			TTL:  10 * time.Minute,
		},
		History: HistoryConfig{
			Enabled:     true,
			Mode:        "warn",
			StoreDir:    ".schemadiff/history",
			MaxVersions: 10,
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		Output: OutputConfig{
			Format: "yaml",
		},
	}
}
