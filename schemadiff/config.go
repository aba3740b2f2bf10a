package schemadiff

import (
	"github.com/wudi/schemadiff/config"
	iconfig "github.com/wudi/schemadiff/internal/config"
)

// Config is the schemadiff configuration file model.
type Config = config.Config

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return config.DefaultConfig()
}

// LoadConfig loads and validates a configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	return iconfig.NewLoader().Load(path)
}

// ParseConfig parses and validates a configuration from YAML bytes.
func ParseConfig(data []byte) (*Config, error) {
	return iconfig.NewLoader().Parse(data)
}
