package jitvm

import (
	"os"

	"github.com/goccy/go-yaml"
)

// VMConfig mirrors Options for file-based configuration, matching the way
// go-dws's CLI layers flags over a parsed config struct. LoadConfig reads a
// YAML document into one; New(Options) is still the only way to construct a
// VM, so callers do LoadConfig(path).ToOptions() then New(opts).
type VMConfig struct {
	OptimizationLevel int  `yaml:"optimizationLevel"`
	LoggingEnabled    bool `yaml:"loggingEnabled"`
	MaxCallDepth      int  `yaml:"maxCallDepth"`
	MaxArenaBucket    int  `yaml:"maxArenaBucket"`
}

// LoadConfig parses a YAML VMConfig document from path.
func LoadConfig(path string) (*VMConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &VMConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToOptions converts a loaded config into the Options New expects.
func (c *VMConfig) ToOptions() Options {
	return Options{
		OptimizationLevel: c.OptimizationLevel,
		EnableLogging:     c.LoggingEnabled,
		MaxCallDepth:      c.MaxCallDepth,
		MaxArenaBucket:    c.MaxArenaBucket,
	}
}
