package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the structure of an optional YAML config file. Every
// field is optional; set fields override the built-in defaults but not
// command-line flags.
type FileConfig struct {
	Store          string `yaml:"store"`
	Condition      string `yaml:"condition"`
	DataDir        string `yaml:"data_dir"`
	LogDir         string `yaml:"log_dir"`
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	DelayMillis    int    `yaml:"delay_ms"`
	MetricsAddr    string `yaml:"metrics_addr"`
}

// LoadFile reads a YAML config file. A missing file is not an error
// and returns nil.
func LoadFile(path string) (*FileConfig, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}
	return &fc, nil
}

// Apply copies the set fields of fc onto cfg.
func (fc *FileConfig) Apply(cfg *Config) {
	if fc == nil {
		return
	}
	if fc.Store != "" {
		cfg.StoreName = fc.Store
	}
	if fc.Condition != "" {
		cfg.Condition = fc.Condition
	}
	if fc.DataDir != "" {
		cfg.DataDir = fc.DataDir
	}
	if fc.LogDir != "" {
		cfg.LogDir = fc.LogDir
	}
	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if fc.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(fc.TimeoutSeconds) * time.Second
	}
	if fc.DelayMillis > 0 {
		cfg.Delay = time.Duration(fc.DelayMillis) * time.Millisecond
	}
	if fc.MetricsAddr != "" {
		cfg.MetricsAddr = fc.MetricsAddr
	}
}
