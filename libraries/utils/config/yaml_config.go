// Copyright 2026 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the treedelta YAML configuration file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/dolthub/treedelta/libraries/delta/txdelta"
	"github.com/dolthub/treedelta/libraries/utils/filesys"
)

const (
	DefaultLogLevel        = "info"
	DefaultWindowSize      = txdelta.DefaultWindowSize
	DefaultVerifyChecksums = true
	DefaultTimeout         = time.Duration(0)
	DefaultParallel        = false
)

// YAMLConfig is the contents of a config file. Unset fields are nil and take their defaults.
type YAMLConfig struct {
	LogLevelStr     *string `yaml:"log_level,omitempty"`
	WindowSize_     *int    `yaml:"window_size,omitempty"`
	VerifyChecksums *bool   `yaml:"verify_checksums,omitempty"`
	TimeoutStr      *string `yaml:"timeout,omitempty"`
	Parallel_       *bool   `yaml:"parallel,omitempty"`
}

func nillableStrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ptr[T any](v T) *T {
	return &v
}

// NewYamlConfig parses a config file. Unknown keys are an error.
func NewYamlConfig(configFileData []byte) (*YAMLConfig, error) {
	var cfg YAMLConfig
	if err := yaml.UnmarshalStrict(configFileData, &cfg); err != nil {
		return nil, err
	}

	if cfg.LogLevelStr != nil {
		cfg.LogLevelStr = nillableStrPtr(strings.ToLower(*cfg.LogLevelStr))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// YamlConfigFromFile reads and parses the config file at path.
func YamlConfigFromFile(fs filesys.ReadableFS, path string) (*YAMLConfig, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Failed to read file '%s'. Error: %s", path, err.Error())
	}

	cfg, err := NewYamlConfig(data)
	if err != nil {
		return nil, fmt.Errorf("Failed to parse yaml file '%s'. Error: %s", path, err.Error())
	}

	return cfg, nil
}

func (cfg YAMLConfig) validate() error {
	if cfg.LogLevelStr != nil {
		if _, err := logrus.ParseLevel(*cfg.LogLevelStr); err != nil {
			return fmt.Errorf("invalid log_level: %w", err)
		}
	}

	if cfg.WindowSize_ != nil && *cfg.WindowSize_ <= 0 {
		return fmt.Errorf("window_size must be positive, got %d", *cfg.WindowSize_)
	}

	if cfg.TimeoutStr != nil {
		d, err := time.ParseDuration(*cfg.TimeoutStr)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("timeout must not be negative, got %s", d)
		}
	}

	return nil
}

func defaultYAMLConfig() YAMLConfig {
	return YAMLConfig{
		LogLevelStr:     ptr(DefaultLogLevel),
		WindowSize_:     ptr(DefaultWindowSize),
		VerifyChecksums: ptr(DefaultVerifyChecksums),
		TimeoutStr:      ptr(DefaultTimeout.String()),
		Parallel_:       ptr(DefaultParallel),
	}
}

// DefaultConfig returns a config with every field set to its default.
func DefaultConfig() YAMLConfig {
	return defaultYAMLConfig()
}

func (cfg YAMLConfig) withDefaultsFilledIn() YAMLConfig {
	defaults := defaultYAMLConfig()
	withDefaults := cfg

	if withDefaults.LogLevelStr == nil {
		withDefaults.LogLevelStr = defaults.LogLevelStr
	}
	if withDefaults.WindowSize_ == nil {
		withDefaults.WindowSize_ = defaults.WindowSize_
	}
	if withDefaults.VerifyChecksums == nil {
		withDefaults.VerifyChecksums = defaults.VerifyChecksums
	}
	if withDefaults.TimeoutStr == nil {
		withDefaults.TimeoutStr = defaults.TimeoutStr
	}
	if withDefaults.Parallel_ == nil {
		withDefaults.Parallel_ = defaults.Parallel_
	}

	return withDefaults
}

// String returns the YAML representation of the config with defaults filled in.
func (cfg YAMLConfig) String() string {
	data, err := yaml.Marshal(cfg.withDefaultsFilledIn())
	if err != nil {
		return "Failed to marshal as yaml: " + err.Error()
	}
	return string(data)
}

// LogLevel returns the logrus level to log at.
func (cfg YAMLConfig) LogLevel() logrus.Level {
	if cfg.LogLevelStr == nil {
		return logrus.InfoLevel
	}

	lvl, err := logrus.ParseLevel(*cfg.LogLevelStr)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// WindowSize returns the largest number of target bytes in one delta window.
func (cfg YAMLConfig) WindowSize() int {
	if cfg.WindowSize_ == nil {
		return DefaultWindowSize
	}
	return *cfg.WindowSize_
}

// VerifyChecksum returns whether appliers check base and result checksums.
func (cfg YAMLConfig) VerifyChecksum() bool {
	if cfg.VerifyChecksums == nil {
		return DefaultVerifyChecksums
	}
	return *cfg.VerifyChecksums
}

// Timeout returns how long an edit may run. Zero means no limit.
func (cfg YAMLConfig) Timeout() time.Duration {
	if cfg.TimeoutStr == nil {
		return DefaultTimeout
	}

	d, err := time.ParseDuration(*cfg.TimeoutStr)
	if err != nil {
		return DefaultTimeout
	}
	return d
}

// Parallel returns whether each target gets its own concurrently driven edit.
func (cfg YAMLConfig) Parallel() bool {
	if cfg.Parallel_ == nil {
		return DefaultParallel
	}
	return *cfg.Parallel_
}

// SetLogLevel overrides the log level, as a command line flag does.
func (cfg *YAMLConfig) SetLogLevel(lvl logrus.Level) {
	cfg.LogLevelStr = ptr(lvl.String())
}

// SetTimeout overrides the timeout.
func (cfg *YAMLConfig) SetTimeout(d time.Duration) {
	cfg.TimeoutStr = ptr(d.String())
}

// SetParallel overrides the parallel setting.
func (cfg *YAMLConfig) SetParallel(parallel bool) {
	cfg.Parallel_ = &parallel
}
