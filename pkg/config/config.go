// Copyright 2025 walteh LLC
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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse decodes data over the defaults
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	name := strings.ToLower(strings.TrimSpace(filename))
	for _, p := range parsers {
		if p.CanParse(name) {
			return p
		}
	}
	return nil
}

// Defaults filled in by Default and Validate
const (
	DefaultTool            = "svn"
	DefaultRefreshInterval = 200 * time.Millisecond
	DefaultBatchSize       = 20
	DefaultSidecarSuffix   = ".meta"
)

// Candidates are the file names searched by Find, in order
var Candidates = []string{
	".svnsync.yaml",
	".svnsync.yml",
	".svnsync.json",
	".svnsync.hcl",
	".svnsync.toml",
}

// 📚 Config is the complete svnsync configuration
type Config struct {
	Tool             string            `json:"tool,omitempty" yaml:"tool,omitempty" toml:"tool,omitempty" hcl:"tool,optional"`
	WorkingDirectory string            `json:"working_directory,omitempty" yaml:"working_directory,omitempty" toml:"working_directory,omitempty" hcl:"working_directory,optional"`
	RefreshInterval  string            `json:"refresh_interval,omitempty" yaml:"refresh_interval,omitempty" toml:"refresh_interval,omitempty" hcl:"refresh_interval,optional"`
	BatchSize        int               `json:"batch_size,omitempty" yaml:"batch_size,omitempty" toml:"batch_size,omitempty" hcl:"batch_size,optional"`
	Env              map[string]string `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty" hcl:"env,optional"`
	EnvFile          string            `json:"env_file,omitempty" yaml:"env_file,omitempty" toml:"env_file,omitempty" hcl:"env_file,optional"`
	SidecarSuffix    string            `json:"sidecar_suffix" yaml:"sidecar_suffix" toml:"sidecar_suffix" hcl:"sidecar_suffix,optional"`
	Ignore           []string          `json:"ignore,omitempty" yaml:"ignore,omitempty" toml:"ignore,omitempty" hcl:"ignore,optional"`
	SnapshotPath     string            `json:"snapshot_path,omitempty" yaml:"snapshot_path,omitempty" toml:"snapshot_path,omitempty" hcl:"snapshot_path,optional"`
	MetricsAddr      string            `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty" toml:"metrics_addr,omitempty" hcl:"metrics_addr,optional"`
	Watch            bool              `json:"watch,omitempty" yaml:"watch,omitempty" toml:"watch,omitempty" hcl:"watch,optional"`
	NonInteractive   bool              `json:"non_interactive" yaml:"non_interactive" toml:"non_interactive" hcl:"non_interactive,optional"`

	location string
	interval time.Duration
}

// 🏭 Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Tool:             DefaultTool,
		WorkingDirectory: ".",
		RefreshInterval:  DefaultRefreshInterval.String(),
		BatchSize:        DefaultBatchSize,
		SidecarSuffix:    DefaultSidecarSuffix,
		NonInteractive:   true,
		interval:         DefaultRefreshInterval,
	}
}

// 🔍 Find returns the first candidate config file in dir, or "" when none exists
func Find(dir string) string {
	for _, name := range Candidates {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, or the first candidate in dir when path is empty.
// Without any file the defaults are returned.
func LoadOrDefault(ctx context.Context, path, dir string) (*Config, error) {
	if path == "" {
		path = Find(dir)
	}
	if path == "" {
		zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("no config file, using defaults")
		cfg := Default()
		cfg.location = filepath.Join(dir, Candidates[0])
		return cfg, cfg.Validate()
	}
	return Load(ctx, path)
}

// 🔍 Validate fills defaults and checks values
func (cfg *Config) Validate() error {
	if cfg.Tool == "" {
		cfg.Tool = DefaultTool
	}
	if cfg.WorkingDirectory == "" {
		cfg.WorkingDirectory = "."
	}
	if cfg.BatchSize < 0 {
		return errors.Errorf("batch_size must not be negative, got %d", cfg.BatchSize)
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	if cfg.RefreshInterval == "" {
		cfg.RefreshInterval = DefaultRefreshInterval.String()
	}
	interval, err := time.ParseDuration(cfg.RefreshInterval)
	if err != nil {
		return errors.Errorf("parsing refresh_interval %q: %w", cfg.RefreshInterval, err)
	}
	if interval <= 0 {
		return errors.Errorf("refresh_interval must be positive, got %s", cfg.RefreshInterval)
	}
	cfg.interval = interval

	for _, pattern := range cfg.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	return nil
}

// Interval returns the parsed refresh interval
func (cfg *Config) Interval() time.Duration {
	if cfg.interval <= 0 {
		return DefaultRefreshInterval
	}
	return cfg.interval
}

// Location returns the file the config was loaded from
func (cfg *Config) Location() string {
	return cfg.location
}

// Resolve makes p absolute relative to the directory holding the config file
func (cfg *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	base := "."
	if cfg.location != "" {
		base = filepath.Dir(cfg.location)
	}
	return filepath.Join(base, p)
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s in %s every %s (batch %d)", cfg.Tool, cfg.WorkingDirectory, cfg.Interval(), cfg.BatchSize)
}
