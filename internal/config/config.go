// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for workdeck.
//
// Configuration file location (in order of precedence):
//   - Environment variables (WORKDECK_*)
//   - ~/.workdeck/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/workdeck/internal/tasks"
	"github.com/jeranaias/workdeck/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete workdeck configuration.
type Config struct {
	// Tasks configures the background task engine
	Tasks TasksConfig `toml:"tasks"`

	// Storage configures where projects and workspaces live
	Storage StorageConfig `toml:"storage"`

	// Logging configures the structured logger
	Logging LoggingConfig `toml:"logging"`

	// UI configures the terminal interface
	UI UIConfig `toml:"ui"`
}

// TasksConfig contains task engine configuration.
type TasksConfig struct {
	// HeavyLimit is how many filesystem-heavy tasks may run at once
	HeavyLimit int `toml:"heavy_limit"`
}

// StorageConfig contains paths for the project database and workspaces.
type StorageConfig struct {
	// DataDir holds the project database (default ~/.workdeck)
	DataDir string `toml:"data_dir"`
	// WorkspaceRoot is where branch workspaces are cloned
	// (default ~/.workdeck/workspaces)
	WorkspaceRoot string `toml:"workspace_root"`
	// Cloner selects how workspaces are created: "git" or "copy"
	Cloner string `toml:"cloner"`
	// Watch enables detection of workspaces removed outside workdeck
	Watch bool `toml:"watch"`
}

// LoggingConfig contains logger configuration.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level"`
	// Encoding is "console" or "json"
	Encoding string `toml:"encoding"`
	// Output is a file path; empty disables logging, "stderr" logs to stderr
	Output string `toml:"output"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// ShowRecent shows settled tasks in the drawer
	ShowRecent bool `toml:"show_recent"`
	// DrawerWidth is the width of the task drawer in columns
	DrawerWidth int `toml:"drawer_width"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	dir, err := ConfigDir()
	if err != nil {
		dir = ".workdeck"
	}
	return &Config{
		Tasks: TasksConfig{
			HeavyLimit: tasks.DefaultHeavyLimit,
		},
		Storage: StorageConfig{
			DataDir:       dir,
			WorkspaceRoot: filepath.Join(dir, "workspaces"),
			Cloner:        "git",
			Watch:         true,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "console",
			Output:   filepath.Join(dir, "workdeck.log"),
		},
		UI: UIConfig{
			ShowRecent:  true,
			DrawerWidth: 56,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the workdeck configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".workdeck"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DatabasePath returns the project database path.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Storage.DataDir, "workdeck.db")
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads ~/.workdeck/config.toml if it exists, falling back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return finish(Default())
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return finish(Default())
	}
	return LoadFromPath(path)
}

// LoadFromPath loads a TOML config file on top of the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ReadFile loads path on top of the defaults without environment overrides,
// for editing. A missing file yields the defaults.
func ReadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}
	cfg.SetDefaults()
	return cfg, nil
}

// Save writes the configuration to path atomically.
func Save(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# workdeck configuration file\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies WORKDECK_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	// WORKDECK_HEAVY_LIMIT
	if v := os.Getenv("WORKDECK_HEAVY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Tasks.HeavyLimit = n
		}
	}

	// WORKDECK_DATA_DIR
	if v := os.Getenv("WORKDECK_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}

	// WORKDECK_WORKSPACE_ROOT
	if v := os.Getenv("WORKDECK_WORKSPACE_ROOT"); v != "" {
		c.Storage.WorkspaceRoot = v
	}

	// WORKDECK_LOG_LEVEL
	if v := os.Getenv("WORKDECK_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Tasks.HeavyLimit == 0 {
		c.Tasks.HeavyLimit = d.Tasks.HeavyLimit
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = d.Storage.DataDir
	}
	if c.Storage.WorkspaceRoot == "" {
		c.Storage.WorkspaceRoot = filepath.Join(c.Storage.DataDir, "workspaces")
	}
	if c.Storage.Cloner == "" {
		c.Storage.Cloner = d.Storage.Cloner
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Encoding == "" {
		c.Logging.Encoding = d.Logging.Encoding
	}
	if c.UI.DrawerWidth == 0 {
		c.UI.DrawerWidth = d.UI.DrawerWidth
	}
}

// Set assigns one setting by its TOML key, e.g. "tasks.heavy_limit", and
// validates the result.
func (c *Config) Set(key, value string) error {
	parseInt := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, ValidateErrors{{Field: key, Message: fmt.Sprintf("not a number: %q", value)}}
		}
		return n, nil
	}
	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, ValidateErrors{{Field: key, Message: fmt.Sprintf("not a boolean: %q", value)}}
		}
		return b, nil
	}

	var err error
	switch key {
	case "tasks.heavy_limit":
		c.Tasks.HeavyLimit, err = parseInt()
	case "storage.data_dir":
		c.Storage.DataDir = value
	case "storage.workspace_root":
		c.Storage.WorkspaceRoot = value
	case "storage.cloner":
		c.Storage.Cloner = value
	case "storage.watch":
		c.Storage.Watch, err = parseBool()
	case "logging.level":
		c.Logging.Level = strings.ToLower(value)
	case "logging.encoding":
		c.Logging.Encoding = value
	case "logging.output":
		c.Logging.Output = value
	case "ui.show_recent":
		c.UI.ShowRecent, err = parseBool()
	case "ui.drawer_width":
		c.UI.DrawerWidth, err = parseInt()
	default:
		return ValidateErrors{{Field: key, Message: "unknown setting"}}
	}
	if err != nil {
		return err
	}
	return c.Validate()
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Tasks.HeavyLimit < 1 || c.Tasks.HeavyLimit > 64 {
		errs = append(errs, ValidationError{
			Field:   "tasks.heavy_limit",
			Message: fmt.Sprintf("must be between 1 and 64, got %d", c.Tasks.HeavyLimit),
		})
	}

	switch c.Storage.Cloner {
	case "git", "copy":
	default:
		errs = append(errs, ValidationError{
			Field:   "storage.cloner",
			Message: fmt.Sprintf("must be \"git\" or \"copy\", got %q", c.Storage.Cloner),
		})
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q", c.Logging.Level),
		})
	}

	switch c.Logging.Encoding {
	case "console", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.encoding",
			Message: fmt.Sprintf("must be \"console\" or \"json\", got %q", c.Logging.Encoding),
		})
	}

	if c.UI.DrawerWidth < 20 {
		errs = append(errs, ValidationError{
			Field:   "ui.drawer_width",
			Message: "must be at least 20",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
