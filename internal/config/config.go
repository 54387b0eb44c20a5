package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/checkenv/configs"
	cerrors "github.com/Aman-CERP/checkenv/internal/errors"
	"github.com/Aman-CERP/checkenv/internal/preflight"
	"github.com/Aman-CERP/checkenv/pkg/versioncmp"
)

// Project config file names, in lookup order.
const (
	ProjectConfigYAML = ".checkenv.yaml"
	ProjectConfigYML  = ".checkenv.yml"
)

// Config represents the complete checkenv configuration.
type Config struct {
	Version      int                `yaml:"version" json:"version"`
	Python       PythonConfig       `yaml:"python" json:"python"`
	Check        CheckConfig        `yaml:"check" json:"check"`
	Logging      LoggingConfig      `yaml:"logging" json:"logging"`
	Requirements []RequirementEntry `yaml:"requirements,omitempty" json:"requirements,omitempty"`
}

// PythonConfig configures the interpreter used to import components.
type PythonConfig struct {
	// Interpreter is a command name looked up on PATH, or a path. Empty
	// tries python3, then python.
	Interpreter string `yaml:"interpreter" json:"interpreter"`
}

// CheckConfig configures how a check run behaves.
type CheckConfig struct {
	// Profile names an embedded requirement table.
	Profile string `yaml:"profile" json:"profile"`

	// Scheme is the version ordering: "loose" or "semver".
	Scheme string `yaml:"scheme" json:"scheme"`

	// Quiet suppresses "Found" lines. Failures and the summary still print.
	Quiet bool `yaml:"quiet" json:"quiet"`

	// Color styles report lines when stdout is a terminal.
	Color bool `yaml:"color" json:"color"`
}

// LoggingConfig configures diagnostics.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file,omitempty" json:"file,omitempty"`
}

// NewConfig creates a new Config with the built-in defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Check: CheckConfig{
			Profile: configs.DefaultProfile,
			Scheme:  versioncmp.SchemeLoose,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file.
// It follows the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/checkenv/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/checkenv/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "checkenv", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "checkenv", "config.yaml")
	}
	return filepath.Join(home, ".config", "checkenv", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// LoadUserConfig loads the user configuration file on its own.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// Load loads configuration for the project in dir.
// It applies configuration in order of increasing precedence:
//  1. Built-in defaults
//  2. User config (~/.config/checkenv/config.yaml)
//  3. Project config (.checkenv.yaml in dir)
//  4. Environment variables (CHECKENV_*)
//
// The result is validated.
func Load(dir string) (*Config, error) {
	cfg, err := Read(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is like Load but does not validate, so that command line flags can
// be applied on top before the caller calls Validate.
func Read(dir string) (*Config, error) {
	cfg := NewConfig()

	userCfg, err := LoadUserConfig()
	if err != nil {
		return nil, cerrors.ConfigError("failed to load user config", err)
	}
	if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, cerrors.ConfigError("failed to load project config", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// ProjectConfigPath returns the project config file in dir, or "" if there
// is none. .yaml takes precedence over .yml.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{ProjectConfigYAML, ProjectConfigYML} {
		if p := filepath.Join(dir, name); fileExists(p) {
			return p
		}
	}
	return ""
}

func (c *Config) loadFromFile(dir string) error {
	path := ProjectConfigPath(dir)
	if path == "" {
		return nil
	}
	return c.loadYAML(path)
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c. A requirement list
// replaces the current one as a whole.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Python.Interpreter != "" {
		c.Python.Interpreter = other.Python.Interpreter
	}

	if other.Check.Profile != "" {
		c.Check.Profile = other.Check.Profile
	}
	if other.Check.Scheme != "" {
		c.Check.Scheme = other.Check.Scheme
	}
	if other.Check.Quiet {
		c.Check.Quiet = true
	}
	if other.Check.Color {
		c.Check.Color = true
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}

	if len(other.Requirements) > 0 {
		c.Requirements = append([]RequirementEntry(nil), other.Requirements...)
	}
}

// applyEnvOverrides applies CHECKENV_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CHECKENV_PYTHON"); v != "" {
		c.Python.Interpreter = v
	}
	if v := os.Getenv("CHECKENV_PROFILE"); v != "" {
		c.Check.Profile = v
	}
	if v := os.Getenv("CHECKENV_SCHEME"); v != "" {
		c.Check.Scheme = strings.ToLower(v)
	}
	if v := os.Getenv("CHECKENV_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// Validate validates the configuration and returns an error if invalid.
// Any error is fatal: no component is checked with a bad configuration.
func (c *Config) Validate() error {
	if _, err := versioncmp.Lookup(c.Check.Scheme); err != nil {
		return cerrors.ConfigError(fmt.Sprintf("check.scheme is invalid: %v", err), err).
			WithSuggestion("use one of: " + strings.Join(versioncmp.Names(), ", "))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return cerrors.ConfigError(
			fmt.Sprintf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level), nil)
	}

	if len(c.Requirements) > 0 {
		if _, err := BuildRequirementSet(c.Requirements, runtime.GOOS); err != nil {
			return err
		}
		return nil
	}

	if _, err := LoadProfile(c.Check.Profile); err != nil {
		return err
	}
	return nil
}

// RequirementSet returns the requirements to check on goos: the explicit
// requirement list when one is configured, the profile table otherwise.
func (c *Config) RequirementSet(goos string) (*preflight.RequirementSet, error) {
	if len(c.Requirements) > 0 {
		return BuildRequirementSet(c.Requirements, goos)
	}

	p, err := LoadProfile(c.Check.Profile)
	if err != nil {
		return nil, err
	}
	return p.RequirementSet(goos)
}

// Scheme returns the configured version ordering.
func (c *Config) Scheme() (versioncmp.Scheme, error) {
	return versioncmp.Lookup(c.Check.Scheme)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FindProjectRoot finds the directory whose project config applies to
// startDir. It walks up looking for a .checkenv.yaml/.yml file or a .git
// directory, and returns startDir itself when neither is found.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		if ProjectConfigPath(currentDir) != "" || dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return absDir, nil
		}
		currentDir = parentDir
	}
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
