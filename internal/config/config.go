// Package config provides configuration management for crossfit.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/jmgilman/crossfit/internal/flags"
	"github.com/jmgilman/crossfit/internal/tool"
)

// Default configuration values.
const (
	DefaultConfigDir  = ".config/crossfit"
	DefaultConfigFile = "config.yaml"
	DefaultDataDir    = ".local/share/crossfit"
)

// Sentinel errors for configuration operations.
var (
	ErrInvalidKey   = errors.New("invalid configuration key")
	ErrInvalidTool  = errors.New("invalid tool name")
	ErrInvalidValue = errors.New("invalid configuration value")
	ErrNoEditor     = errors.New("$EDITOR environment variable not set")
)

// toolKeys maps tool types to their configuration key segment.
var toolKeys = map[tool.Type]string{
	tool.TypeJacoco:         "jacoco",
	tool.TypeDotnetCoverage: "dotnet_coverage",
}

// validKeys is built once from Config struct reflection.
var validKeys = buildValidKeys()

// validate is the shared validator instance.
var validate = validator.New()

// Config represents the full crossfit configuration.
type Config struct {
	Tools     ToolsConfig     `mapstructure:"tools" yaml:"tools"`
	Execution ExecutionConfig `mapstructure:"execution" yaml:"execution"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage" validate:"required"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// ToolsConfig holds where each tool is installed.
type ToolsConfig struct {
	Default        string `mapstructure:"default" yaml:"default" validate:"omitempty,oneof=jacoco dotnet-coverage"`
	Jacoco         string `mapstructure:"jacoco" yaml:"jacoco"`
	DotnetCoverage string `mapstructure:"dotnet_coverage" yaml:"dotnet_coverage"`
}

// ExecutionConfig holds how tool commands are run.
type ExecutionConfig struct {
	Catch   bool                      `mapstructure:"catch" yaml:"catch"`
	TempDir string                    `mapstructure:"temp_dir" yaml:"temp_dir"`
	Extras  map[string]map[string]any `mapstructure:"extras" yaml:"extras" validate:"dive,keys,oneof=jacoco dotnet_coverage,endkeys"`
}

// StorageConfig holds storage location configuration.
type StorageConfig struct {
	History string `mapstructure:"history" yaml:"history" validate:"required"`
	Logs    string `mapstructure:"logs" yaml:"logs" validate:"required"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Verbosity int `mapstructure:"verbosity" yaml:"verbosity" validate:"min=0,max=3"`
}

// Validate checks the configuration for errors using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// ToolPath returns the configured directory of a tool. Empty means PATH.
func (c *Config) ToolPath(t tool.Type) string {
	switch t {
	case tool.TypeJacoco:
		return c.Tools.Jacoco
	case tool.TypeDotnetCoverage:
		return c.Tools.DotnetCoverage
	default:
		return ""
	}
}

// Extras returns the extra flags configured for a tool.
func (c *Config) Extras(t tool.Type) (flags.Flags, error) {
	f, err := flags.FromConfig(c.Execution.Extras[toolKeys[t]])
	if err != nil {
		return nil, fmt.Errorf("execution.extras.%s: %w", toolKeys[t], err)
	}
	return f, nil
}

// Loader provides configuration loading and saving.
type Loader struct {
	v       *viper.Viper
	path    string
	homeDir string
}

// NewLoader creates a new configuration loader.
func NewLoader() (*Loader, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home directory: %w", err)
	}

	configPath := filepath.Join(home, DefaultConfigDir, DefaultConfigFile)

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("CROSSFIT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("tools.default", "CROSSFIT_TOOL")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("tools.jacoco", "CROSSFIT_JACOCO_PATH")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("tools.dotnet_coverage", "CROSSFIT_DOTNET_COVERAGE_PATH")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("execution.catch", "CROSSFIT_CATCH")

	l := &Loader{
		v:       v,
		path:    configPath,
		homeDir: home,
	}

	l.setDefaults()

	return l, nil
}

// setDefaults sets all default configuration values using Viper.
func (l *Loader) setDefaults() {
	l.v.SetDefault("tools.default", "")
	l.v.SetDefault("tools.jacoco", "")
	l.v.SetDefault("tools.dotnet_coverage", "")
	l.v.SetDefault("execution.catch", true)
	l.v.SetDefault("execution.temp_dir", "")
	l.v.SetDefault("execution.extras.jacoco", map[string]any{})
	l.v.SetDefault("execution.extras.dotnet_coverage", map[string]any{})
	l.v.SetDefault("storage.history", "~/.local/share/crossfit/history.json")
	l.v.SetDefault("storage.logs", "~/.local/share/crossfit/logs")
	l.v.SetDefault("log.verbosity", 0)
}

// Load reads the configuration file, creating defaults if it doesn't exist.
func (l *Loader) Load() (*Config, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		if err := l.createDefault(); err != nil {
			return nil, fmt.Errorf("create default config: %w", err)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Tools.Jacoco = l.expandPath(cfg.Tools.Jacoco)
	cfg.Tools.DotnetCoverage = l.expandPath(cfg.Tools.DotnetCoverage)
	cfg.Execution.TempDir = l.expandPath(cfg.Execution.TempDir)
	cfg.Storage.History = l.expandPath(cfg.Storage.History)
	cfg.Storage.Logs = l.expandPath(cfg.Storage.Logs)

	return &cfg, nil
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// Get returns a configuration value by dot-notation key.
func (l *Loader) Get(key string) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return l.v.Get(key), nil
}

// All returns every setting as a nested map.
func (l *Loader) All() map[string]any {
	return l.v.AllSettings()
}

// Set sets a configuration value by dot-notation key and writes the file.
func (l *Loader) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	switch key {
	case "tools.default":
		if value != "" {
			t, err := tool.ParseType(value)
			if err != nil {
				return fmt.Errorf("%w: %s (valid: %s)", ErrInvalidTool, value, strings.Join(tool.ValidTypeNames(), ", "))
			}
			value = canonicalToolName(t)
		}
	case "execution.catch":
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%w: %s expects a boolean, got %q", ErrInvalidValue, key, value)
		}
	case "log.verbosity":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > 3 {
			return fmt.Errorf("%w: %s expects 0-3, got %q", ErrInvalidValue, key, value)
		}
	}

	l.v.Set(key, value)
	return l.v.WriteConfig()
}

// createDefault writes the default configuration file using Viper.
func (l *Loader) createDefault() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	return l.v.SafeWriteConfigAs(l.path)
}

// expandPath replaces ~ with the home directory.
func (l *Loader) expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(l.homeDir, path[2:])
	}
	if path == "~" {
		return l.homeDir
	}
	return path
}

// ValidateKey checks if a key is a valid configuration key.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}

	if validKeys[key] {
		return nil
	}

	// execution.extras.<tool>[.<flag>]
	if rest, ok := strings.CutPrefix(key, "execution.extras."); ok {
		name, _, _ := strings.Cut(rest, ".")
		for _, k := range toolKeys {
			if k == name {
				return nil
			}
		}
		return fmt.Errorf("%w: %s (valid: jacoco, dotnet_coverage)", ErrInvalidTool, name)
	}

	return fmt.Errorf("%w: %s", ErrInvalidKey, key)
}

// canonicalToolName returns the name tools.default stores for t.
func canonicalToolName(t tool.Type) string {
	if t == tool.TypeJacoco {
		return "jacoco"
	}
	return "dotnet-coverage"
}

// buildValidKeys builds the set of valid keys from Config struct using reflection.
func buildValidKeys() map[string]bool {
	keys := make(map[string]bool)
	addKeysFromType(reflect.TypeOf(Config{}), "", keys)
	return keys
}

// addKeysFromType recursively adds keys from a struct type.
func addKeysFromType(t reflect.Type, prefix string, keys map[string]bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		keys[key] = true

		if field.Type.Kind() == reflect.Struct {
			addKeysFromType(field.Type, key, keys)
		}
	}
}
