package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/crossfit/internal/flags"
	"github.com/jmgilman/crossfit/internal/tool"
)

func validStorage() StorageConfig {
	return StorageConfig{History: "/tmp/history.json", Logs: "/tmp/logs"}
}

func TestLoader_Load_CreatesDefaultIfMissing(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	loader, err := NewLoader()
	require.NoError(t, err)

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Tools.Default)
	assert.True(t, cfg.Execution.Catch)
	assert.Equal(t, filepath.Join(tmpHome, ".local", "share", "crossfit", "history.json"), cfg.Storage.History)
	assert.Equal(t, filepath.Join(tmpHome, ".local", "share", "crossfit", "logs"), cfg.Storage.Logs)
	assert.Equal(t, 0, cfg.Log.Verbosity)
	require.NoError(t, cfg.Validate())

	_, err = os.Stat(loader.Path())
	assert.NoError(t, err)
}

func TestLoader_Load_ReadsExistingConfig(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	configDir := filepath.Join(tmpHome, ".config", "crossfit")
	require.NoError(t, os.MkdirAll(configDir, 0755))

	configContent := `
tools:
  default: jacoco
  jacoco: ~/tools/jacoco/lib
execution:
  catch: false
  extras:
    jacoco:
      port: 6300
      address: localhost
    dotnet_coverage:
      include:
        - "*.Core.dll"
storage:
  history: ~/custom/history.json
  logs: ~/custom/logs
log:
  verbosity: 2
`
	require.NoError(t, os.WriteFile(
		filepath.Join(configDir, "config.yaml"),
		[]byte(configContent),
		0644,
	))

	loader, err := NewLoader()
	require.NoError(t, err)

	cfg, err := loader.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "jacoco", cfg.Tools.Default)
	assert.Equal(t, filepath.Join(tmpHome, "tools", "jacoco", "lib"), cfg.ToolPath(tool.TypeJacoco))
	assert.Equal(t, "", cfg.ToolPath(tool.TypeDotnetCoverage))
	assert.False(t, cfg.Execution.Catch)
	assert.Equal(t, filepath.Join(tmpHome, "custom", "history.json"), cfg.Storage.History)
	assert.Equal(t, filepath.Join(tmpHome, "custom", "logs"), cfg.Storage.Logs)
	assert.Equal(t, 2, cfg.Log.Verbosity)

	extras, err := cfg.Extras(tool.TypeJacoco)
	require.NoError(t, err)
	assert.Equal(t, flags.Flags{"port": "6300", "address": "localhost"}, extras)

	extras, err = cfg.Extras(tool.TypeDotnetCoverage)
	require.NoError(t, err)
	assert.Equal(t, flags.Flags{"include": []string{"*.Core.dll"}}, extras)
}

func TestLoader_Load_EnvVarOverride(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)
	t.Setenv("CROSSFIT_TOOL", "dotnet-coverage")
	t.Setenv("CROSSFIT_DOTNET_COVERAGE_PATH", "/opt/dotnet/tools")
	t.Setenv("CROSSFIT_CATCH", "false")

	loader, err := NewLoader()
	require.NoError(t, err)

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "dotnet-coverage", cfg.Tools.Default)
	assert.Equal(t, "/opt/dotnet/tools", cfg.ToolPath(tool.TypeDotnetCoverage))
	assert.False(t, cfg.Execution.Catch)
}

func TestLoader_Path(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	loader, err := NewLoader()
	require.NoError(t, err)

	expected := filepath.Join(tmpHome, ".config", "crossfit", "config.yaml")
	assert.Equal(t, expected, loader.Path())
}

func TestLoader_Get(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	loader, err := NewLoader()
	require.NoError(t, err)

	_, err = loader.Load()
	require.NoError(t, err)

	t.Run("valid key returns value", func(t *testing.T) {
		val, err := loader.Get("storage.logs")
		require.NoError(t, err)
		assert.Equal(t, "~/.local/share/crossfit/logs", val)
	})

	t.Run("invalid key returns error", func(t *testing.T) {
		_, err := loader.Get("invalid.key")
		assert.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("all settings", func(t *testing.T) {
		all := loader.All()
		assert.Contains(t, all, "tools")
		assert.Contains(t, all, "storage")
	})
}

func TestLoader_Set(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	loader, err := NewLoader()
	require.NoError(t, err)

	_, err = loader.Load()
	require.NoError(t, err)

	t.Run("sets valid key", func(t *testing.T) {
		require.NoError(t, loader.Set("tools.jacoco", "/opt/jacoco"))

		val, err := loader.Get("tools.jacoco")
		require.NoError(t, err)
		assert.Equal(t, "/opt/jacoco", val)
	})

	t.Run("normalizes tool names", func(t *testing.T) {
		require.NoError(t, loader.Set("tools.default", "JaCoCo"))

		val, err := loader.Get("tools.default")
		require.NoError(t, err)
		assert.Equal(t, "jacoco", val)
	})

	t.Run("sets extras", func(t *testing.T) {
		require.NoError(t, loader.Set("execution.extras.jacoco.port", "6300"))

		cfg, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, "6300", cfg.Execution.Extras["jacoco"]["port"])
	})

	t.Run("rejects invalid key", func(t *testing.T) {
		assert.ErrorIs(t, loader.Set("invalid.key", "value"), ErrInvalidKey)
	})

	t.Run("rejects invalid tool", func(t *testing.T) {
		assert.ErrorIs(t, loader.Set("tools.default", "gcov"), ErrInvalidTool)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		assert.ErrorIs(t, loader.Set("execution.catch", "maybe"), ErrInvalidValue)
		assert.ErrorIs(t, loader.Set("log.verbosity", "7"), ErrInvalidValue)
	})

	t.Run("allows empty tool", func(t *testing.T) {
		assert.NoError(t, loader.Set("tools.default", ""))
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := &Config{
			Tools:     ToolsConfig{Default: "jacoco"},
			Execution: ExecutionConfig{Extras: map[string]map[string]any{"jacoco": {"port": "6300"}}},
			Storage:   validStorage(),
		}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("invalid default tool", func(t *testing.T) {
		cfg := &Config{Tools: ToolsConfig{Default: "gcov"}, Storage: validStorage()}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Default")
	})

	t.Run("invalid extras tool", func(t *testing.T) {
		cfg := &Config{
			Execution: ExecutionConfig{Extras: map[string]map[string]any{"gcov": {}}},
			Storage:   validStorage(),
		}
		assert.Error(t, cfg.Validate())
	})

	t.Run("verbosity out of range", func(t *testing.T) {
		cfg := &Config{Storage: validStorage(), Log: LogConfig{Verbosity: 4}}
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing storage paths", func(t *testing.T) {
		cfg := &Config{Storage: StorageConfig{Logs: "/tmp/logs"}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "History")
	})
}

func TestConfig_Extras(t *testing.T) {
	t.Run("missing tool returns empty flags", func(t *testing.T) {
		extras, err := (&Config{}).Extras(tool.TypeJacoco)
		require.NoError(t, err)
		assert.Empty(t, extras)
	})

	t.Run("invalid value", func(t *testing.T) {
		cfg := &Config{Execution: ExecutionConfig{Extras: map[string]map[string]any{
			"jacoco": {"nested": map[string]any{}},
		}}}
		_, err := cfg.Extras(tool.TypeJacoco)
		assert.ErrorIs(t, err, flags.ErrInvalidFlagValue)
	})
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"tools.default is valid", "tools.default", nil},
		{"tools.jacoco is valid", "tools.jacoco", nil},
		{"tools.dotnet_coverage is valid", "tools.dotnet_coverage", nil},
		{"execution.catch is valid", "execution.catch", nil},
		{"execution.temp_dir is valid", "execution.temp_dir", nil},
		{"execution.extras is valid", "execution.extras", nil},
		{"storage.history is valid", "storage.history", nil},
		{"storage.logs is valid", "storage.logs", nil},
		{"log.verbosity is valid", "log.verbosity", nil},
		{"tools is valid", "tools", nil},
		{"execution.extras.jacoco is valid", "execution.extras.jacoco", nil},
		{"execution.extras.dotnet_coverage.output-format is valid", "execution.extras.dotnet_coverage.output-format", nil},
		{"execution.extras.gcov returns error", "execution.extras.gcov", ErrInvalidTool},
		{"unknown.key returns error", "unknown.key", ErrInvalidKey},
		{"empty key returns error", "", ErrInvalidKey},
		{"random key returns error", "foo", ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoader_expandPath(t *testing.T) {
	tmpHome := "/home/test"
	loader := &Loader{homeDir: tmpHome}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"expands ~/ prefix", "~/foo", filepath.Join(tmpHome, "foo")},
		{"expands ~ alone", "~", tmpHome},
		{"preserves absolute path", "/absolute/path", "/absolute/path"},
		{"preserves relative path", "relative/path", "relative/path"},
		{"preserves empty path", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := loader.expandPath(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}
