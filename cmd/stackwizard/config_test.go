package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Config Loading Tests
// =============================================================================

func TestLoadConfig_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "data/stackwizard.db", cfg.Database.DSN)
	assert.Equal(t, "data/deployments", cfg.Deploy.OutputDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "", cfg.Catalog.Path)
	assert.False(t, cfg.Suggest.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Suggest.Timeout)
	assert.Equal(t, 2, cfg.Suggest.RetryMax)
	assert.Equal(t, "default", cfg.Drafts.Key)
	assert.Equal(t, 30*time.Second, cfg.Drafts.AutosaveInterval)
	assert.Equal(t, 800*time.Millisecond, cfg.Simulator.StageDelay)
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)

	configContent := `
server:
  host: "0.0.0.0"
  port: 9000
  shutdown_timeout: 15s

database:
  dsn: "/tmp/test.db"

log:
  level: "debug"
  format: "text"

catalog:
  path: "./catalog.yml"

suggest:
  enabled: true
  url: "http://localhost:11434"
  model: "llama3"
  timeout: 2s

drafts:
  key: "mine"
  autosave_interval: 0s

simulator:
  stage_delay: 10ms
`
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(configContent), 0644))

	cfg, err := LoadConfig(tmpFile, nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "/tmp/test.db", cfg.Database.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "./catalog.yml", cfg.Catalog.Path)
	assert.True(t, cfg.Suggest.Enabled)
	assert.Equal(t, "llama3", cfg.Suggest.Model)
	assert.Equal(t, 2*time.Second, cfg.Suggest.Timeout)
	assert.Equal(t, "mine", cfg.Drafts.Key)
	assert.Equal(t, time.Duration(0), cfg.Drafts.AutosaveInterval)
	assert.Equal(t, 10*time.Millisecond, cfg.Simulator.StageDelay)
}

func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	clearEnv(t)

	t.Setenv("STACKWIZARD_SERVER_PORT", "3000")
	t.Setenv("STACKWIZARD_DATABASE_DSN", "/custom/path.db")
	t.Setenv("STACKWIZARD_LOG_LEVEL", "warn")
	t.Setenv("STACKWIZARD_SUGGEST_API_KEY", "secret")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "/custom/path.db", cfg.Database.DSN)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "secret", cfg.Suggest.APIKey)
}

func TestLoadConfig_DataDirDerivesPaths(t *testing.T) {
	clearEnv(t)

	t.Setenv("STACKWIZARD_DATA_DIR", "/var/lib/stackwizard")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/stackwizard/stackwizard.db", cfg.Database.DSN)
	assert.Equal(t, "/var/lib/stackwizard/deployments", cfg.Deploy.OutputDir)
}

func TestLoadConfig_ExplicitDSNOverridesDataDir(t *testing.T) {
	clearEnv(t)

	t.Setenv("STACKWIZARD_DATA_DIR", "/var/lib/stackwizard")
	t.Setenv("STACKWIZARD_DATABASE_DSN", "/custom/path.db")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "/custom/path.db", cfg.Database.DSN)
}

func TestLoadConfig_FlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("STACKWIZARD_LOG_LEVEL", "warn")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "", "")
	flags.String("log-format", "", "")
	require.NoError(t, flags.Parse([]string{"--log-level", "debug"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format, "unset flag keeps the default")
}

func TestLoadConfig_FileNotFound_UsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("/nonexistent/path/config.yaml", nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	clearEnv(t)

	tmpFile := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("invalid: yaml: content: [[["), 0644))

	_, err := LoadConfig(tmpFile, nil)
	assert.Error(t, err)
}

// =============================================================================
// Logger Setup Tests
// =============================================================================

func TestSetupLogger_Levels(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		infoSeen  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"error", false, false},
		{"invalid", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := SetupLogger(&Config{Log: LogConfig{Level: tt.level, Format: "json"}}, &buf)

			logger.Debug("debug-line")
			logger.Info("info-line")

			assert.Equal(t, tt.debugSeen, bytes.Contains(buf.Bytes(), []byte("debug-line")))
			assert.Equal(t, tt.infoSeen, bytes.Contains(buf.Bytes(), []byte("info-line")))
		})
	}
}

func TestSetupLogger_Format(t *testing.T) {
	var jsonBuf, textBuf bytes.Buffer

	SetupLogger(&Config{Log: LogConfig{Level: "info", Format: "json"}}, &jsonBuf).Info("hello")
	SetupLogger(&Config{Log: LogConfig{Level: "info", Format: "text"}}, &textBuf).Info("hello")

	assert.Contains(t, jsonBuf.String(), `"msg":"hello"`)
	assert.Contains(t, textBuf.String(), "msg=hello")
}

func TestConfig_Address(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "localhost", Port: 8080}}
	assert.Equal(t, "localhost:8080", cfg.Server.Address())
}

// =============================================================================
// Test Helpers
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"STACKWIZARD_DATA_DIR",
		"STACKWIZARD_SERVER_HOST",
		"STACKWIZARD_SERVER_PORT",
		"STACKWIZARD_DATABASE_DSN",
		"STACKWIZARD_LOG_LEVEL",
		"STACKWIZARD_LOG_FORMAT",
		"STACKWIZARD_SUGGEST_API_KEY",
		"STACKWIZARD_DEPLOY_OUTPUT_DIR",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}
