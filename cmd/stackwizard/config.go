package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	DataDir   string          `mapstructure:"data_dir"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Suggest   SuggestConfig   `mapstructure:"suggest"`
	Drafts    DraftsConfig    `mapstructure:"drafts"`
	Deploy    DeployConfig    `mapstructure:"deploy"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds the draft database configuration.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CatalogConfig points at an optional YAML template catalog.
// An empty path uses the builtin catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// SuggestConfig holds the suggestion service configuration.
// When disabled, the local heuristic rules are used.
type SuggestConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	URL      string        `mapstructure:"url"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
	RetryMax int           `mapstructure:"retry_max"`
}

// DraftsConfig holds draft persistence configuration.
type DraftsConfig struct {
	Key              string        `mapstructure:"key"`
	AutosaveInterval time.Duration `mapstructure:"autosave_interval"` // 0 disables autosave
}

// DeployConfig holds deploy executor configuration.
type DeployConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// SimulatorConfig holds deployment simulator configuration.
type SimulatorConfig struct {
	StageDelay time.Duration `mapstructure:"stage_delay"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file, environment and flags.
// flags may be nil; when set, --log-level and --log-format override the
// file and environment.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("database.dsn", "") // derived from data_dir when empty
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("catalog.path", "")

	v.SetDefault("suggest.enabled", false)
	v.SetDefault("suggest.url", "")
	v.SetDefault("suggest.api_key", "")
	v.SetDefault("suggest.model", "")
	v.SetDefault("suggest.timeout", "5s")
	v.SetDefault("suggest.retry_max", 2)

	v.SetDefault("drafts.key", "default")
	v.SetDefault("drafts.autosave_interval", "30s")
	v.SetDefault("deploy.output_dir", "") // derived from data_dir when empty
	v.SetDefault("simulator.stage_delay", "800ms")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// A missing file falls back to defaults
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("STACKWIZARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if f := flags.Lookup("log-level"); f != nil {
			_ = v.BindPFlag("log.level", f)
		}
		if f := flags.Lookup("log-format"); f != nil {
			_ = v.BindPFlag("log.format", f)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = filepath.Join(cfg.DataDir, "stackwizard.db")
	}
	if cfg.Deploy.OutputDir == "" {
		cfg.Deploy.OutputDir = filepath.Join(cfg.DataDir, "deployments")
	}

	return &cfg, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format. Logs go
// to w so commands that print manifests keep stdout clean.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}
