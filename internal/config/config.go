// Package config provides configuration management for buildcheck.
//
// Configuration is loaded from:
// 1. config.yaml file (optional)
// 2. Environment variables (standard names like LOG_LEVEL, REPORT_FORMAT)
// 3. Default values
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration structure.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Report ReportConfig `mapstructure:"report"`
	Check  CheckConfig  `mapstructure:"check"`
	Worker WorkerConfig `mapstructure:"worker"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// ReportConfig contains report rendering settings.
type ReportConfig struct {
	Format string `mapstructure:"format"` // text, json or sarif
}

// CheckConfig names the files a check run reads from a target directory.
// PolicyFile empty means the built-in default policy.
type CheckConfig struct {
	RecipeFile   string `mapstructure:"recipe_file"`
	ManifestFile string `mapstructure:"manifest_file"`
	PolicyFile   string `mapstructure:"policy_file"`
}

// WorkerConfig contains worker pool settings for multi-target runs.
type WorkerConfig struct {
	PoolSize int `mapstructure:"pool_size"`
}

// Load reads configuration from file and environment variables.
// Environment variables use standard names without prefix, with nested
// keys flattened: report.format → REPORT_FORMAT, check.recipe_file →
// CHECK_RECIPE_FILE.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/buildcheck")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file is optional, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks for configuration errors that would otherwise only
// surface mid-run.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q: want json or console", c.Log.Format)
	}
	switch c.Report.Format {
	case "text", "json", "sarif":
	default:
		return fmt.Errorf("report.format %q: want text, json or sarif", c.Report.Format)
	}
	if c.Check.RecipeFile == "" {
		return fmt.Errorf("check.recipe_file must not be empty")
	}
	if c.Worker.PoolSize < 1 {
		return fmt.Errorf("worker.pool_size must be at least 1, got %d", c.Worker.PoolSize)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Report
	v.SetDefault("report.format", "text")

	// Check
	v.SetDefault("check.recipe_file", "Dockerfile")
	v.SetDefault("check.manifest_file", "requirements.txt")
	v.SetDefault("check.policy_file", "")

	// Worker pool for multi-target fan-out
	v.SetDefault("worker.pool_size", 16)
}
