// Package config provides configuration loading, validation, and defaults
// for the leadchat server. It handles reading from YAML files and
// LEADCHAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrConfiguration wraps all configuration loading and validation failures.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration parameters for all
// components: logging, HTTP server, AI integration, database, and the
// maintenance scheduler.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	AI        AIConfig        `mapstructure:"ai"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig controls log verbosity and output format.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s,max=1m"`
}

// AIConfig controls the completion upstream.
//
// Token is deliberately not required at load time: the original deployment
// starts without a credential and reports the misconfiguration per request,
// so a missing token must not prevent startup.
type AIConfig struct {
	Backend     string        `mapstructure:"backend"       validate:"required,oneof=openai gemini"`
	Token       string        `mapstructure:"token"`
	BaseURL     string        `mapstructure:"base_url"      validate:"required,url"`
	Model       string        `mapstructure:"model"         validate:"required"`
	MaxTokens   int           `mapstructure:"max_tokens"    validate:"required,min=1"`
	Temperature float32       `mapstructure:"temperature"   validate:"min=0,max=2"`
	Timeout     time.Duration `mapstructure:"timeout"       validate:"required,min=1s,max=10m"`
	SystemPrompt string       `mapstructure:"system_prompt" validate:"required"`
}

// DatabaseConfig controls the SQLite store.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig controls the periodic database maintenance job.
type SchedulerConfig struct {
	MaintenanceEnabled bool   `mapstructure:"maintenance_enabled"`
	MaintenanceCron    string `mapstructure:"maintenance_cron" validate:"required"`
}

// Validate checks the complete configuration against the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}
