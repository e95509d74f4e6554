package config

import "time"

// Default values for configuration
const (
	// Log defaults
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	// Server defaults
	DefaultServerAddr            = ":8080"
	DefaultServerShutdownTimeout = 10 * time.Second

	// AI defaults. Model, token budget and temperature match the widget's
	// original request defaults.
	DefaultAIBackend      = "openai"
	DefaultAIBaseURL      = "https://api.openai.com/v1"
	DefaultAIModel        = "gpt-4o-mini"
	DefaultAIMaxTokens    = 256
	DefaultAITemperature  = 0.7
	DefaultAITimeout      = 2 * time.Minute
	DefaultAISystemPrompt = "You are a helpful website assistant."

	// Database defaults
	DefaultDBPath = "conversations.db"

	// Scheduler defaults: nightly VACUUM at 04:00 UTC.
	DefaultMaintenanceEnabled = true
	DefaultMaintenanceCron    = "0 4 * * *"
)
