// Package config loads planviz settings from defaults, an optional YAML file,
// a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/mhpenta/planviz"
)

// ErrMissingAPIKey is returned by Validate when no Gemini API key is configured.
var ErrMissingAPIKey = errors.New("config: gemini api key is required (set GEMINI_API_KEY)")

// Config is the root configuration.
type Config struct {
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Output    OutputConfig    `mapstructure:"output"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// GeminiConfig selects the API key and models.
type GeminiConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	TextModel  string        `mapstructure:"text_model"`
	ImageModel string        `mapstructure:"image_model"`
	Timeout    time.Duration `mapstructure:"timeout"`

	// SafetyThreshold is applied to every harm category, e.g. BLOCK_ONLY_HIGH.
	// Empty keeps the provider defaults.
	SafetyThreshold string `mapstructure:"safety_threshold"`

	// Thinking enables thinking mode for the text stages
	Thinking bool `mapstructure:"thinking"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// MaxUploadBytes bounds each multipart request
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// LogConfig configures slog.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig is where the CLI writes renders.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Gemini.TextModel == "" || c.Gemini.ImageModel == "" {
		return errors.New("config: gemini text and image models must not be empty")
	}
	if _, err := planviz.ParseSafetyThreshold(c.Gemini.SafetyThreshold); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
