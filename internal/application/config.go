package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the top-level service configuration. Every field has a
// sensible default so an empty file yields a runnable service; only
// the bundle path is required.
type Config struct {
	// BundlePath locates the artifact bundle loaded at startup.
	BundlePath string `yaml:"bundle_path" validate:"required"`

	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server"`

	// Explain configures the explanation endpoint and its cache.
	Explain ExplainConfig `yaml:"explain"`

	// Logging configures structured log output.
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP listener and its request limits.
type ServerConfig struct {
	// Addr is the listen address in host:port form.
	Addr string `yaml:"addr" validate:"required,hostname_port"`

	// ReadTimeoutSeconds bounds how long a request body read may take.
	ReadTimeoutSeconds int `yaml:"read_timeout_seconds" validate:"min=1,max=300"`

	// WriteTimeoutSeconds bounds how long a response write may take.
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds" validate:"min=1,max=300"`

	// ShutdownGraceSeconds bounds graceful shutdown after SIGTERM.
	ShutdownGraceSeconds int `yaml:"shutdown_grace_seconds" validate:"min=1,max=300"`

	// RateLimitPerSecond caps accepted requests per second.
	// Zero disables rate limiting.
	RateLimitPerSecond float64 `yaml:"rate_limit_per_second" validate:"min=0"`

	// RateBurst is the burst allowance when rate limiting is enabled.
	RateBurst int `yaml:"rate_burst" validate:"min=0"`
}

// ReadTimeout returns the configured read timeout as a duration.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the configured write timeout as a duration.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// ShutdownGrace returns the configured shutdown grace as a duration.
func (s ServerConfig) ShutdownGrace() time.Duration {
	return time.Duration(s.ShutdownGraceSeconds) * time.Second
}

// ExplainConfig configures the explanation endpoint.
type ExplainConfig struct {
	// TopK is how many features each explanation ranks into
	// risk drivers and protective factors.
	TopK int `yaml:"top_k" validate:"min=1,max=100"`

	// CacheCapacity bounds the explanation cache entry count.
	CacheCapacity int `yaml:"cache_capacity" validate:"min=1,max=1000000"`
}

// LoggingConfig configures structured log output.
type LoggingConfig struct {
	// Level is the minimum level emitted.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns the configuration used when a field, or the
// whole file, is absent.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:                 ":8000",
			ReadTimeoutSeconds:   10,
			WriteTimeoutSeconds:  30,
			ShutdownGraceSeconds: 10,
			RateLimitPerSecond:   0,
			RateBurst:            0,
		},
		Explain: ExplainConfig{
			TopK:          5,
			CacheCapacity: 1024,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads a service configuration file, fills unset fields
// with defaults, and validates the result. LoadConfig returns an
// error if the file cannot be read, parsed, or validated.
func LoadConfig(path string) (Config, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses a service configuration from YAML bytes, fills
// unset fields with defaults, and validates the result.
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.

	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("YAML decode failed: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks the configuration against its field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Server.RateLimitPerSecond > 0 && c.Server.RateBurst < 1 {
		return fmt.Errorf("rate_burst must be at least 1 when rate limiting is enabled")
	}
	return nil
}
