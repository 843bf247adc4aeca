// Package config loads the YAML process configuration. Durations are kept
// as strings in the file ("1s", "500ms") and parsed through accessor
// methods so a malformed value degrades to the documented default instead
// of failing startup.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP/websocket listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// BusConfig holds message bus settings.
type BusConfig struct {
	HistoryLimit   int    `yaml:"history_limit"`
	RequestTimeout string `yaml:"request_timeout"`
}

// OrchestratorConfig holds delegation settings.
type OrchestratorConfig struct {
	CallTimeout string `yaml:"call_timeout"`
}

// TelemetryConfig holds the snapshot loop settings.
type TelemetryConfig struct {
	SnapshotInterval string `yaml:"snapshot_interval"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// CompletionConfig selects an optional completion backend for the counselor
// agent. An empty provider disables it.
type CompletionConfig struct {
	Provider string `yaml:"provider"` // "", "anthropic", "openai"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

// Config is the top-level process configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Bus          BusConfig          `yaml:"bus"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Logger       LoggerConfig       `yaml:"logger"`
	Completion   CompletionConfig   `yaml:"completion"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Addr: ":8000"},
		Bus:       BusConfig{HistoryLimit: 1000, RequestTimeout: "5s"},
		Telemetry: TelemetryConfig{SnapshotInterval: "1s"},
		Logger:    LoggerConfig{Level: "info", Format: "json"},
	}
}

// Load reads and parses the YAML file at path, layered over Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// RequestTimeout parses the bus request timeout, defaulting to 5s.
func (c *Config) RequestTimeout() time.Duration {
	return parseDuration(c.Bus.RequestTimeout, 5*time.Second)
}

// CallTimeout parses the orchestrator per-call timeout, defaulting to 3s.
func (c *Config) CallTimeout() time.Duration {
	return parseDuration(c.Orchestrator.CallTimeout, 3*time.Second)
}

// SnapshotInterval parses the telemetry push cadence, defaulting to 1s.
func (c *Config) SnapshotInterval() time.Duration {
	return parseDuration(c.Telemetry.SnapshotInterval, time.Second)
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
