package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete client configuration
type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Audio    AudioConfig    `yaml:"audio"`
	Capture  CaptureConfig  `yaml:"capture"`
	Ops      OpsConfig      `yaml:"ops"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BackendConfig contains job-tracking backend API configuration
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"` // seconds
}

// AnalysisConfig contains AI summarization configuration
type AnalysisConfig struct {
	Enabled bool `yaml:"enabled"`
	Timeout int  `yaml:"timeout"` // seconds
}

// AudioConfig contains the normalization target parameters
type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
	BitDepth   int `yaml:"bit_depth"`
}

// CaptureConfig contains microphone capture parameters
type CaptureConfig struct {
	DeviceSampleRate int `yaml:"device_sample_rate"`
	DeviceChannels   int `yaml:"device_channels"`
	MaxDuration      int `yaml:"max_duration"`  // seconds
	TickInterval     int `yaml:"tick_interval"` // seconds
}

// OpsConfig contains the local metrics/health listener configuration
type OpsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Backend:  BackendConfig{BaseURL: "http://localhost:3001/api", Timeout: 30},
		Analysis: AnalysisConfig{Enabled: true, Timeout: 60},
		Audio:    AudioConfig{SampleRate: 16000, Channels: 1, BitDepth: 16},
		Capture:  CaptureConfig{DeviceSampleRate: 48000, DeviceChannels: 1, MaxDuration: 120, TickInterval: 1},
		Ops:      OpsConfig{Enabled: false, Address: "127.0.0.1:9190"},
		Logging:  LoggingConfig{Level: "info", Format: "text", Output: "stderr"},
	}
}

// Load reads and parses the configuration file. A missing file yields the
// defaults; a present but invalid file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.Backend.Validate(); err != nil {
		return fmt.Errorf("backend config: %w", err)
	}

	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Capture.Validate(); err != nil {
		return fmt.Errorf("capture config: %w", err)
	}

	if err := c.Ops.Validate(); err != nil {
		return fmt.Errorf("ops config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates backend configuration
func (b *BackendConfig) Validate() error {
	if b.BaseURL == "" {
		return fmt.Errorf("base_url cannot be empty")
	}

	if b.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", b.Timeout)
	}

	return nil
}

// Validate validates analysis configuration
func (a *AnalysisConfig) Validate() error {
	if a.Enabled && a.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second when analysis is enabled, got %d", a.Timeout)
	}

	return nil
}

// Validate validates audio configuration. The normalization target is fixed:
// saved recordings are always mono 16 kHz 16-bit PCM.
func (a *AudioConfig) Validate() error {
	if a.SampleRate != 16000 {
		return fmt.Errorf("sample_rate must be 16000 Hz for voice notes, got %d", a.SampleRate)
	}

	if a.Channels != 1 {
		return fmt.Errorf("channels must be 1 (mono) for voice notes, got %d", a.Channels)
	}

	if a.BitDepth != 16 {
		return fmt.Errorf("bit_depth must be 16 for voice notes, got %d", a.BitDepth)
	}

	return nil
}

// Validate validates capture configuration
func (c *CaptureConfig) Validate() error {
	if c.DeviceSampleRate < 8000 || c.DeviceSampleRate > 192000 {
		return fmt.Errorf("device_sample_rate must be between 8000 and 192000 Hz, got %d", c.DeviceSampleRate)
	}

	if c.DeviceChannels < 1 || c.DeviceChannels > 8 {
		return fmt.Errorf("device_channels must be between 1 and 8, got %d", c.DeviceChannels)
	}

	if c.MaxDuration < 1 {
		return fmt.Errorf("max_duration must be at least 1 second, got %d", c.MaxDuration)
	}

	if c.TickInterval < 1 {
		return fmt.Errorf("tick_interval must be at least 1 second, got %d", c.TickInterval)
	}

	if c.TickInterval > c.MaxDuration {
		return fmt.Errorf("tick_interval (%d) must not exceed max_duration (%d)", c.TickInterval, c.MaxDuration)
	}

	return nil
}

// Validate validates ops listener configuration
func (o *OpsConfig) Validate() error {
	if o.Enabled && o.Address == "" {
		return fmt.Errorf("address cannot be empty when the ops listener is enabled")
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// GetTimeoutDuration returns the backend request timeout as a time.Duration
func (b *BackendConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(b.Timeout) * time.Second
}

// GetTimeoutDuration returns the analysis request timeout as a time.Duration
func (a *AnalysisConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(a.Timeout) * time.Second
}

// GetMaxDuration returns the recording limit as a time.Duration
func (c *CaptureConfig) GetMaxDuration() time.Duration {
	return time.Duration(c.MaxDuration) * time.Second
}

// GetTickInterval returns the progress tick interval as a time.Duration
func (c *CaptureConfig) GetTickInterval() time.Duration {
	return time.Duration(c.TickInterval) * time.Second
}
