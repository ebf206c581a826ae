package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "default configuration is valid",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "empty backend url",
			mutate:      func(c *Config) { c.Backend.BaseURL = "" },
			expectError: true,
			errorMsg:    "base_url cannot be empty",
		},
		{
			name:        "zero backend timeout",
			mutate:      func(c *Config) { c.Backend.Timeout = 0 },
			expectError: true,
			errorMsg:    "timeout must be at least 1 second",
		},
		{
			name:        "analysis enabled without timeout",
			mutate:      func(c *Config) { c.Analysis.Timeout = 0 },
			expectError: true,
			errorMsg:    "timeout must be at least 1 second when analysis is enabled",
		},
		{
			name: "analysis disabled ignores timeout",
			mutate: func(c *Config) {
				c.Analysis.Enabled = false
				c.Analysis.Timeout = 0
			},
			expectError: false,
		},
		{
			name:        "wrong storage sample rate",
			mutate:      func(c *Config) { c.Audio.SampleRate = 44100 },
			expectError: true,
			errorMsg:    "sample_rate must be 16000 Hz",
		},
		{
			name:        "stereo storage format",
			mutate:      func(c *Config) { c.Audio.Channels = 2 },
			expectError: true,
			errorMsg:    "channels must be 1 (mono)",
		},
		{
			name:        "wrong bit depth",
			mutate:      func(c *Config) { c.Audio.BitDepth = 24 },
			expectError: true,
			errorMsg:    "bit_depth must be 16",
		},
		{
			name:        "capture sample rate too low",
			mutate:      func(c *Config) { c.Capture.DeviceSampleRate = 4000 },
			expectError: true,
			errorMsg:    "device_sample_rate must be between 8000 and 192000",
		},
		{
			name:        "zero max duration",
			mutate:      func(c *Config) { c.Capture.MaxDuration = 0 },
			expectError: true,
			errorMsg:    "max_duration must be at least 1 second",
		},
		{
			name: "tick interval exceeds max duration",
			mutate: func(c *Config) {
				c.Capture.MaxDuration = 2
				c.Capture.TickInterval = 5
			},
			expectError: true,
			errorMsg:    "must not exceed max_duration",
		},
		{
			name: "ops enabled without address",
			mutate: func(c *Config) {
				c.Ops.Enabled = true
				c.Ops.Address = ""
			},
			expectError: true,
			errorMsg:    "address cannot be empty",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.Logging.Level = "verbose" },
			expectError: true,
			errorMsg:    "level must be one of",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.Logging.Format = "xml" },
			expectError: true,
			errorMsg:    "format must be 'json' or 'text'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.expectError {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errorMsg)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Backend.BaseURL != "http://localhost:3001/api" {
		t.Errorf("unexpected default backend url %q", cfg.Backend.BaseURL)
	}
	if cfg.Capture.MaxDuration != 120 {
		t.Errorf("unexpected default max duration %d", cfg.Capture.MaxDuration)
	}
	if cfg.Ops.Enabled {
		t.Error("ops listener should default to disabled")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
backend:
  base_url: "https://jobs.example.com/api"
  timeout: 10
capture:
  max_duration: 60
logging:
  level: "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Backend.BaseURL != "https://jobs.example.com/api" {
		t.Errorf("override lost: %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.GetTimeoutDuration() != 10*time.Second {
		t.Errorf("unexpected timeout %v", cfg.Backend.GetTimeoutDuration())
	}
	if cfg.Capture.GetMaxDuration() != time.Minute {
		t.Errorf("unexpected max duration %v", cfg.Capture.GetMaxDuration())
	}

	// Untouched sections keep their defaults.
	if cfg.Analysis.Timeout != 60 {
		t.Errorf("analysis default lost: %d", cfg.Analysis.Timeout)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := os.WriteFile(path, []byte("backend: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error for malformed yaml")
	}

	if err := os.WriteFile(path, []byte("audio:\n  sample_rate: 8000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for wrong sample rate")
	}
}
