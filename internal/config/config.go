// Package config provides configuration management for the sentinel agent.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the full agent configuration. It is loaded once at startup
// and treated as read-only afterwards.
type Config struct {
	LogLevel string       `yaml:"log_level"`
	Camera   CameraConfig `yaml:"camera"`
	Motion   MotionConfig `yaml:"motion"`
	Record   RecordConfig `yaml:"record"`
	Alert    AlertConfig  `yaml:"alert"`
	Display  bool         `yaml:"display"`
}

// CameraConfig contains capture device settings.
type CameraConfig struct {
	// Device is the V4L2 device path (e.g. /dev/video0). When empty the
	// agent enumerates available devices and prompts for a selection.
	Device string `yaml:"device"`
}

// MotionConfig contains detection settings.
type MotionConfig struct {
	// Threshold is the total foreground contour area above which a frame
	// counts as a motion event.
	Threshold          float64 `yaml:"threshold"`
	LaunchDelaySeconds int     `yaml:"launch_delay_seconds"`
}

// RecordConfig contains evidence clip settings.
type RecordConfig struct {
	DurationSeconds int     `yaml:"duration_seconds"`
	OutputPath      string  `yaml:"output_path"`
	Codec           string  `yaml:"codec"`
	FallbackFPS     float64 `yaml:"fallback_fps"`
}

// AlertConfig contains messaging settings. An empty Recipient disables
// alerting entirely.
type AlertConfig struct {
	Sender          string `yaml:"sender"`
	Recipient       string `yaml:"recipient"`
	CooldownSeconds int    `yaml:"cooldown_seconds"`
	Binary          string `yaml:"binary"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

// LaunchDelay returns the configured pre-launch delay.
func (c *Config) LaunchDelay() time.Duration {
	return time.Duration(c.Motion.LaunchDelaySeconds) * time.Second
}

// RecordDuration returns the configured episode duration.
func (c *Config) RecordDuration() time.Duration {
	return time.Duration(c.Record.DurationSeconds) * time.Second
}

// Cooldown returns the minimum interval between two delivered alerts.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Alert.CooldownSeconds) * time.Second
}

// AlertTimeout returns the per-delivery transport timeout.
func (c *Config) AlertTimeout() time.Duration {
	return time.Duration(c.Alert.TimeoutSeconds) * time.Second
}

// defaultConfig returns the built-in defaults. Load populates these before
// parsing so an explicitly configured value always wins, including an
// explicit zero such as launch_delay_seconds: 0.
func defaultConfig() Config {
	return Config{
		LogLevel: "info",
		Motion: MotionConfig{
			Threshold:          50000,
			LaunchDelaySeconds: 5,
		},
		Record: RecordConfig{
			DurationSeconds: 5,
			OutputPath:      ".",
			Codec:           "mp4v",
			FallbackFPS:     10,
		},
		Alert: AlertConfig{
			CooldownSeconds: 30,
			Binary:          "signal-cli",
			TimeoutSeconds:  30,
		},
	}
}

// Load reads configuration from a YAML file and applies .env and
// environment variable overrides. A missing config file is not an error;
// defaults and environment values are used instead.
func Load(path string) (*Config, error) {
	// .env values become plain environment variables before overrides run
	_ = godotenv.Load()

	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// run on defaults and environment only
	default:
		return nil, err
	}

	cfg.applyEnvOverrides()

	if cfg.Alert.Sender == "" {
		// a single configured number both sends and receives
		cfg.Alert.Sender = cfg.Alert.Recipient
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SENTINEL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SENTINEL_CAMERA_DEVICE"); v != "" {
		c.Camera.Device = v
	}
	if v := os.Getenv("SENTINEL_DETECTION_THRESHOLD"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			c.Motion.Threshold = t
		}
	}
	if v := os.Getenv("SENTINEL_LAUNCH_DELAY"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			c.Motion.LaunchDelaySeconds = d
		}
	}
	if v := os.Getenv("SENTINEL_RECORD_DURATION"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			c.Record.DurationSeconds = d
		}
	}
	if v := os.Getenv("SENTINEL_OUTPUT_PATH"); v != "" {
		c.Record.OutputPath = v
	}
	if v := os.Getenv("SENTINEL_RECORD_CODEC"); v != "" {
		c.Record.Codec = v
	}
	if v := os.Getenv("SENTINEL_FALLBACK_FPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Record.FallbackFPS = f
		}
	}
	if v := os.Getenv("SENTINEL_ALERT_SENDER"); v != "" {
		c.Alert.Sender = v
	}
	if v := os.Getenv("SENTINEL_ALERT_RECIPIENT"); v != "" {
		c.Alert.Recipient = v
	}
	if v := os.Getenv("SENTINEL_ALERT_COOLDOWN"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			c.Alert.CooldownSeconds = d
		}
	}
	if v := os.Getenv("SENTINEL_ALERT_BINARY"); v != "" {
		c.Alert.Binary = v
	}
	if v := os.Getenv("SENTINEL_ALERT_TIMEOUT"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			c.Alert.TimeoutSeconds = d
		}
	}
	if v := os.Getenv("SENTINEL_DISPLAY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Display = b
		}
	}
}

// Validate checks the invariants the detection pipeline depends on.
func (c *Config) Validate() error {
	if c.Motion.Threshold <= 0 {
		return errors.New("config: detection threshold must be positive")
	}
	if c.Motion.LaunchDelaySeconds < 0 {
		return errors.New("config: launch delay must not be negative")
	}
	if c.Record.DurationSeconds <= 0 {
		return errors.New("config: record duration must be positive")
	}
	if c.Record.FallbackFPS <= 0 {
		return errors.New("config: fallback fps must be positive")
	}
	if c.Alert.CooldownSeconds <= 0 {
		return errors.New("config: alert cooldown must be positive")
	}
	return nil
}
