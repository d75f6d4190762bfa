// File: control/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Environment-driven runtime configuration with safe defaults.

package control

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds tunables for the event-multiplexing core.
type Config struct {
	// PollInterval is the re-poll interval of the async receive bridge.
	PollInterval time.Duration `envconfig:"IPCWAIT_POLL_INTERVAL" default:"10ms"`

	// WaitSetCapacity is the default attachment capacity of a WaitSet.
	WaitSetCapacity int `envconfig:"IPCWAIT_WAITSET_CAPACITY" default:"64"`

	// SubscriberQueueDepth bounds each subscriber's sample ring. Must be
	// a power of two; overflow drops the oldest sample.
	SubscriberQueueDepth int `envconfig:"IPCWAIT_SUBSCRIBER_QUEUE" default:"64"`

	// StreamInterval is the wait slice used by EventStream to observe
	// cancellation between blocking waits.
	StreamInterval time.Duration `envconfig:"IPCWAIT_STREAM_INTERVAL" default:"50ms"`

	// LogLevel configures the library logger: debug, info, warn, error.
	LogLevel string `envconfig:"IPCWAIT_LOG_LEVEL" default:"info"`

	// LogDevelopment switches to console-encoded development logging.
	LogDevelopment bool `envconfig:"IPCWAIT_LOG_DEV" default:"false"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault reads configuration from the environment, falling back
// to defaults on any error.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		PollInterval:         10 * time.Millisecond,
		WaitSetCapacity:      64,
		SubscriberQueueDepth: 64,
		StreamInterval:       50 * time.Millisecond,
		LogLevel:             "info",
		LogDevelopment:       false,
	}
}

func (c *Config) validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.WaitSetCapacity <= 0 {
		return fmt.Errorf("waitset capacity must be positive, got %d", c.WaitSetCapacity)
	}
	if d := c.SubscriberQueueDepth; d <= 0 || d&(d-1) != 0 {
		return fmt.Errorf("subscriber queue depth must be a positive power of two, got %d", d)
	}
	return nil
}
