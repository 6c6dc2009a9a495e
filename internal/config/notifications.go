package config

import (
	"fmt"
	"os"
	"time"
)

const EnvNotificationsPollInterval = "COURIER_NOTIFICATIONS_POLL_INTERVAL"

// NotificationsConfig controls how clients poll for notification and
// approval queue changes.
type NotificationsConfig struct {
	PollInterval string `toml:"poll_interval"`
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *NotificationsConfig) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *NotificationsConfig) Finalize() error {
	if c.PollInterval == "" {
		c.PollInterval = "30s"
	}
	if v := os.Getenv(EnvNotificationsPollInterval); v != "" {
		c.PollInterval = v
	}

	d, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return fmt.Errorf("invalid poll_interval: %w", err)
	}
	if d < time.Second {
		return fmt.Errorf("poll_interval must be at least 1s")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *NotificationsConfig) Merge(overlay *NotificationsConfig) {
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
}
