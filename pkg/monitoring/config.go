package monitoring

import (
	"time"
)

// Config represents the configuration for the monitoring service
type Config struct {
	// CheckInterval is how often every running node is checked
	CheckInterval time.Duration
	// Timeout bounds a single node check
	Timeout time.Duration
	// FailureThreshold is how many consecutive failures before a node is
	// reported down
	FailureThreshold int
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() Config {
	return Config{
		CheckInterval:    15 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 3,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CheckInterval <= 0 {
		c.CheckInterval = d.CheckInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	return c
}
