package monitor

import (
	"fmt"
	"time"
)

// Config holds cycle driver parameters.
type Config struct {
	// MaxDuration ends the session after this long. 0 runs until cancelled.
	MaxDuration time.Duration `yaml:"max_duration" json:"max_duration"`

	// ReportEvery is the number of eye samples between console status lines.
	ReportEvery int `yaml:"report_every" json:"report_every"`

	// CycleInterval is an optional pause between cycles.
	CycleInterval time.Duration `yaml:"cycle_interval" json:"cycle_interval"`
}

// DefaultConfig returns a two minute session reporting every 100 samples.
func DefaultConfig() Config {
	return Config{
		MaxDuration: 2 * time.Minute,
		ReportEvery: 100,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxDuration < 0 {
		return fmt.Errorf("max_duration must not be negative, got %v", c.MaxDuration)
	}
	if c.ReportEvery < 0 {
		return fmt.Errorf("report_every must not be negative, got %d", c.ReportEvery)
	}
	if c.CycleInterval < 0 {
		return fmt.Errorf("cycle_interval must not be negative, got %v", c.CycleInterval)
	}
	return nil
}
