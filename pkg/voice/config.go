package voice

import "fmt"

// SampleRate is the rate clips are classified at.
const SampleRate = 16000

// Config holds the classifier parameters.
type Config struct {
	// Threshold is the RMS level above which a buffer counts as voice.
	// Samples are normalized to [-1, 1].
	Threshold float64 `yaml:"threshold" json:"threshold"`
}

// DefaultConfig returns the production classifier settings.
func DefaultConfig() Config {
	return Config{Threshold: 0.02}
}

// Validate checks the classifier parameters.
func (c *Config) Validate() error {
	if c.Threshold <= 0 || c.Threshold >= 1 {
		return fmt.Errorf("threshold must be in (0, 1), got %v", c.Threshold)
	}
	return nil
}
