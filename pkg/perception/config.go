package perception

import "fmt"

// GazeConfig holds the gaze heuristic tunables.
type GazeConfig struct {
	// DarkThreshold is the highest intensity counted as pupil/iris.
	DarkThreshold uint8 `yaml:"dark_threshold" json:"dark_threshold"`

	// Eyes smaller than MinEyeWidth × MinEyeHeight are not classified.
	MinEyeWidth  int `yaml:"min_eye_width" json:"min_eye_width"`
	MinEyeHeight int `yaml:"min_eye_height" json:"min_eye_height"`

	// The left/right comparison threshold is ThresholdRatio × eye area,
	// clamped to [ThresholdMin, ThresholdMax].
	ThresholdRatio float64 `yaml:"threshold_ratio" json:"threshold_ratio"`
	ThresholdMin   float64 `yaml:"threshold_min" json:"threshold_min"`
	ThresholdMax   float64 `yaml:"threshold_max" json:"threshold_max"`
}

// DefaultGazeConfig returns the production gaze tunables.
func DefaultGazeConfig() GazeConfig {
	return GazeConfig{
		DarkThreshold:  50,
		MinEyeWidth:    15,
		MinEyeHeight:   10,
		ThresholdRatio: 0.1,
		ThresholdMin:   10,
		ThresholdMax:   50,
	}
}

// Validate checks the gaze tunables.
func (c *GazeConfig) Validate() error {
	if c.MinEyeWidth < 2 || c.MinEyeHeight < 1 {
		return fmt.Errorf("min eye size must be at least 2x1, got %dx%d", c.MinEyeWidth, c.MinEyeHeight)
	}
	if c.ThresholdRatio < 0 {
		return fmt.Errorf("threshold_ratio must not be negative, got %v", c.ThresholdRatio)
	}
	if c.ThresholdMin > c.ThresholdMax {
		return fmt.Errorf("threshold_min (%v) exceeds threshold_max (%v)", c.ThresholdMin, c.ThresholdMax)
	}
	return nil
}

// PoseConfig holds the head pose tunables.
type PoseConfig struct {
	// OffsetRatio is the fraction of the frame size the face center must
	// move off-center before a tilt is reported.
	OffsetRatio float64 `yaml:"offset_ratio" json:"offset_ratio"`
}

// DefaultPoseConfig returns the production head pose tunables.
func DefaultPoseConfig() PoseConfig {
	return PoseConfig{OffsetRatio: 0.08}
}

// Validate checks the head pose tunables.
func (c *PoseConfig) Validate() error {
	if c.OffsetRatio <= 0 || c.OffsetRatio >= 0.5 {
		return fmt.Errorf("offset_ratio must be in (0, 0.5), got %v", c.OffsetRatio)
	}
	return nil
}
