// Package camera provides the webcam frame source for the attention monitor.
package camera

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates the capture device cannot be opened.
	ErrUnavailable = errors.New("camera: device unavailable")

	// ErrFrameRead indicates a single frame read failed.
	ErrFrameRead = errors.New("camera: frame read failed")
)

// Config holds camera parameters.
type Config struct {
	// Device is a device index ("0") or a video file / stream URL.
	Device string `yaml:"device" json:"device"`

	// Preset selects a named resolution. When set it overrides Width and
	// Height.
	Preset string `yaml:"preset" json:"preset"`

	Width  int `yaml:"width" json:"width"`   // Frame width in pixels
	Height int `yaml:"height" json:"height"` // Frame height in pixels

	// FrameStride processes every Nth frame; the frames in between are
	// grabbed and dropped. 1 processes every frame.
	FrameStride int `yaml:"frame_stride" json:"frame_stride"`
}

// DefaultConfig returns the 640x480 configuration on the first device.
func DefaultConfig() Config {
	return Config{
		Device:      "0",
		Width:       640,
		Height:      480,
		FrameStride: 1,
	}
}

// Validate checks if the config values are within valid ranges.
func (c *Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("device must not be empty")
	}
	if c.Preset != "" && GetPreset(c.Preset) == nil {
		return fmt.Errorf("unknown preset %q (valid: %v)", c.Preset, PresetNames())
	}
	w, h := c.Resolution()
	if w < 160 || h < 120 {
		return fmt.Errorf("resolution %dx%d below minimum 160x120", w, h)
	}
	if c.FrameStride < 1 {
		return fmt.Errorf("frame_stride must be at least 1, got %d", c.FrameStride)
	}
	return nil
}

// Resolution returns the requested frame size after applying Preset.
func (c *Config) Resolution() (int, int) {
	if p := GetPreset(c.Preset); p != nil {
		return p.Width, p.Height
	}
	return c.Width, c.Height
}
