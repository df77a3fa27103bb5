// Package audioio captures microphone audio for the voice classifier.
//
// Capture runs through a recorder child process (arecord on Linux, ffmpeg's
// avfoundation input on macOS) so the package needs no cgo. A synthetic
// mock backend serves tests and machines without a microphone.
package audioio

import (
	"errors"
	"fmt"
	"time"
)

// Backend names a capture implementation.
type Backend string

const (
	BackendAuto      Backend = "auto" // the platform's recorder
	BackendALSA      Backend = "alsa"
	BackendCoreAudio Backend = "coreaudio"
	BackendMock      Backend = "mock"
)

var (
	// ErrUnavailable means the capture device cannot be opened. It is fatal
	// at session start.
	ErrUnavailable = errors.New("audioio: capture device unavailable")

	// ErrCapture means one clip could not be recorded. The cycle falls back
	// to an empty buffer.
	ErrCapture = errors.New("audioio: capture failed")
)

// Config describes the capture device and clip length.
type Config struct {
	Backend    Backend `yaml:"backend" json:"backend"`
	SampleRate int     `yaml:"sample_rate" json:"sample_rate"` // device rate, Hz
	Channels   int     `yaml:"channels" json:"channels"`       // 1 or 2

	// BufferDuration is the size of each chunk read from the device.
	BufferDuration time.Duration `yaml:"buffer_duration" json:"buffer_duration"`

	// CaptureDuration is the length of one classification clip.
	CaptureDuration time.Duration `yaml:"capture_duration" json:"capture_duration"`

	// Device is passed to the recorder: an ALSA PCM name such as
	// "plughw:1,0", or an avfoundation audio index. Empty means the
	// system default.
	Device string `yaml:"device" json:"device"`
}

// DefaultConfig captures 500ms mono clips at 16kHz in 20ms chunks.
func DefaultConfig() Config {
	return Config{
		Backend:         BackendAuto,
		SampleRate:      16000,
		Channels:        1,
		BufferDuration:  20 * time.Millisecond,
		CaptureDuration: 500 * time.Millisecond,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	case c.Channels < 1 || c.Channels > 2:
		return fmt.Errorf("channels must be 1 or 2, got %d", c.Channels)
	case c.BufferDuration <= 0:
		return fmt.Errorf("buffer_duration must be positive, got %v", c.BufferDuration)
	case c.CaptureDuration <= 0:
		return fmt.Errorf("capture_duration must be positive, got %v", c.CaptureDuration)
	case c.BufferSize() == 0:
		return fmt.Errorf("buffer_duration %v holds no samples at %d Hz", c.BufferDuration, c.SampleRate)
	}
	return nil
}

// BufferSize returns the number of frames per chunk.
func (c *Config) BufferSize() int {
	return int(float64(c.SampleRate) * c.BufferDuration.Seconds())
}

// BufferBytes returns the size of one PCM16 chunk in bytes.
func (c *Config) BufferBytes() int {
	return c.BufferSize() * c.Channels * 2
}
