package voice

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/teslashibe/go-attention/pkg/session"
)

// Reading is the outcome of classifying one buffer.
type Reading struct {
	Label session.AudioLabel
	RMS   float64
}

// Classifier gates audio buffers on RMS energy.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a classifier.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify labels buf. Empty buffers are noise with an RMS of 0.
func (c *Classifier) Classify(buf []float64) Reading {
	if len(buf) == 0 {
		return Reading{Label: session.AudioNoise}
	}

	rms := RMS(buf)
	if rms > c.cfg.Threshold {
		return Reading{Label: session.AudioVoice, RMS: rms}
	}
	return Reading{Label: session.AudioNoise, RMS: rms}
}

// RMS returns sqrt(mean(x²)) of buf, or 0 for an empty buffer.
func RMS(buf []float64) float64 {
	if len(buf) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(buf, buf) / float64(len(buf)))
}
