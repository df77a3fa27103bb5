package audioio

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Recorder turns a streaming Source into fixed-length mono clips.
type Recorder struct {
	src      Source
	duration time.Duration
	rate     int
	logger   *slog.Logger
}

// NewRecorder returns a Recorder producing clips of the given duration at
// rate Hz. The source must already be started.
func NewRecorder(src Source, duration time.Duration, rate int, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		src:      src,
		duration: duration,
		rate:     rate,
		logger:   logger,
	}
}

// Samples returns the exact clip length Record produces.
func (r *Recorder) Samples() int {
	return frames(r.duration, r.rate)
}

// Record captures one clip. Chunks buffered before the call are discarded
// so the clip reflects the current moment. Any read failure is reported as
// ErrCapture.
func (r *Recorder) Record(ctx context.Context) ([]float64, error) {
	cfg := r.src.Config()
	dropped := r.drain()

	need := frames(r.duration, cfg.SampleRate)
	mono := make([]float64, 0, need+cfg.BufferSize())
	for len(mono) < need {
		chunk, err := r.src.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCapture, err)
		}
		mono = append(mono, chunk.Mono()...)
	}
	mono = mono[:need]

	out, err := Resample(mono, cfg.SampleRate, r.rate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}

	r.logger.Debug("audio clip recorded",
		"samples", r.Samples(),
		"source_rate", cfg.SampleRate,
		"stale_chunks", dropped,
	)

	return Fit(out, r.Samples()), nil
}

func (r *Recorder) drain() int {
	stream := r.src.Stream()
	n := 0
	for {
		select {
		case _, ok := <-stream:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}

func frames(d time.Duration, rate int) int {
	return int(math.Round(d.Seconds() * float64(rate)))
}
