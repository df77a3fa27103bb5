// Package report renders session statistics for people: periodic log lines
// while the monitor runs and a summary when it stops. It only reads
// snapshots and totals.
package report

import (
	"log/slog"

	"github.com/teslashibe/go-attention/pkg/monitor"
	"github.com/teslashibe/go-attention/pkg/session"
)

// Console logs a status line every N eye samples.
type Console struct {
	every  int
	logger *slog.Logger
}

// NewConsole returns a Console reporting every `every` eye samples. Zero
// disables the periodic line.
func NewConsole(every int, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{every: every, logger: logger}
}

// ObserveCycle implements monitor.Observer.
func (c *Console) ObserveCycle(cycle *monitor.Cycle) {
	t := cycle.Totals
	if c.every <= 0 || t.EyeSamples == 0 || t.EyeSamples%c.every != 0 {
		return
	}
	c.Report(t)
}

// Report logs t unconditionally.
func (c *Console) Report(t session.Totals) {
	c.logger.Info("attention status",
		"session", t.ID,
		"cycles", t.Cycles,
		"eye_samples", t.EyeSamples,
		"gaze", slog.GroupValue(gazeAttrs(t)...),
		"blinks", t.Blinks,
		"tilt", slog.GroupValue(tiltAttrs(t)...),
		"audio_samples", t.AudioSamples,
		"mean_noise", t.MeanLevel,
		"anomaly", t.Anomaly,
	)
}

func gazeAttrs(t session.Totals) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(session.GazeDirections))
	for _, d := range session.GazeDirections {
		attrs = append(attrs, slog.Int(string(d), t.GazeCounts[d]))
	}
	return attrs
}

func tiltAttrs(t session.Totals) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(session.TiltDirections))
	for _, d := range session.TiltDirections {
		attrs = append(attrs, slog.Int(string(d), t.TiltCounts[d]))
	}
	return attrs
}

var _ monitor.Observer = (*Console)(nil)
