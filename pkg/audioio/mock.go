package audioio

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// MockSource synthesizes audio at real-time pace. It produces silence unless
// configured with a tone or noise.
type MockSource struct {
	*stream

	frequency float64 // Hz
	tone      float64 // tone amplitude, 0..1
	noise     float64 // white noise amplitude, 0..1
	seed      uint64
}

// MockSourceOption configures a MockSource.
type MockSourceOption func(*MockSource)

// WithSineWave adds a sine tone of the given frequency and amplitude.
func WithSineWave(frequency, amplitude float64) MockSourceOption {
	return func(m *MockSource) {
		m.frequency = frequency
		m.tone = amplitude
	}
}

// WithNoise adds uniform white noise of the given peak amplitude. The seed
// makes runs repeatable.
func WithNoise(amplitude float64, seed uint64) MockSourceOption {
	return func(m *MockSource) {
		m.noise = amplitude
		m.seed = seed
	}
}

// NewMockSource creates a mock source for cfg.
func NewMockSource(cfg Config, logger *slog.Logger, opts ...MockSourceOption) *MockSource {
	m := &MockSource{stream: newStream(BackendMock, cfg, logger)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins generating audio until Stop or ctx is done.
func (m *MockSource) Start(ctx context.Context) error {
	err := m.launch(func() (producer, func(), error) {
		return func(out chan<- AudioChunk, stop <-chan struct{}) {
			m.generate(ctx, out, stop)
		}, nil, nil
	})
	if err != nil {
		return err
	}
	m.logger.Info("mock audio source started",
		"sample_rate", m.cfg.SampleRate,
		"frequency", m.frequency,
		"noise", m.noise,
	)
	return nil
}

func (m *MockSource) generate(ctx context.Context, out chan<- AudioChunk, stop <-chan struct{}) {
	defer close(out)

	ticker := time.NewTicker(m.cfg.BufferDuration)
	defer ticker.Stop()

	rng := newRNG(m.seed)
	var frame int

	for {
		select {
		case <-ctx.Done():
			m.Stop()
			return
		case <-stop:
			return
		case <-ticker.C:
		}

		chunk := m.synthesize(frame, rng)
		frame += chunk.Frames()
		if !m.deliver(ctx, out, stop, chunk) {
			return
		}
	}
}

// synthesize renders one buffer starting at absolute frame start.
func (m *MockSource) synthesize(start int, rng *rand.Rand) AudioChunk {
	n, channels := m.cfg.BufferSize(), m.cfg.Channels
	samples := make([]int16, n*channels)

	for i := range n {
		var v float64
		if m.frequency > 0 {
			t := float64(start+i) / float64(m.cfg.SampleRate)
			v += m.tone * math.Sin(2*math.Pi*m.frequency*t)
		}
		if m.noise > 0 {
			v += m.noise * (2*rng.Float64() - 1)
		}
		s := int16(math.Max(-1, math.Min(1, v)) * math.MaxInt16)
		for ch := range channels {
			samples[i*channels+ch] = s
		}
	}

	return AudioChunk{Samples: samples, SampleRate: m.cfg.SampleRate, Channels: channels}
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

var _ Source = (*MockSource)(nil)
