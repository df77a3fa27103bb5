package audioio

import (
	"context"
	"time"
)

// AudioChunk is one buffer of interleaved PCM16 samples.
type AudioChunk struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Bytes returns the chunk as little-endian PCM16.
func (c *AudioChunk) Bytes() []byte {
	return SamplesToBytes(c.Samples)
}

// FromBytes replaces the chunk contents with little-endian PCM16 data.
func (c *AudioChunk) FromBytes(data []byte, sampleRate, channels int) {
	c.SampleRate = sampleRate
	c.Channels = channels
	c.Samples = BytesToSamples(data)
}

// Mono returns the chunk downmixed to normalized mono samples.
func (c *AudioChunk) Mono() []float64 {
	return ToFloat(Downmix(c.Samples, c.Channels))
}

// Frames returns the number of sample frames (samples per channel).
func (c *AudioChunk) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// Duration returns the playing time of the chunk.
func (c *AudioChunk) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// Source captures audio from a microphone.
//
// Chunks are delivered through Read or Stream, not both. The stream channel
// is closed when the source stops, after which Read returns io.EOF. Stop and
// Close are idempotent; a closed source cannot be restarted.
type Source interface {
	Start(ctx context.Context) error
	Stop() error
	Read(ctx context.Context) (AudioChunk, error)
	Stream() <-chan AudioChunk
	Config() Config
	Name() string
	Stats() SourceStats
	Close() error
}

// SourceStats counts what a source has delivered.
type SourceStats struct {
	ChunksRead  int64  `json:"chunks_read"`
	SamplesRead int64  `json:"samples_read"`
	Overruns    int64  `json:"overruns"` // chunks dropped because nobody was reading
	Running     bool   `json:"running"`
	Backend     string `json:"backend"`
}
