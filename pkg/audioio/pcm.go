package audioio

import (
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"
)

// BytesToSamples converts raw PCM16 little-endian bytes to int16 samples.
func BytesToSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
	}
	return samples
}

// SamplesToBytes converts int16 samples to raw PCM16 little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		data[i*2] = byte(s)
		data[i*2+1] = byte(s >> 8)
	}
	return data
}

// Downmix averages interleaved frames down to a single channel.
// A trailing partial frame is dropped.
func Downmix(samples []int16, channels int) []int16 {
	if channels <= 1 {
		return samples
	}

	mono := make([]int16, len(samples)/channels)
	for i := range mono {
		var sum int32
		for ch := 0; ch < channels; ch++ {
			sum += int32(samples[i*channels+ch])
		}
		mono[i] = int16(sum / int32(channels))
	}
	return mono
}

// ToFloat normalizes PCM16 samples to [-1.0, 1.0).
func ToFloat(samples []int16) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s) / 32768.0
	}
	return out
}

// Resample converts mono float samples between sample rates. The resampler
// is flushed and its filter delay trimmed, so the result holds
// len(samples)*toRate/fromRate values (rounded) of signal.
func Resample(samples []float64, fromRate, toRate int) ([]float64, error) {
	if fromRate == toRate || len(samples) == 0 {
		return samples, nil
	}

	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(fromRate),
		OutputRate: float64(toRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	out, err := rs.Process(samples)
	if err != nil {
		return nil, fmt.Errorf("resample %d->%d: %w", fromRate, toRate, err)
	}
	tail, err := rs.Flush()
	if err != nil {
		return nil, fmt.Errorf("flush resampler %d->%d: %w", fromRate, toRate, err)
	}
	out = append(out, tail...)

	want := int(math.Round(float64(len(samples)) * float64(toRate) / float64(fromRate)))
	if lat := rs.GetLatency(); lat > 0 && len(out)-lat >= want {
		out = out[lat:]
	}
	return Fit(out, want), nil
}

// Fit truncates or zero-pads samples to exactly n values.
func Fit(samples []float64, n int) []float64 {
	if len(samples) == n {
		return samples
	}
	out := make([]float64, n)
	copy(out, samples)
	return out
}
