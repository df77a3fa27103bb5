// Package voice classifies short audio buffers as voice or background noise.
//
// The classifier is a single energy gate: the root-mean-square level of the
// buffer is compared against a fixed threshold. An empty buffer (for example
// after a failed capture) carries no signal and is always noise.
//
//	c := voice.NewClassifier(voice.DefaultConfig())
//	reading := c.Classify(samples)
//	state.RecordAudio(reading.RMS, reading.Label)
package voice
