package session

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// EyeStats is the gaze section of a snapshot.
type EyeStats struct {
	Log     []GazeDirection       `json:"gaze_log"`
	Counts  map[GazeDirection]int `json:"gaze_counts"`
	Blinks  int                   `json:"blink_count"`
	Samples int                   `json:"total_samples"`
}

// HeadStats is the head pose section of a snapshot.
type HeadStats struct {
	Counts  map[TiltDirection]int `json:"tilt_counts"`
	Samples int                   `json:"total_samples"`
}

// AudioStats is the audio section of a snapshot.
type AudioStats struct {
	NoiseLevels []float64 `json:"noise_levels"`
	Samples     int       `json:"total_samples"`
	Anomaly     bool      `json:"anomaly_detected"`
	MeanLevel   float64   `json:"mean_level"`
	PeakLevel   float64   `json:"peak_level"`
}

// Snapshot is a deep, read-only copy of a State.
type Snapshot struct {
	ID          string        `json:"id"`
	StartedAt   time.Time     `json:"started_at"`
	LastCycleAt time.Time     `json:"last_cycle_at"`
	Elapsed     time.Duration `json:"elapsed"`
	Cycles      int           `json:"cycles"`
	Eye         EyeStats      `json:"eye_data"`
	Head        HeadStats     `json:"head_data"`
	Audio       AudioStats    `json:"audio_data"`
	Actions     []Action      `json:"action_log"`
}

// Snapshot copies the current state. It never mutates the state.
func (s *State) Snapshot() Snapshot {
	var snap Snapshot

	s.meta.mu.Lock()
	snap.ID = s.meta.id
	snap.StartedAt = s.meta.startedAt
	snap.LastCycleAt = s.meta.lastCycleAt
	snap.Cycles = s.meta.cycles
	snap.Actions = append([]Action(nil), s.meta.actions...)
	s.meta.mu.Unlock()
	snap.Elapsed = s.now().Sub(snap.StartedAt)

	s.eye.mu.Lock()
	snap.Eye = EyeStats{
		Log:     append([]GazeDirection(nil), s.eye.log...),
		Counts:  make(map[GazeDirection]int, len(s.eye.counts)),
		Blinks:  s.eye.blinks,
		Samples: s.eye.samples,
	}
	for k, v := range s.eye.counts {
		snap.Eye.Counts[k] = v
	}
	s.eye.mu.Unlock()

	s.head.mu.Lock()
	snap.Head = HeadStats{
		Counts:  make(map[TiltDirection]int, len(s.head.counts)),
		Samples: s.head.samples,
	}
	for k, v := range s.head.counts {
		snap.Head.Counts[k] = v
	}
	s.head.mu.Unlock()

	s.audio.mu.Lock()
	snap.Audio = AudioStats{
		NoiseLevels: append([]float64(nil), s.audio.noiseLevels...),
		Samples:     s.audio.samples,
		Anomaly:     s.audio.anomaly,
	}
	s.audio.mu.Unlock()

	if len(snap.Audio.NoiseLevels) > 0 {
		snap.Audio.MeanLevel = stat.Mean(snap.Audio.NoiseLevels, nil)
		snap.Audio.PeakLevel = floats.Max(snap.Audio.NoiseLevels)
	}

	return snap
}

// GazeRatio returns the share of eye samples labelled dir, or 0 when no
// samples were taken.
func (s Snapshot) GazeRatio(dir GazeDirection) float64 {
	if s.Eye.Samples == 0 {
		return 0
	}
	return float64(s.Eye.Counts[dir]) / float64(s.Eye.Samples)
}

// TiltRatio returns the share of head samples labelled dir.
func (s Snapshot) TiltRatio(dir TiltDirection) float64 {
	if s.Head.Samples == 0 {
		return 0
	}
	return float64(s.Head.Counts[dir]) / float64(s.Head.Samples)
}

// Attentive returns the share of eye samples looking at the center.
func (s Snapshot) Attentive() float64 {
	return s.GazeRatio(GazeCenter)
}
