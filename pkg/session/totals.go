package session

import "time"

// Totals is the constant-size view of a session: counters and levels
// without the per-sample logs. It is cheap enough to take every cycle.
type Totals struct {
	ID           string                `json:"id"`
	StartedAt    time.Time             `json:"started_at"`
	LastCycleAt  time.Time             `json:"last_cycle_at"`
	Elapsed      time.Duration         `json:"elapsed"`
	Cycles       int                   `json:"cycles"`
	LastGaze     GazeDirection         `json:"last_gaze,omitempty"`
	GazeCounts   map[GazeDirection]int `json:"gaze_counts"`
	Blinks       int                   `json:"blink_count"`
	EyeSamples   int                   `json:"eye_samples"`
	TiltCounts   map[TiltDirection]int `json:"tilt_counts"`
	HeadSamples  int                   `json:"head_samples"`
	AudioSamples int                   `json:"audio_samples"`
	Anomaly      bool                  `json:"anomaly_detected"`
	MeanLevel    float64               `json:"mean_level"`
	PeakLevel    float64               `json:"peak_level"`
	Actions      int                   `json:"action_count"`
}

// Totals summarizes the current state without copying the logs.
func (s *State) Totals() Totals {
	var t Totals

	s.meta.mu.Lock()
	t.ID = s.meta.id
	t.StartedAt = s.meta.startedAt
	t.LastCycleAt = s.meta.lastCycleAt
	t.Cycles = s.meta.cycles
	t.Actions = len(s.meta.actions)
	s.meta.mu.Unlock()
	t.Elapsed = s.now().Sub(t.StartedAt)

	s.eye.mu.Lock()
	if n := len(s.eye.log); n > 0 {
		t.LastGaze = s.eye.log[n-1]
	}
	t.GazeCounts = make(map[GazeDirection]int, len(s.eye.counts))
	for k, v := range s.eye.counts {
		t.GazeCounts[k] = v
	}
	t.Blinks = s.eye.blinks
	t.EyeSamples = s.eye.samples
	s.eye.mu.Unlock()

	s.head.mu.Lock()
	t.TiltCounts = make(map[TiltDirection]int, len(s.head.counts))
	for k, v := range s.head.counts {
		t.TiltCounts[k] = v
	}
	t.HeadSamples = s.head.samples
	s.head.mu.Unlock()

	s.audio.mu.Lock()
	t.AudioSamples = s.audio.samples
	t.Anomaly = s.audio.anomaly
	if s.audio.samples > 0 {
		t.MeanLevel = s.audio.sum / float64(s.audio.samples)
		t.PeakLevel = s.audio.peak
	}
	s.audio.mu.Unlock()

	return t
}

// Totals reduces a snapshot to its constant-size view.
func (s Snapshot) Totals() Totals {
	t := Totals{
		ID:           s.ID,
		StartedAt:    s.StartedAt,
		LastCycleAt:  s.LastCycleAt,
		Elapsed:      s.Elapsed,
		Cycles:       s.Cycles,
		GazeCounts:   s.Eye.Counts,
		Blinks:       s.Eye.Blinks,
		EyeSamples:   s.Eye.Samples,
		TiltCounts:   s.Head.Counts,
		HeadSamples:  s.Head.Samples,
		AudioSamples: s.Audio.Samples,
		Anomaly:      s.Audio.Anomaly,
		MeanLevel:    s.Audio.MeanLevel,
		PeakLevel:    s.Audio.PeakLevel,
		Actions:      len(s.Actions),
	}
	if n := len(s.Eye.Log); n > 0 {
		t.LastGaze = s.Eye.Log[n-1]
	}
	return t
}

// Attentive returns the share of eye samples looking at the center.
func (t Totals) Attentive() float64 {
	if t.EyeSamples == 0 {
		return 0
	}
	return float64(t.GazeCounts[GazeCenter]) / float64(t.EyeSamples)
}
