package session

import (
	"math"
	"testing"
)

func TestTotals_MatchesSnapshot(t *testing.T) {
	s := New()
	s.RecordGaze(GazeCenter, false)
	s.RecordGaze(GazeLeft, true)
	s.RecordGaze(GazeCenter, false)
	s.RecordTilt(TiltUp)
	s.RecordTilt(TiltNeutral)
	s.RecordAudio(0.01, AudioNoise)
	s.RecordAudio(0.07, AudioVoice)
	s.RecordAudio(0.02, AudioNoise)
	s.LogAction("voice detected")
	s.MarkCycle()

	got := s.Totals()
	want := s.Snapshot().Totals()

	if got.ID != want.ID || got.Cycles != want.Cycles || got.Actions != want.Actions {
		t.Errorf("meta: got %s/%d/%d, want %s/%d/%d", got.ID, got.Cycles, got.Actions, want.ID, want.Cycles, want.Actions)
	}
	if got.LastGaze != GazeCenter || want.LastGaze != GazeCenter {
		t.Errorf("last gaze: got %s and %s, want center", got.LastGaze, want.LastGaze)
	}
	for _, d := range GazeDirections {
		if got.GazeCounts[d] != want.GazeCounts[d] {
			t.Errorf("gaze %s: got %d, want %d", d, got.GazeCounts[d], want.GazeCounts[d])
		}
	}
	for _, d := range TiltDirections {
		if got.TiltCounts[d] != want.TiltCounts[d] {
			t.Errorf("tilt %s: got %d, want %d", d, got.TiltCounts[d], want.TiltCounts[d])
		}
	}
	if got.Blinks != 1 || got.EyeSamples != 3 || got.HeadSamples != 2 || got.AudioSamples != 3 {
		t.Errorf("counters: %+v", got)
	}
	if !got.Anomaly {
		t.Error("anomaly not carried")
	}
	if math.Abs(got.MeanLevel-want.MeanLevel) > 1e-12 || got.PeakLevel != want.PeakLevel {
		t.Errorf("levels: got %v/%v, want %v/%v", got.MeanLevel, got.PeakLevel, want.MeanLevel, want.PeakLevel)
	}
	if math.Abs(got.Attentive()-2.0/3) > 1e-12 {
		t.Errorf("attentive: got %v", got.Attentive())
	}
}

func TestTotals_DoesNotAlias(t *testing.T) {
	s := New()
	s.RecordGaze(GazeRight, false)

	a := s.Totals()
	a.GazeCounts[GazeRight] = 99
	if b := s.Totals(); b.GazeCounts[GazeRight] != 1 {
		t.Errorf("totals alias state: got %d", b.GazeCounts[GazeRight])
	}
}

func TestTotals_Reset(t *testing.T) {
	s := New()
	s.RecordAudio(0.5, AudioVoice)
	s.Reset()

	got := s.Totals()
	if got.AudioSamples != 0 || got.MeanLevel != 0 || got.PeakLevel != 0 || got.Anomaly {
		t.Errorf("audio totals survived reset: %+v", got)
	}
	if got.LastGaze != "" {
		t.Errorf("last gaze: got %q, want empty", got.LastGaze)
	}
}
