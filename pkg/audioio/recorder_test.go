package audioio

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestRecorder_Samples(t *testing.T) {
	tests := []struct {
		duration time.Duration
		rate     int
		want     int
	}{
		{500 * time.Millisecond, 16000, 8000},
		{50 * time.Millisecond, 16000, 800},
		{time.Second, 44100, 44100},
	}

	for _, tt := range tests {
		r := NewRecorder(nil, tt.duration, tt.rate, nil)
		if got := r.Samples(); got != tt.want {
			t.Errorf("Samples(%v @ %d) = %d, want %d", tt.duration, tt.rate, got, tt.want)
		}
	}
}

func TestRecorder_Record(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BufferDuration = 10 * time.Millisecond

	src := NewMockSource(cfg, nil, WithSineWave(440, 0.5))
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	rec := NewRecorder(src, 50*time.Millisecond, cfg.SampleRate, nil)
	clip, err := rec.Record(ctx)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if len(clip) != 800 {
		t.Fatalf("clip length = %d, want 800", len(clip))
	}

	var sum float64
	for _, s := range clip {
		if s < -1 || s > 1 {
			t.Fatalf("sample %f outside [-1, 1]", s)
		}
		sum += s * s
	}
	rms := math.Sqrt(sum / float64(len(clip)))
	if rms < 0.3 || rms > 0.4 {
		t.Errorf("rms = %f, want about 0.354 for a 0.5 amplitude sine", rms)
	}
}

func TestRecorder_RecordResamples(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 32000
	cfg.Channels = 2
	cfg.BufferDuration = 10 * time.Millisecond

	src := NewMockSource(cfg, nil, WithSineWave(440, 0.5))
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	rec := NewRecorder(src, 50*time.Millisecond, 16000, nil)
	clip, err := rec.Record(ctx)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if len(clip) != 800 {
		t.Errorf("clip length = %d, want 800", len(clip))
	}
}

func TestRecorder_RecordStoppedSource(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BufferDuration = 10 * time.Millisecond

	src := NewMockSource(cfg, nil)
	ctx := context.Background()
	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	src.Close()

	rec := NewRecorder(src, 50*time.Millisecond, cfg.SampleRate, nil)
	if _, err := rec.Record(ctx); !errors.Is(err, ErrCapture) {
		t.Errorf("Record after close: got %v, want ErrCapture", err)
	}
}

func TestRecorder_RecordCancelled(t *testing.T) {
	cfg := DefaultConfig()
	src := NewMockSource(cfg, nil)
	defer src.Close()

	if err := src.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := NewRecorder(src, time.Second, cfg.SampleRate, nil)
	_, err := rec.Record(ctx)
	if !errors.Is(err, ErrCapture) || !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want ErrCapture wrapping context.Canceled", err)
	}
}
