// Package monitor drives the attention pipeline: a fixed, ordered list of
// steps run once per cycle against a single session state.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/teslashibe/go-attention/pkg/perception"
	"github.com/teslashibe/go-attention/pkg/session"
	"github.com/teslashibe/go-attention/pkg/voice"
)

// FrameSource supplies one grayscale, histogram-equalized frame per call
// or a distinguishable error.
type FrameSource interface {
	Read(ctx context.Context) (*image.Gray, error)
}

// AudioRecorder supplies one fixed-length mono clip per call.
type AudioRecorder interface {
	Record(ctx context.Context) ([]float64, error)
}

// GazeEstimator classifies gaze on an equalized grayscale frame.
type GazeEstimator interface {
	Estimate(gray *image.Gray) (perception.GazeReading, error)
}

// PoseEstimator classifies head tilt on an equalized grayscale frame.
type PoseEstimator interface {
	Estimate(gray *image.Gray) (perception.PoseReading, error)
}

// VoiceClassifier labels an audio clip.
type VoiceClassifier interface {
	Classify(buf []float64) voice.Reading
}

// Deps are the collaborators a Monitor drives.
type Deps struct {
	Frames FrameSource
	Gaze   GazeEstimator
	Pose   PoseEstimator
	Audio  AudioRecorder
	Voice  VoiceClassifier
}

func (d Deps) validate() error {
	switch {
	case d.Frames == nil:
		return fmt.Errorf("%w: frame source", ErrMissingDependency)
	case d.Gaze == nil:
		return fmt.Errorf("%w: gaze estimator", ErrMissingDependency)
	case d.Pose == nil:
		return fmt.Errorf("%w: pose estimator", ErrMissingDependency)
	case d.Audio == nil:
		return fmt.Errorf("%w: audio recorder", ErrMissingDependency)
	case d.Voice == nil:
		return fmt.Errorf("%w: voice classifier", ErrMissingDependency)
	}
	return nil
}

// Monitor owns the session state and runs the step list.
type Monitor struct {
	cfg    Config
	state  *session.State
	deps   Deps
	steps  []Step
	logger *slog.Logger

	mu        sync.Mutex
	seq       int64
	observers []Observer
}

// New creates a monitor over state. A nil state starts a fresh session.
func New(cfg Config, state *session.State, deps Deps, logger *slog.Logger) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid monitor config: %w", err)
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if state == nil {
		state = session.New()
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Monitor{
		cfg:    cfg,
		state:  state,
		deps:   deps,
		logger: logger,
	}
	m.steps = []Step{
		{Name: StepFrame, Run: m.captureFrame},
		{Name: StepGaze, Run: m.estimateGaze, Fallback: string(session.GazeUnknown), Commit: m.commitGaze},
		{Name: StepHeadPose, Run: m.estimatePose, Fallback: string(session.TiltNeutral), Commit: m.commitPose},
		{Name: StepVoice, Run: m.classifyVoice, Fallback: string(session.AudioNoise), Commit: m.commitVoice},
		{Name: StepAggregate, Run: m.aggregate, Commit: m.commitAggregate},
	}
	return m, nil
}

// State returns the session state the monitor writes to.
func (m *Monitor) State() *session.State {
	return m.state
}

// Steps returns the step names in execution order.
func (m *Monitor) Steps() []string {
	names := make([]string, len(m.steps))
	for i, s := range m.steps {
		names[i] = s.Name
	}
	return names
}

// AddObserver registers o to be called after every cycle.
func (m *Monitor) AddObserver(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// Run repeats cycles until ctx is cancelled or MaxDuration elapses.
// Per-step failures never stop the loop.
func (m *Monitor) Run(ctx context.Context) error {
	if m.cfg.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.MaxDuration)
		defer cancel()
	}

	m.logger.Info("attention monitor started",
		"session", m.state.ID(),
		"max_duration", m.cfg.MaxDuration,
		"steps", m.Steps(),
	)

	for ctx.Err() == nil {
		m.RunCycle(ctx)

		if m.cfg.CycleInterval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(m.cfg.CycleInterval):
			}
		}
	}

	snap := m.state.Snapshot()
	m.logger.Info("attention monitor stopped",
		"session", snap.ID,
		"cycles", snap.Cycles,
		"elapsed", snap.Elapsed.Round(time.Millisecond),
		"reason", context.Cause(ctx),
	)
	return nil
}

// RunCycle executes every step once, in order, and returns the cycle.
func (m *Monitor) RunCycle(ctx context.Context) *Cycle {
	m.mu.Lock()
	m.seq++
	c := &Cycle{
		Seq:      m.seq,
		Started:  time.Now(),
		FrameErr: ErrNoFrame,
		state:    m.state,
	}
	observers := append([]Observer(nil), m.observers...)
	m.mu.Unlock()

	for _, step := range m.steps {
		res := m.run(ctx, step, c)
		if !res.OK() {
			res = m.fallback(step, res)
		}
		if step.Commit != nil {
			step.Commit(c, res)
		}
		c.Results = append(c.Results, res)
	}

	for _, o := range observers {
		m.notify(o, c)
	}
	return c
}

// notify calls one observer. A panicking observer is logged and recorded
// as an action; the remaining observers and later cycles still run.
func (m *Monitor) notify(o Observer, c *Cycle) {
	defer func() {
		if p := recover(); p != nil {
			m.logger.Error("observer panicked", "cycle", c.Seq, "panic", p, "stack", string(debug.Stack()))
			m.state.LogAction(fmt.Sprintf("observer panic: %v", p))
		}
	}()
	o.ObserveCycle(c)
}

// run invokes one step, converting a panic into a failed Result.
func (m *Monitor) run(ctx context.Context, step Step, c *Cycle) (res Result) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			m.logger.Error("step panicked", "step", step.Name, "panic", p, "stack", string(debug.Stack()))
			res = Result{Err: fmt.Errorf("%w: %v", ErrPanic, p)}
		}
		res.Step = step.Name
		res.Elapsed = time.Since(start)
	}()
	return step.Run(ctx, c)
}

// fallback applies the failure policy: the step's default label is
// committed in place of a measurement.
func (m *Monitor) fallback(step Step, res Result) Result {
	res.Err = &StepError{Step: step.Name, Err: res.Err}
	res.Label = step.Fallback
	res.Value = 0
	res.Blink = false
	res.Fallback = true

	// Steps skipped for lack of a frame repeat the frame failure.
	if errors.Is(res.Err, ErrNoFrame) {
		m.logger.Debug("step skipped", "step", step.Name, "fallback", res.Label)
		return res
	}

	m.logger.Warn("step failed", "step", step.Name, "fallback", res.Label, "error", res.Err)
	m.state.LogAction(res.Err.Error())
	return res
}

func (m *Monitor) captureFrame(ctx context.Context, c *Cycle) Result {
	frame, err := m.deps.Frames.Read(ctx)
	if err != nil {
		return Result{Err: err}
	}
	if frame == nil {
		return Result{Err: perception.ErrNoFrame}
	}
	c.Gray = frame
	c.FrameErr = nil
	return Result{Label: frame.Bounds().Size().String()}
}

func (m *Monitor) estimateGaze(_ context.Context, c *Cycle) Result {
	if c.FrameErr != nil {
		return Result{Err: ErrNoFrame}
	}
	reading, err := m.deps.Gaze.Estimate(c.Gray)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Label: string(reading.Direction), Blink: reading.Blink()}
}

func (m *Monitor) commitGaze(_ *Cycle, r Result) {
	m.state.RecordGaze(session.GazeDirection(r.Label), r.Blink)
}

func (m *Monitor) estimatePose(_ context.Context, c *Cycle) Result {
	if c.FrameErr != nil {
		return Result{Err: ErrNoFrame}
	}
	reading, err := m.deps.Pose.Estimate(c.Gray)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Label: string(reading.Direction)}
}

func (m *Monitor) commitPose(_ *Cycle, r Result) {
	m.state.RecordTilt(session.TiltDirection(r.Label))
}

func (m *Monitor) classifyVoice(ctx context.Context, _ *Cycle) Result {
	buf, err := m.deps.Audio.Record(ctx)
	if err != nil {
		return Result{Err: err}
	}
	reading := m.deps.Voice.Classify(buf)
	return Result{Label: string(reading.Label), Value: reading.RMS}
}

func (m *Monitor) commitVoice(_ *Cycle, r Result) {
	if m.state.RecordAudio(r.Value, session.AudioLabel(r.Label)) {
		m.logger.Warn("voice detected, anomaly raised", "rms", r.Value)
		m.state.LogAction(fmt.Sprintf("voice detected (rms %.4f): anomaly raised", r.Value))
	}
}

func (m *Monitor) aggregate(_ context.Context, _ *Cycle) Result {
	return Result{}
}

func (m *Monitor) commitAggregate(c *Cycle, _ Result) {
	m.state.MarkCycle()
	c.Totals = m.state.Totals()
}
