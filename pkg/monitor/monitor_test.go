package monitor

import (
	"context"
	"errors"
	"image"
	"image/color"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-attention/pkg/perception"
	"github.com/teslashibe/go-attention/pkg/session"
	"github.com/teslashibe/go-attention/pkg/voice"
)

var errCamera = errors.New("camera: frame read failed")

type fakeFrames struct {
	errs []error // per call; nil entries yield a frame
	n    int
}

func (f *fakeFrames) Read(ctx context.Context) (*image.Gray, error) {
	i := f.n
	f.n++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	img := image.NewGray(image.Rect(0, 0, 64, 48))
	img.SetGray(1, 1, color.Gray{Y: 255})
	return img, nil
}

type gazeScript struct {
	readings []perception.GazeReading
	errs     []error
	panicAt  int // 1-based call index, 0 = never
	n        int
}

func (g *gazeScript) Estimate(gray *image.Gray) (perception.GazeReading, error) {
	g.n++
	if g.n == g.panicAt {
		panic("cascade exploded")
	}
	i := g.n - 1
	if i < len(g.errs) && g.errs[i] != nil {
		return perception.GazeReading{Direction: session.GazeUnknown}, g.errs[i]
	}
	if i < len(g.readings) {
		return g.readings[i], nil
	}
	return perception.GazeReading{Direction: session.GazeCenter, FaceFound: true, EyeFound: true}, nil
}

type poseScript struct {
	dirs []session.TiltDirection
	err  error
	n    int
}

func (p *poseScript) Estimate(gray *image.Gray) (perception.PoseReading, error) {
	i := p.n
	p.n++
	if p.err != nil {
		return perception.PoseReading{Direction: session.TiltNeutral}, p.err
	}
	if i < len(p.dirs) {
		return perception.PoseReading{Direction: p.dirs[i], FaceFound: true}, nil
	}
	return perception.PoseReading{Direction: session.TiltNeutral}, nil
}

type audioScript struct {
	clips [][]float64
	errs  []error
	n     int
}

func (a *audioScript) Record(ctx context.Context) ([]float64, error) {
	i := a.n
	a.n++
	if i < len(a.errs) && a.errs[i] != nil {
		return nil, a.errs[i]
	}
	if i < len(a.clips) {
		return a.clips[i], nil
	}
	return make([]float64, 16), nil
}

func constant(v float64, n int) []float64 {
	buf := make([]float64, n)
	for i := range buf {
		buf[i] = v
	}
	return buf
}

func newTestMonitor(t *testing.T, deps Deps) *Monitor {
	t.Helper()
	if deps.Frames == nil {
		deps.Frames = &fakeFrames{}
	}
	if deps.Gaze == nil {
		deps.Gaze = &gazeScript{}
	}
	if deps.Pose == nil {
		deps.Pose = &poseScript{}
	}
	if deps.Audio == nil {
		deps.Audio = &audioScript{}
	}
	if deps.Voice == nil {
		deps.Voice = voice.NewClassifier(voice.DefaultConfig())
	}
	m, err := New(DefaultConfig(), session.New(), deps, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func checkConsistent(t *testing.T, snap session.Snapshot) {
	t.Helper()
	var gazeSum, tiltSum int
	for _, n := range snap.Eye.Counts {
		gazeSum += n
	}
	for _, n := range snap.Head.Counts {
		tiltSum += n
	}
	if len(snap.Eye.Log) != snap.Eye.Samples || gazeSum != snap.Eye.Samples {
		t.Errorf("eye: log %d, counts %d, samples %d", len(snap.Eye.Log), gazeSum, snap.Eye.Samples)
	}
	if tiltSum != snap.Head.Samples {
		t.Errorf("head: counts %d, samples %d", tiltSum, snap.Head.Samples)
	}
	if len(snap.Audio.NoiseLevels) != snap.Audio.Samples {
		t.Errorf("audio: levels %d, samples %d", len(snap.Audio.NoiseLevels), snap.Audio.Samples)
	}
	if snap.Eye.Samples != snap.Cycles || snap.Audio.Samples != snap.Cycles {
		t.Errorf("cycles %d, eye samples %d, audio samples %d", snap.Cycles, snap.Eye.Samples, snap.Audio.Samples)
	}
}

func TestNewMissingDependency(t *testing.T) {
	_, err := New(DefaultConfig(), nil, Deps{}, nil)
	if !errors.Is(err, ErrMissingDependency) {
		t.Fatalf("New(empty deps) = %v, want ErrMissingDependency", err)
	}
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDuration = -time.Second
	deps := Deps{
		Frames: &fakeFrames{},
		Gaze:   &gazeScript{},
		Pose:   &poseScript{},
		Audio:  &audioScript{},
		Voice:  voice.NewClassifier(voice.DefaultConfig()),
	}
	if _, err := New(cfg, nil, deps, nil); err == nil {
		t.Fatal("New accepted a negative max duration")
	}
}

func TestStepOrder(t *testing.T) {
	m := newTestMonitor(t, Deps{})
	want := []string{StepFrame, StepGaze, StepHeadPose, StepVoice, StepAggregate}
	if got := m.Steps(); !slices.Equal(got, want) {
		t.Errorf("Steps() = %v, want %v", got, want)
	}

	c := m.RunCycle(context.Background())
	var ran []string
	for _, r := range c.Results {
		ran = append(ran, r.Step)
	}
	if !slices.Equal(ran, want) {
		t.Errorf("results order = %v, want %v", ran, want)
	}
}

func TestGazeScenario(t *testing.T) {
	gaze := &gazeScript{readings: []perception.GazeReading{
		{Direction: session.GazeLeft, FaceFound: true, EyeFound: true},
		{Direction: session.GazeCenter, FaceFound: true, EyeFound: true},
		{Direction: session.GazeUnknown, FaceFound: true},
	}}
	m := newTestMonitor(t, Deps{Gaze: gaze})

	for i := 0; i < 3; i++ {
		m.RunCycle(context.Background())
	}

	snap := m.State().Snapshot()
	want := map[session.GazeDirection]int{
		session.GazeLeft:    1,
		session.GazeRight:   0,
		session.GazeCenter:  1,
		session.GazeUnknown: 1,
	}
	for dir, n := range want {
		if snap.Eye.Counts[dir] != n {
			t.Errorf("counts[%s] = %d, want %d", dir, snap.Eye.Counts[dir], n)
		}
	}
	if snap.Eye.Samples != 3 {
		t.Errorf("samples = %d, want 3", snap.Eye.Samples)
	}
	if snap.Eye.Blinks != 1 {
		t.Errorf("blinks = %d, want 1", snap.Eye.Blinks)
	}
	checkConsistent(t, snap)
}

func TestFrameFailureFallback(t *testing.T) {
	frames := &fakeFrames{errs: []error{errCamera}}
	gaze := &gazeScript{}
	pose := &poseScript{}
	m := newTestMonitor(t, Deps{Frames: frames, Gaze: gaze, Pose: pose})

	c := m.RunCycle(context.Background())

	fr, _ := c.Result(StepFrame)
	if fr.OK() || !errors.Is(fr.Err, errCamera) {
		t.Errorf("frame result err = %v, want wrapped camera error", fr.Err)
	}
	var stepErr *StepError
	if !errors.As(fr.Err, &stepErr) || stepErr.Step != StepFrame {
		t.Errorf("frame error %v is not a StepError for %s", fr.Err, StepFrame)
	}

	g, _ := c.Result(StepGaze)
	if !g.Fallback || g.Label != string(session.GazeUnknown) || g.Blink {
		t.Errorf("gaze result = %+v, want unknown fallback without blink", g)
	}
	p, _ := c.Result(StepHeadPose)
	if !p.Fallback || p.Label != string(session.TiltNeutral) {
		t.Errorf("pose result = %+v, want neutral fallback", p)
	}
	if gaze.n != 0 || pose.n != 0 {
		t.Errorf("estimators called without a frame: gaze %d, pose %d", gaze.n, pose.n)
	}
	v, _ := c.Result(StepVoice)
	if !v.OK() {
		t.Errorf("voice step failed: %v", v.Err)
	}

	snap := m.State().Snapshot()
	if snap.Eye.Counts[session.GazeUnknown] != 1 || snap.Eye.Blinks != 0 {
		t.Errorf("eye stats = %+v, want one unknown and no blink", snap.Eye)
	}
	if snap.Head.Counts[session.TiltNeutral] != 1 {
		t.Errorf("head stats = %+v, want one neutral", snap.Head)
	}
	if len(snap.Actions) != 1 {
		t.Errorf("actions = %v, want the frame failure only", snap.Actions)
	}
	checkConsistent(t, snap)
}

func TestDetectionFailureFallback(t *testing.T) {
	detErr := errors.New("cascade failed")
	gaze := &gazeScript{errs: []error{detErr}}
	pose := &poseScript{err: detErr}
	m := newTestMonitor(t, Deps{Gaze: gaze, Pose: pose})

	c := m.RunCycle(context.Background())

	for _, step := range []string{StepGaze, StepHeadPose} {
		r, _ := c.Result(step)
		if !errors.Is(r.Err, detErr) || !r.Fallback {
			t.Errorf("%s result = %+v, want fallback wrapping detection error", step, r)
		}
	}
	if got := len(c.Failed()); got != 2 {
		t.Errorf("Failed() = %d results, want 2", got)
	}

	snap := m.State().Snapshot()
	if snap.Eye.Log[0] != session.GazeUnknown {
		t.Errorf("gaze log = %v, want [unknown]", snap.Eye.Log)
	}
	checkConsistent(t, snap)
}

func TestPanicRecovered(t *testing.T) {
	gaze := &gazeScript{panicAt: 1}
	pose := &poseScript{dirs: []session.TiltDirection{session.TiltLeft}}
	m := newTestMonitor(t, Deps{Gaze: gaze, Pose: pose})

	c := m.RunCycle(context.Background())

	g, _ := c.Result(StepGaze)
	if !errors.Is(g.Err, ErrPanic) {
		t.Errorf("gaze err = %v, want ErrPanic", g.Err)
	}
	p, _ := c.Result(StepHeadPose)
	if !p.OK() || p.Label != string(session.TiltLeft) {
		t.Errorf("pose result = %+v, want left after gaze panic", p)
	}

	// The next cycle is unaffected.
	m.RunCycle(context.Background())
	snap := m.State().Snapshot()
	if snap.Eye.Counts[session.GazeUnknown] != 1 || snap.Eye.Counts[session.GazeCenter] != 1 {
		t.Errorf("gaze counts = %v, want one unknown and one center", snap.Eye.Counts)
	}
	checkConsistent(t, snap)
}

func TestObserverPanicRecovered(t *testing.T) {
	m := newTestMonitor(t, Deps{})

	var after []int64
	m.AddObserver(ObserverFunc(func(*Cycle) { panic("observer boom") }))
	m.AddObserver(ObserverFunc(func(c *Cycle) { after = append(after, c.Seq) }))

	c := m.RunCycle(context.Background())
	if c == nil || len(c.Results) != 5 {
		t.Fatalf("cycle = %+v, want five results", c)
	}
	m.RunCycle(context.Background())

	if !slices.Equal(after, []int64{1, 2}) {
		t.Errorf("later observer saw cycles %v, want [1 2]", after)
	}
	snap := m.State().Snapshot()
	if snap.Cycles != 2 {
		t.Errorf("cycles = %d, want 2", snap.Cycles)
	}
	if len(snap.Actions) != 2 || snap.Actions[0].Message != "observer panic: observer boom" {
		t.Errorf("actions = %v, want two observer panic entries", snap.Actions)
	}
	checkConsistent(t, snap)
}

func TestCycleSnapshotIsLazy(t *testing.T) {
	m := newTestMonitor(t, Deps{})
	c := m.RunCycle(context.Background())

	if c.Totals.Cycles != 1 || c.Totals.EyeSamples != 1 {
		t.Errorf("totals = %+v, want one cycle and one eye sample", c.Totals)
	}
	first := c.Snapshot()
	m.RunCycle(context.Background())
	if again := c.Snapshot(); again.Cycles != first.Cycles || len(again.Eye.Log) != 1 {
		t.Errorf("snapshot changed after next cycle: %d cycles, %d gaze entries", again.Cycles, len(again.Eye.Log))
	}
	if first.ID != c.Totals.ID {
		t.Errorf("snapshot id %s, totals id %s", first.ID, c.Totals.ID)
	}
}

func TestVoiceAnomalySticky(t *testing.T) {
	audio := &audioScript{clips: [][]float64{
		constant(0, 160),
		constant(0.05, 160),
		constant(0.001, 160),
	}}
	m := newTestMonitor(t, Deps{Audio: audio})

	wantLabels := []session.AudioLabel{session.AudioNoise, session.AudioVoice, session.AudioNoise}
	wantAnomaly := []bool{false, true, true}
	for i := range wantLabels {
		c := m.RunCycle(context.Background())
		v, _ := c.Result(StepVoice)
		if v.Label != string(wantLabels[i]) {
			t.Errorf("cycle %d label = %s, want %s", i, v.Label, wantLabels[i])
		}
		if c.Totals.Anomaly != wantAnomaly[i] {
			t.Errorf("cycle %d anomaly = %v, want %v", i, c.Totals.Anomaly, wantAnomaly[i])
		}
	}

	snap := m.State().Snapshot()
	if snap.Audio.NoiseLevels[0] != 0 {
		t.Errorf("silent clip rms = %f, want 0", snap.Audio.NoiseLevels[0])
	}
	if len(snap.Actions) != 1 {
		t.Errorf("actions = %v, want one anomaly entry", snap.Actions)
	}
}

func TestAudioFailureFallback(t *testing.T) {
	audio := &audioScript{errs: []error{errors.New("audioio: capture failed")}}
	m := newTestMonitor(t, Deps{Audio: audio})

	c := m.RunCycle(context.Background())
	v, _ := c.Result(StepVoice)
	if !v.Fallback || v.Label != string(session.AudioNoise) || v.Value != 0 {
		t.Errorf("voice result = %+v, want noise fallback with rms 0", v)
	}

	snap := c.Snapshot()
	if snap.Audio.Samples != 1 || snap.Audio.NoiseLevels[0] != 0 || snap.Audio.Anomaly {
		t.Errorf("audio stats = %+v, want one 0.0 noise sample", snap.Audio)
	}
}

func TestObserverSeesEveryCycle(t *testing.T) {
	m := newTestMonitor(t, Deps{})

	var seen []int
	m.AddObserver(ObserverFunc(func(c *Cycle) {
		if len(c.Results) != 5 {
			t.Errorf("observer saw %d results, want 5", len(c.Results))
		}
		seen = append(seen, c.Totals.Cycles)
	}))

	for i := 0; i < 3; i++ {
		m.RunCycle(context.Background())
	}
	if !slices.Equal(seen, []int{1, 2, 3}) {
		t.Errorf("observed cycles = %v, want [1 2 3]", seen)
	}
}

func TestRunStopsAtMaxDuration(t *testing.T) {
	deps := Deps{
		Frames: &fakeFrames{},
		Gaze:   &gazeScript{},
		Pose:   &poseScript{},
		Audio:  &audioScript{},
		Voice:  voice.NewClassifier(voice.DefaultConfig()),
	}
	cfg := Config{MaxDuration: 50 * time.Millisecond, CycleInterval: 5 * time.Millisecond}
	m, err := New(cfg, nil, deps, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after MaxDuration")
	}

	snap := m.State().Snapshot()
	if snap.Cycles == 0 {
		t.Error("no cycles ran")
	}
	checkConsistent(t, snap)
}

func TestRunCancelled(t *testing.T) {
	m := newTestMonitor(t, Deps{})
	m.cfg.MaxDuration = 0

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := m.Run(ctx); err != nil {
			t.Errorf("Run: %v", err)
		}
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	wg.Wait()

	checkConsistent(t, m.State().Snapshot())
}
