package monitor

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/teslashibe/go-attention/pkg/session"
)

// Step names, in execution order.
const (
	StepFrame     = "frame"
	StepGaze      = "gaze"
	StepHeadPose  = "head_pose"
	StepVoice     = "voice"
	StepAggregate = "aggregate"
)

// Result is the explicit outcome of one step: either a label or a failure
// with its reason.
type Result struct {
	Step  string `json:"step"`
	Label string `json:"label,omitempty"`

	// Value carries the measured scalar (RMS for the voice step).
	Value float64 `json:"value,omitempty"`

	// Blink is set by the gaze step when the blink proxy fired.
	Blink bool `json:"blink,omitempty"`

	Err error `json:"-"`

	// Fallback is true when Label is the policy default rather than a
	// measurement.
	Fallback bool          `json:"fallback,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
}

// OK reports whether the step succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Step is one stage of the cycle.
type Step struct {
	Name string

	// Run produces the step's reading without touching session state.
	Run func(ctx context.Context, c *Cycle) Result

	// Fallback is the label committed when Run fails.
	Fallback string

	// Commit writes the reconciled result into the session state. Nil for
	// steps that only feed later steps.
	Commit func(c *Cycle, r Result)
}

// Cycle carries per-cycle data between steps.
type Cycle struct {
	Seq     int64
	Started time.Time

	// Gray is the captured frame, grayscale and equalized. It is nil when
	// FrameErr is set.
	Gray     *image.Gray
	FrameErr error

	Results []Result

	// Totals is the session summary as of the aggregate step.
	Totals session.Totals

	state    *session.State
	snapOnce sync.Once
	snap     session.Snapshot
}

// Snapshot returns a full copy of the session state, taken on first call.
// Observers that need the per-sample logs should call it from ObserveCycle.
func (c *Cycle) Snapshot() session.Snapshot {
	c.snapOnce.Do(func() {
		if c.state != nil {
			c.snap = c.state.Snapshot()
		}
	})
	return c.snap
}

// Result returns the result of the named step.
func (c *Cycle) Result(step string) (Result, bool) {
	for _, r := range c.Results {
		if r.Step == step {
			return r, true
		}
	}
	return Result{}, false
}

// Failed returns the results of failed steps.
func (c *Cycle) Failed() []Result {
	var out []Result
	for _, r := range c.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Observer is notified after every completed cycle.
type Observer interface {
	ObserveCycle(c *Cycle)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(c *Cycle)

// ObserveCycle calls f(c).
func (f ObserverFunc) ObserveCycle(c *Cycle) {
	f(c)
}
