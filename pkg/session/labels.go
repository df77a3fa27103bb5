// Package session holds the aggregation state of one monitoring session.
//
// A State is created at session start and passed by pointer through the
// cycle driver. Each estimator owns one section of it (eye, head, audio) and
// every section has its own lock, so a reader never observes a count
// without its matching log entry.
package session

// GazeDirection is the coarse direction the visible pupil is biased toward.
type GazeDirection string

const (
	GazeLeft    GazeDirection = "left"
	GazeRight   GazeDirection = "right"
	GazeCenter  GazeDirection = "center"
	GazeUnknown GazeDirection = "unknown"
)

// GazeDirections lists every gaze label in report order.
var GazeDirections = []GazeDirection{GazeLeft, GazeRight, GazeCenter, GazeUnknown}

// Valid reports whether d is one of the fixed gaze labels.
func (d GazeDirection) Valid() bool {
	switch d {
	case GazeLeft, GazeRight, GazeCenter, GazeUnknown:
		return true
	}
	return false
}

// TiltDirection is the coarse head offset from the frame center.
type TiltDirection string

const (
	TiltLeft    TiltDirection = "left"
	TiltRight   TiltDirection = "right"
	TiltUp      TiltDirection = "up"
	TiltDown    TiltDirection = "down"
	TiltNeutral TiltDirection = "neutral"
)

// TiltDirections lists every tilt label in report order.
var TiltDirections = []TiltDirection{TiltLeft, TiltRight, TiltUp, TiltDown, TiltNeutral}

// Valid reports whether d is one of the fixed tilt labels.
func (d TiltDirection) Valid() bool {
	switch d {
	case TiltLeft, TiltRight, TiltUp, TiltDown, TiltNeutral:
		return true
	}
	return false
}

// AudioLabel is the result of voice classification.
type AudioLabel string

const (
	AudioVoice AudioLabel = "voice"
	AudioNoise AudioLabel = "noise"
)
