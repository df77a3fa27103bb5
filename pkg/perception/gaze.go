package perception

import (
	"fmt"
	"image"
	"math"

	"github.com/teslashibe/go-attention/pkg/session"
)

// GazeReading is the outcome of one gaze estimation.
type GazeReading struct {
	Direction session.GazeDirection
	FaceFound bool
	EyeFound  bool

	// Eye is the classified eye region in frame coordinates (zero unless
	// EyeFound).
	Eye       image.Rectangle
	LeftDark  int
	RightDark int
}

// Blink reports the blink proxy: a face was found but no eye inside it.
func (r GazeReading) Blink() bool {
	return r.FaceFound && !r.EyeFound
}

// GazeEstimator classifies gaze direction from one frame.
type GazeEstimator struct {
	faces RegionDetector
	eyes  RegionDetector
	cfg   GazeConfig
}

// NewGazeEstimator creates a gaze estimator over the given face and eye
// detectors.
func NewGazeEstimator(faces, eyes RegionDetector, cfg GazeConfig) *GazeEstimator {
	return &GazeEstimator{faces: faces, eyes: eyes, cfg: cfg}
}

// Estimate classifies the gaze direction of a grayscale, equalized frame.
// On error the reading carries whatever was found before the failure and
// the unknown direction.
func (g *GazeEstimator) Estimate(gray *image.Gray) (GazeReading, error) {
	reading := GazeReading{Direction: session.GazeUnknown}
	if gray == nil {
		return reading, ErrNoFrame
	}

	faces, err := g.faces.Detect(gray)
	if err != nil {
		return reading, fmt.Errorf("%w: face: %w", ErrDetection, err)
	}
	if len(faces) == 0 {
		return reading, nil
	}
	reading.FaceFound = true

	// Eyes sit in the upper half of the face box.
	face := faces[0]
	upper := image.Rect(face.Min.X, face.Min.Y, face.Max.X, face.Min.Y+face.Dy()/2).Intersect(gray.Bounds())
	if upper.Empty() {
		return reading, nil
	}

	eyes, err := g.eyes.Detect(Crop(gray, upper))
	if err != nil {
		return reading, fmt.Errorf("%w: eye: %w", ErrDetection, err)
	}
	eye, ok := Largest(eyes)
	if !ok {
		return reading, nil
	}
	reading.EyeFound = true
	reading.Eye = eye.Intersect(upper)

	reading.Direction, reading.LeftDark, reading.RightDark = g.ClassifyEye(Crop(gray, reading.Eye))
	return reading, nil
}

// ClassifyEye splits eye into left and right halves and compares their dark
// pixel counts. Eyes below the minimum size are unknown.
func (g *GazeEstimator) ClassifyEye(eye *image.Gray) (dir session.GazeDirection, left, right int) {
	return classifyEye(eye, g.cfg)
}

func classifyEye(eye *image.Gray, cfg GazeConfig) (session.GazeDirection, int, int) {
	b := eye.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < cfg.MinEyeWidth || h < cfg.MinEyeHeight {
		return session.GazeUnknown, 0, 0
	}

	mid := b.Min.X + w/2
	left := CountDark(eye, image.Rect(b.Min.X, b.Min.Y, mid, b.Max.Y), cfg.DarkThreshold)
	right := CountDark(eye, image.Rect(mid, b.Min.Y, b.Max.X, b.Max.Y), cfg.DarkThreshold)

	threshold := float64(w*h) * cfg.ThresholdRatio
	threshold = math.Max(cfg.ThresholdMin, math.Min(threshold, cfg.ThresholdMax))

	switch {
	case math.Abs(float64(left-right)) < threshold:
		return session.GazeCenter, left, right
	case left > right:
		return session.GazeLeft, left, right
	default:
		return session.GazeRight, left, right
	}
}
