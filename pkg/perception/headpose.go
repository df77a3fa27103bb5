package perception

import (
	"fmt"
	"image"

	"github.com/teslashibe/go-attention/pkg/session"
)

// PoseReading is the outcome of one head pose estimation.
type PoseReading struct {
	Direction session.TiltDirection
	FaceFound bool
	Face      image.Rectangle

	// Offset of the face center from the frame center, in pixels.
	// Positive Y is down.
	OffsetX int
	OffsetY int
}

// HeadPoseEstimator classifies coarse head tilt from the face position.
type HeadPoseEstimator struct {
	faces RegionDetector
	cfg   PoseConfig
}

// NewHeadPoseEstimator creates a head pose estimator over a face detector.
func NewHeadPoseEstimator(faces RegionDetector, cfg PoseConfig) *HeadPoseEstimator {
	return &HeadPoseEstimator{faces: faces, cfg: cfg}
}

// Estimate classifies the head tilt of a grayscale, equalized frame.
func (p *HeadPoseEstimator) Estimate(gray *image.Gray) (PoseReading, error) {
	reading := PoseReading{Direction: session.TiltNeutral}
	if gray == nil {
		return reading, ErrNoFrame
	}

	faces, err := p.faces.Detect(gray)
	if err != nil {
		return reading, fmt.Errorf("%w: face: %w", ErrDetection, err)
	}
	face, ok := Largest(faces)
	if !ok {
		return reading, nil
	}

	b := gray.Bounds()
	fc := Center(face)
	cx, cy := b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2

	reading.FaceFound = true
	reading.Face = face
	reading.OffsetX = fc.X - cx
	reading.OffsetY = fc.Y - cy
	reading.Direction = p.ClassifyOffset(reading.OffsetX, reading.OffsetY, b.Dx(), b.Dy())
	return reading, nil
}

// ClassifyOffset maps a face-center offset to a tilt direction. The axis
// with the larger deviation decides (y on ties); within it the offset must
// exceed OffsetRatio of the frame size on that axis.
func (p *HeadPoseEstimator) ClassifyOffset(dx, dy, width, height int) session.TiltDirection {
	xThreshold := float64(width) * p.cfg.OffsetRatio
	yThreshold := float64(height) * p.cfg.OffsetRatio

	if abs(dx) > abs(dy) {
		switch {
		case float64(dx) > xThreshold:
			return session.TiltRight
		case float64(dx) < -xThreshold:
			return session.TiltLeft
		}
		return session.TiltNeutral
	}

	switch {
	case float64(dy) > yThreshold:
		return session.TiltDown
	case float64(dy) < -yThreshold:
		return session.TiltUp
	}
	return session.TiltNeutral
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
