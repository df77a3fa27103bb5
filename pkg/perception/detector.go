// Package perception implements the per-frame attentiveness heuristics:
// gaze direction from pupil darkness inside a detected eye, and coarse head
// tilt from the offset of the detected face against the frame center.
//
// The heuristics work on equalized grayscale images and take their face and
// eye regions from a RegionDetector, so they can run against the OpenCV
// cascade backend (see perception/cascade) or against fakes in tests.
package perception

import (
	"errors"
	"image"
)

var (
	// ErrDetection wraps unexpected failures inside a region detector.
	ErrDetection = errors.New("perception: detection failed")

	// ErrNoFrame is returned when an estimator is handed a nil frame.
	ErrNoFrame = errors.New("perception: no frame")
)

// RegionDetector finds rectangular regions (faces, eyes) in a grayscale
// image. Returned rectangles are in img's coordinate space, so detecting
// inside a SubImage yields rectangles that index the parent image directly.
type RegionDetector interface {
	Detect(img *image.Gray) ([]image.Rectangle, error)

	// Close releases resources.
	Close() error
}

// Area returns width × height of r.
func Area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}

// Largest returns the region with the largest area. The first region wins
// on ties. ok is false when rects is empty.
func Largest(rects []image.Rectangle) (best image.Rectangle, ok bool) {
	if len(rects) == 0 {
		return image.Rectangle{}, false
	}

	best = rects[0]
	for _, r := range rects[1:] {
		if Area(r) > Area(best) {
			best = r
		}
	}
	return best, true
}

// Center returns the integer center of r.
func Center(r image.Rectangle) image.Point {
	return image.Pt(r.Min.X+r.Dx()/2, r.Min.Y+r.Dy()/2)
}
