// Package cascade provides Haar cascade region detectors backed by OpenCV.
package cascade

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-attention/pkg/perception"
)

// ErrCascadeLoad is returned when a cascade file is missing or invalid.
var ErrCascadeLoad = errors.New("cascade: cannot load classifier")

// Well-known OpenCV cascade file names.
const (
	FrontalFaceFile = "haarcascade_frontalface_default.xml"
	EyeFile         = "haarcascade_eye.xml"
)

// Config holds cascade detector parameters.
type Config struct {
	Path         string  `yaml:"path" json:"path"`
	ScaleFactor  float64 `yaml:"scale_factor" json:"scale_factor"`
	MinNeighbors int     `yaml:"min_neighbors" json:"min_neighbors"`
	MinSize      int     `yaml:"min_size" json:"min_size"` // square, pixels
}

// FaceConfig returns the frontal face defaults.
func FaceConfig(dir string) Config {
	return Config{
		Path:         filepath.Join(dir, FrontalFaceFile),
		ScaleFactor:  1.1,
		MinNeighbors: 4,
		MinSize:      50,
	}
}

// EyeConfig returns the eye defaults.
func EyeConfig(dir string) Config {
	return Config{
		Path:         filepath.Join(dir, EyeFile),
		ScaleFactor:  1.1,
		MinNeighbors: 3,
		MinSize:      10,
	}
}

// Validate checks the detector parameters.
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("cascade path is required")
	}
	if c.ScaleFactor <= 1 {
		return fmt.Errorf("scale_factor must be > 1, got %v", c.ScaleFactor)
	}
	if c.MinNeighbors < 0 {
		return fmt.Errorf("min_neighbors must not be negative, got %d", c.MinNeighbors)
	}
	return nil
}

// Detector runs a Haar cascade over grayscale images.
type Detector struct {
	classifier gocv.CascadeClassifier
	cfg        Config
	mu         sync.Mutex // CascadeClassifier is not safe for concurrent use
}

// New loads the cascade named by cfg.Path.
func New(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCascadeLoad, err)
	}
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCascadeLoad, cfg.Path, err)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cfg.Path) {
		classifier.Close()
		return nil, fmt.Errorf("%w: %s", ErrCascadeLoad, cfg.Path)
	}

	return &Detector{classifier: classifier, cfg: cfg}, nil
}

// Detect runs the cascade over img and returns regions in img's
// coordinate space.
func (d *Detector) Detect(img *image.Gray) ([]image.Rectangle, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, nil
	}

	mat, err := gocv.ImageGrayToMatGray(compact(img))
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	d.mu.Lock()
	rects := d.classifier.DetectMultiScaleWithParams(
		mat,
		d.cfg.ScaleFactor,
		d.cfg.MinNeighbors,
		0,
		image.Pt(d.cfg.MinSize, d.cfg.MinSize),
		image.Pt(0, 0),
	)
	d.mu.Unlock()

	for i := range rects {
		rects[i] = rects[i].Add(b.Min)
	}
	return rects, nil
}

// Close releases the classifier.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classifier.Close()
}

// compact returns img with origin bounds and a tight stride, which is the
// layout gocv expects. Sub-images are copied.
func compact(img *image.Gray) *image.Gray {
	b := img.Bounds()
	if b.Min == (image.Point{}) && img.Stride == b.Dx() && len(img.Pix) == b.Dx()*b.Dy() {
		return img
	}
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(out.Pix[y*out.Stride:(y+1)*out.Stride], img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return out
}

var _ perception.RegionDetector = (*Detector)(nil)
