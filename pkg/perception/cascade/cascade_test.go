package cascade

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
)

// findCascadeDir looks for OpenCV's haarcascades in the usual install
// locations.
func findCascadeDir() string {
	candidates := []string{
		os.Getenv("ATTN_CASCADE_DIR"),
		"/usr/share/opencv4/haarcascades",
		"/usr/local/share/opencv4/haarcascades",
		"/opt/homebrew/share/opencv4/haarcascades",
	}
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, FrontalFaceFile)); err == nil {
			return dir
		}
	}
	return ""
}

func TestConfigDefaults(t *testing.T) {
	face := FaceConfig("/cascades")
	if face.Path != filepath.Join("/cascades", FrontalFaceFile) {
		t.Errorf("face path: got %s", face.Path)
	}
	if face.ScaleFactor != 1.1 || face.MinNeighbors != 4 || face.MinSize != 50 {
		t.Errorf("unexpected face defaults: %+v", face)
	}

	eye := EyeConfig("/cascades")
	if eye.MinNeighbors != 3 || eye.MinSize != 10 {
		t.Errorf("unexpected eye defaults: %+v", eye)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", FaceConfig("/x"), false},
		{"no path", Config{ScaleFactor: 1.1}, true},
		{"scale too small", Config{Path: "a.xml", ScaleFactor: 1.0}, true},
		{"negative neighbors", Config{Path: "a.xml", ScaleFactor: 1.2, MinNeighbors: -1}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestNew_MissingFile(t *testing.T) {
	_, err := New(FaceConfig("/nonexistent/path"))
	if !errors.Is(err, ErrCascadeLoad) {
		t.Errorf("expected ErrCascadeLoad, got %v", err)
	}
}

func TestCompact(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	if compact(img) != img {
		t.Error("compact image should be returned as is")
	}

	sub := img.SubImage(image.Rect(2, 2, 5, 6)).(*image.Gray)
	c := compact(sub)
	if c.Bounds() != image.Rect(0, 0, 3, 4) || c.Stride != 3 {
		t.Errorf("compact sub-image: bounds %v stride %d", c.Bounds(), c.Stride)
	}
}

func TestDetect_BlankImage(t *testing.T) {
	dir := findCascadeDir()
	if dir == "" {
		t.Skip("OpenCV haarcascades not found, skipping test")
	}

	d, err := New(FaceConfig(dir))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	img := image.NewGray(image.Rect(0, 0, 320, 240))
	rects, err := d.Detect(img)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(rects) != 0 {
		t.Errorf("expected no faces in a blank image, got %d", len(rects))
	}

	sub := img.SubImage(image.Rect(100, 100, 100, 100)).(*image.Gray)
	if rects, err := d.Detect(sub); err != nil || rects != nil {
		t.Errorf("empty region: got %v, %v", rects, err)
	}
}
