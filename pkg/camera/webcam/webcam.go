// Package webcam reads camera frames through OpenCV and hands them out as
// histogram-equalized grayscale images.
package webcam

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-attention/pkg/camera"
)

// Webcam reads frames from an OpenCV video capture device.
type Webcam struct {
	cfg    camera.Config
	logger *slog.Logger

	mu      sync.Mutex
	capture *gocv.VideoCapture
	frame   gocv.Mat
	conv    gocv.Mat
	gray    gocv.Mat
	reads   int64
}

// Open opens the configured device. It returns camera.ErrUnavailable when the
// device cannot be opened.
func Open(cfg camera.Config, logger *slog.Logger) (*Webcam, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid camera config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	capture, err := gocv.OpenVideoCapture(parseDevice(cfg.Device))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", camera.ErrUnavailable, cfg.Device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: %s", camera.ErrUnavailable, cfg.Device)
	}

	w, h := cfg.Resolution()
	capture.Set(gocv.VideoCaptureFrameWidth, float64(w))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(h))

	logger.Info("camera opened",
		"device", cfg.Device,
		"width", capture.Get(gocv.VideoCaptureFrameWidth),
		"height", capture.Get(gocv.VideoCaptureFrameHeight),
		"stride", cfg.FrameStride,
	)

	return &Webcam{
		cfg:     cfg,
		logger:  logger,
		capture: capture,
		frame:   gocv.NewMat(),
		conv:    gocv.NewMat(),
		gray:    gocv.NewMat(),
	}, nil
}

// parseDevice maps numeric identifiers to device indexes and passes
// anything else through as a file name or URL.
func parseDevice(device string) interface{} {
	if id, err := strconv.Atoi(device); err == nil {
		return id
	}
	return device
}

// Read returns the next frame to process, skipping FrameStride-1 frames
// first. The frame is converted to grayscale and its histogram equalized to
// normalize lighting; the returned image does not alias device memory. A
// failed or empty read returns camera.ErrFrameRead.
func (w *Webcam) Read(ctx context.Context) (*image.Gray, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.capture == nil {
		return nil, fmt.Errorf("%w: camera closed", camera.ErrFrameRead)
	}

	if skip := w.cfg.FrameStride - 1; skip > 0 {
		w.capture.Grab(skip)
	}

	if ok := w.capture.Read(&w.frame); !ok || w.frame.Empty() {
		return nil, fmt.Errorf("%w: device %s returned no frame", camera.ErrFrameRead, w.cfg.Device)
	}

	img, err := grayscale(w.frame, &w.conv, &w.gray)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", camera.ErrFrameRead, err)
	}
	w.reads++

	return img, nil
}

// grayscale converts a BGR, BGRA or single-channel frame to an equalized
// 8-bit intensity image. conv and gray are scratch buffers reused across
// calls.
func grayscale(frame gocv.Mat, conv, gray *gocv.Mat) (*image.Gray, error) {
	src := frame
	switch frame.Channels() {
	case 1:
	case 3:
		gocv.CvtColor(frame, conv, gocv.ColorBGRToGray)
		src = *conv
	case 4:
		gocv.CvtColor(frame, conv, gocv.ColorBGRAToGray)
		src = *conv
	default:
		return nil, fmt.Errorf("unsupported frame with %d channels", frame.Channels())
	}

	gocv.EqualizeHist(src, gray)
	if gray.Empty() {
		return nil, errors.New("equalized frame is empty")
	}

	img, err := gray.ToImage()
	if err != nil {
		return nil, err
	}
	g, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("unexpected image type %T", img)
	}
	return g, nil
}

// Reads returns the number of frames delivered so far.
func (w *Webcam) Reads() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reads
}

// Close releases the device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.capture == nil {
		return nil
	}
	err := w.capture.Close()
	w.frame.Close()
	w.conv.Close()
	w.gray.Close()
	w.capture = nil

	w.logger.Info("camera closed", "device", w.cfg.Device, "frames", w.reads)
	return err
}
