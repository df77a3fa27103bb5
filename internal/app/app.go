// Package app wires the attention monitor together: devices, detectors,
// the cycle driver and the optional dashboard.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-attention/internal/config"
	"github.com/teslashibe/go-attention/pkg/audioio"
	"github.com/teslashibe/go-attention/pkg/camera/webcam"
	"github.com/teslashibe/go-attention/pkg/monitor"
	"github.com/teslashibe/go-attention/pkg/perception"
	"github.com/teslashibe/go-attention/pkg/perception/cascade"
	"github.com/teslashibe/go-attention/pkg/report"
	"github.com/teslashibe/go-attention/pkg/session"
	"github.com/teslashibe/go-attention/pkg/voice"
	"github.com/teslashibe/go-attention/pkg/web"
)

// App is one monitoring session.
type App struct {
	cfg    config.Config
	logger *slog.Logger
	state  *session.State

	faces *cascade.Detector
	eyes  *cascade.Detector
	cam   *webcam.Webcam
	audio audioio.Source

	monitor *monitor.Monitor
	web     *web.Server
}

// New validates cfg and returns an uninitialized App.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		state:  session.New(),
	}, nil
}

// Init opens devices and loads detectors. Any failure here is fatal for
// the session; call Shutdown to release whatever was opened.
func (a *App) Init(ctx context.Context) error {
	var err error

	if a.faces, err = cascade.New(cascade.FaceConfig(a.cfg.Cascades.Dir)); err != nil {
		return fmt.Errorf("face detector: %w", err)
	}
	if a.eyes, err = cascade.New(cascade.EyeConfig(a.cfg.Cascades.Dir)); err != nil {
		return fmt.Errorf("eye detector: %w", err)
	}

	if a.cam, err = webcam.Open(a.cfg.Camera, a.logger); err != nil {
		return err
	}

	if a.audio, err = audioio.NewSource(a.cfg.Audio, a.logger); err != nil {
		return fmt.Errorf("%w: %v", audioio.ErrUnavailable, err)
	}
	if err := a.audio.Start(ctx); err != nil {
		return err
	}

	deps := monitor.Deps{
		Frames: a.cam,
		Gaze:   perception.NewGazeEstimator(a.faces, a.eyes, a.cfg.Gaze),
		Pose:   perception.NewHeadPoseEstimator(a.faces, a.cfg.Pose),
		Audio:  audioio.NewRecorder(a.audio, a.cfg.Audio.CaptureDuration, voice.SampleRate, a.logger),
		Voice:  voice.NewClassifier(a.cfg.Voice),
	}
	if a.monitor, err = monitor.New(a.cfg.Monitor, a.state, deps, a.logger); err != nil {
		return err
	}
	a.monitor.AddObserver(report.NewConsole(a.cfg.Monitor.ReportEvery, a.logger))

	if a.cfg.Web.Enabled {
		a.web = web.NewServer(a.cfg.Web, a.state, a.logger)
		a.monitor.AddObserver(a.web)
	}

	a.logger.Info("attention session ready",
		"session", a.state.ID(),
		"camera", a.cfg.Camera.Device,
		"audio", a.audio.Name(),
		"dashboard", a.cfg.Web.Enabled,
	)
	return nil
}

// Run drives the monitor, and the dashboard when enabled, until ctx is
// cancelled or the session's maximum duration elapses.
func (a *App) Run(ctx context.Context) error {
	if a.monitor == nil {
		return errors.New("app: Run called before Init")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The dashboard lives only as long as the session.
		defer cancel()
		return a.monitor.Run(gctx)
	})
	if a.web != nil {
		g.Go(func() error {
			return a.web.Run(gctx)
		})
	}
	return g.Wait()
}

// State returns the session state.
func (a *App) State() *session.State {
	return a.state
}

// Summary renders the end-of-session report.
func (a *App) Summary() string {
	return report.Summary(a.state.Snapshot())
}

// Shutdown releases devices and detectors.
func (a *App) Shutdown() {
	if a.audio != nil {
		st := a.audio.Stats()
		a.logger.Info("audio capture stopped",
			"backend", st.Backend,
			"chunks", st.ChunksRead,
			"overruns", st.Overruns,
		)
		if err := a.audio.Close(); err != nil {
			a.logger.Warn("closing audio source", "error", err)
		}
	}
	if a.cam != nil {
		if err := a.cam.Close(); err != nil {
			a.logger.Warn("closing camera", "error", err)
		}
	}
	for _, d := range []*cascade.Detector{a.faces, a.eyes} {
		if d != nil {
			d.Close()
		}
	}
}
