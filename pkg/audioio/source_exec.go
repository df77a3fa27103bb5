package audioio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
)

// ExecSource captures raw PCM16 from a recorder child process (arecord on
// Linux, ffmpeg/avfoundation on macOS) reading its stdout.
type ExecSource struct {
	*stream

	lookPath func(string) (string, error)
	command  func(name string, args ...string) *exec.Cmd

	// exited is closed once the current recorder has been reaped.
	exited chan struct{}
}

func newExecSource(backend Backend, cfg Config, logger *slog.Logger) (*ExecSource, error) {
	s := &ExecSource{
		stream:   newStream(backend, cfg, logger),
		lookPath: exec.LookPath,
		command:  exec.Command,
	}
	name, _ := captureCommand(backend, cfg)
	s.logger.Debug("audio source created",
		"backend", backend,
		"recorder", name,
		"device", cfg.Device,
	)
	return s, nil
}

// captureCommand returns the recorder binary and arguments that write raw
// little-endian PCM16 to stdout.
func captureCommand(backend Backend, cfg Config) (string, []string) {
	rate := strconv.Itoa(cfg.SampleRate)
	channels := strconv.Itoa(cfg.Channels)

	switch backend {
	case BackendCoreAudio:
		device := cfg.Device
		if device == "" {
			device = "0"
		}
		return "ffmpeg", []string{
			"-hide_banner", "-loglevel", "error",
			"-f", "avfoundation", "-i", ":" + device,
			"-ac", channels, "-ar", rate,
			"-f", "s16le", "pipe:1",
		}
	default:
		device := cfg.Device
		if device == "" {
			device = "default"
		}
		return "arecord", []string{
			"-q", "-t", "raw", "-f", "S16_LE",
			"-r", rate, "-c", channels,
			"-D", device,
		}
	}
}

// Start launches the recorder process. A missing or failing recorder is
// reported as ErrUnavailable.
func (s *ExecSource) Start(ctx context.Context) error {
	var pid int
	err := s.launch(func() (producer, func(), error) {
		name, args := captureCommand(s.backend, s.cfg)
		if _, err := s.lookPath(name); err != nil {
			return nil, nil, fmt.Errorf("%w: %s not found: %v", ErrUnavailable, name, err)
		}

		cmd := s.command(name, args...)
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if err := cmd.Start(); err != nil {
			return nil, nil, fmt.Errorf("%w: start %s: %v", ErrUnavailable, name, err)
		}
		pid = cmd.Process.Pid

		done := make(chan struct{})
		exited := make(chan struct{})
		s.exited = exited

		run := func(out chan<- AudioChunk, stop <-chan struct{}) {
			defer close(done)
			s.capture(ctx, stdout, out, stop)
		}
		kill := func() {
			_ = cmd.Process.Kill()
			// Wait closes stdout, so it runs only once capture stopped reading.
			go func() {
				<-done
				if err := cmd.Wait(); err != nil {
					s.logger.Debug("audio recorder exited", "backend", s.backend, "error", err)
				}
				close(exited)
			}()
		}
		return run, kill, nil
	})
	if err != nil {
		return err
	}
	if pid != 0 {
		s.logger.Info("audio source started", "backend", s.backend, "pid", pid)
	}
	return nil
}

// capture reads fixed-size buffers from r until it fails or stop closes.
func (s *ExecSource) capture(ctx context.Context, r io.Reader, out chan<- AudioChunk, stop <-chan struct{}) {
	defer close(out)

	buf := make([]byte, s.cfg.BufferBytes())
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			select {
			case <-stop:
			default:
				s.logger.Warn("audio recorder stopped unexpectedly", "backend", s.backend, "error", err)
				s.Stop()
			}
			return
		}

		var chunk AudioChunk
		chunk.FromBytes(buf, s.cfg.SampleRate, s.cfg.Channels)
		if !s.deliver(ctx, out, stop, chunk) {
			return
		}
	}
}

var _ Source = (*ExecSource)(nil)
