package audioio

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// platformBackends maps GOOS to the capture backend used by BackendAuto.
var platformBackends = map[string]Backend{
	"linux":  BackendALSA,
	"darwin": BackendCoreAudio,
}

// NewSource creates an audio source for cfg. BackendAuto resolves to the
// platform's recorder; there is no silent fallback to the mock backend.
func NewSource(cfg Config, logger *slog.Logger) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	backend, err := resolveBackend(cfg.Backend, runtime.GOOS)
	if err != nil {
		return nil, err
	}
	logger.Debug("creating audio source",
		"backend", backend,
		"sample_rate", cfg.SampleRate,
		"channels", cfg.Channels,
		"buffer_ms", cfg.BufferDuration.Milliseconds(),
	)

	if backend == BackendMock {
		return NewMockSource(cfg, logger), nil
	}
	return newExecSource(backend, cfg, logger)
}

func resolveBackend(b Backend, goos string) (Backend, error) {
	switch b {
	case BackendAuto:
		if pb, ok := platformBackends[goos]; ok {
			return pb, nil
		}
		return "", fmt.Errorf("%w: no capture backend for %s", ErrUnavailable, goos)
	case BackendALSA, BackendCoreAudio, BackendMock:
		return b, nil
	default:
		return "", fmt.Errorf("unsupported backend: %s", b)
	}
}

// AvailableBackends lists the backends usable on this machine: the mock
// plus the platform backend when its recorder binary is on PATH.
func AvailableBackends() []Backend {
	return availableBackends(runtime.GOOS, exec.LookPath)
}

func availableBackends(goos string, lookPath func(string) (string, error)) []Backend {
	backends := []Backend{BackendMock}
	pb, ok := platformBackends[goos]
	if !ok {
		return backends
	}
	name, _ := captureCommand(pb, DefaultConfig())
	if _, err := lookPath(name); err == nil {
		backends = append(backends, pb)
	}
	return backends
}
