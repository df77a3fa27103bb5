package audioio

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// streamDepth is how many chunks may queue before new ones are dropped.
const streamDepth = 10

// producer fills out until stop is closed or it fails. It must close out
// before returning.
type producer func(out chan<- AudioChunk, stop <-chan struct{})

// stream is the run state shared by every Source. A producer goroutine owns
// the chunk channel; Stop only signals it, so a send never races a close.
type stream struct {
	backend Backend
	cfg     Config
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	closed  bool
	ch      chan AudioChunk
	stop    chan struct{}
	onStop  func()

	chunks   atomic.Int64
	samples  atomic.Int64
	overruns atomic.Int64
}

func newStream(backend Backend, cfg Config, logger *slog.Logger) *stream {
	if logger == nil {
		logger = slog.Default()
	}
	ch := make(chan AudioChunk)
	close(ch)
	return &stream{
		backend: backend,
		cfg:     cfg,
		logger:  logger,
		ch:      ch,
	}
}

// launch runs setup under the lock and starts the producer it returns.
// onStop, if set, runs when the stream stops.
func (s *stream) launch(setup func() (producer, func(), error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return io.ErrClosedPipe
	}
	if s.running {
		return nil
	}

	run, onStop, err := setup()
	if err != nil {
		return err
	}

	s.running = true
	s.onStop = onStop
	s.stop = make(chan struct{})
	s.ch = make(chan AudioChunk, streamDepth)
	go run(s.ch, s.stop)
	return nil
}

// deliver queues chunk without blocking. It returns false once the producer
// should exit.
func (s *stream) deliver(ctx context.Context, out chan<- AudioChunk, stop <-chan struct{}, chunk AudioChunk) bool {
	select {
	case <-ctx.Done():
		s.Stop()
		return false
	case <-stop:
		return false
	default:
	}

	select {
	case out <- chunk:
		s.chunks.Add(1)
		s.samples.Add(int64(len(chunk.Samples)))
	default:
		s.overruns.Add(1)
		s.logger.Debug("audio buffer full, dropping chunk", "backend", s.backend)
	}
	return true
}

// Stop halts capture. The producer closes the stream on its way out.
func (s *stream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	close(s.stop)
	if s.onStop != nil {
		s.onStop()
		s.onStop = nil
	}
	s.logger.Info("audio source stopped", "backend", s.backend)
	return nil
}

// Read returns the next chunk, or io.EOF once the source has stopped.
func (s *stream) Read(ctx context.Context) (AudioChunk, error) {
	ch := s.Stream()
	select {
	case <-ctx.Done():
		return AudioChunk{}, ctx.Err()
	case chunk, ok := <-ch:
		if !ok {
			return AudioChunk{}, io.EOF
		}
		return chunk, nil
	}
}

// Stream returns the current chunk channel. Before Start it is closed.
func (s *stream) Stream() <-chan AudioChunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch
}

func (s *stream) Config() Config { return s.cfg }

func (s *stream) Name() string { return string(s.backend) }

// Close stops the source for good.
func (s *stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return s.Stop()
}

func (s *stream) Stats() SourceStats {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	return SourceStats{
		ChunksRead:  s.chunks.Load(),
		SamplesRead: s.samples.Load(),
		Overruns:    s.overruns.Load(),
		Running:     running,
		Backend:     string(s.backend),
	}
}
