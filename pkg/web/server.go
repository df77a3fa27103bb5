// Package web serves the live attention dashboard API.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-attention/pkg/hub"
	"github.com/teslashibe/go-attention/pkg/monitor"
	"github.com/teslashibe/go-attention/pkg/session"
)

const shutdownTimeout = 5 * time.Second

// Config holds dashboard settings.
type Config struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
}

// DefaultConfig returns a disabled dashboard bound to :8080.
func DefaultConfig() Config {
	return Config{Addr: ":8080"}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("addr %q: %w", c.Addr, err)
	}
	return nil
}

// Server is the dashboard server. It reads the session state and pushes a
// snapshot to websocket clients after every cycle.
type Server struct {
	app    *fiber.App
	cfg    Config
	state  *session.State
	hub    *hub.Hub
	logger *slog.Logger
}

// NewServer creates a dashboard over state.
func NewServer(cfg Config, state *session.State, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		state:  state,
		hub:    hub.New("snapshot", logger),
		logger: logger,
	}

	app := fiber.New(fiber.Config{
		AppName:               "Attention Dashboard",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/snapshot", s.handleSnapshot)
	api.Get("/summary", s.handleSummary)
	api.Get("/actions", s.handleActions)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/totals", websocket.New(s.handleTotalsWS))

	s.app = app
	return s
}

// App exposes the fiber app for in-process requests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("web: listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.hub.Run(ctx)

	s.logger.Info("web dashboard listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listener(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// ObserveCycle implements monitor.Observer. Websocket clients get the
// cycle totals; the logs stay behind /api/snapshot.
func (s *Server) ObserveCycle(c *monitor.Cycle) {
	if err := s.hub.PublishJSON(c.Seq, c.Totals); err != nil {
		s.logger.Warn("totals broadcast failed", "error", err)
	}
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	return s.hub.ClientCount()
}

var _ monitor.Observer = (*Server)(nil)
