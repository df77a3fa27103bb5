// Package hub fans session snapshots out to websocket clients.
//
// Snapshots are state, not events: a client that falls behind has its queued
// frame replaced by the newest one instead of being disconnected, and a
// client that connects mid-session is sent the latest frame straight away.
package hub

import (
	"context"
	"log/slog"
	"sync"
)

// Hub maintains the set of active clients and publishes frames to them.
type Hub struct {
	name   string
	logger *slog.Logger

	clients    map[*Client]struct{}
	publish    chan Frame
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu      sync.RWMutex
	last    Frame
	hasLast bool
	skipped int64
	running bool
}

// New creates a hub. Run must be called for it to deliver anything.
func New(name string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		name:       name,
		logger:     logger.With("hub", name),
		clients:    make(map[*Client]struct{}),
		publish:    make(chan Frame, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop. It returns when ctx is cancelled, closing
// every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		for c := range h.clients {
			close(c.send)
			delete(h.clients, c)
		}
		h.running = false
		h.mu.Unlock()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			if h.hasLast {
				h.offer(c, h.last)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client connected", "clients", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client disconnected", "clients", n)

		case f := <-h.publish:
			h.mu.Lock()
			if h.hasLast && f.Seq < h.last.Seq {
				h.mu.Unlock()
				h.logger.Debug("stale frame ignored", "seq", f.Seq, "last", h.last.Seq)
				continue
			}
			h.last, h.hasLast = f, true
			for c := range h.clients {
				h.offer(c, f)
			}
			h.mu.Unlock()
		}
	}
}

// offer queues f for c, replacing a frame the client has not written yet.
// Only Run sends on client channels, so the second send never blocks.
// Callers hold h.mu.
func (h *Hub) offer(c *Client, f Frame) {
	select {
	case c.send <- f:
		return
	default:
	}
	select {
	case <-c.send:
		h.skipped++
	default:
	}
	select {
	case c.send <- f:
	default:
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Publish queues f for every client. Frames older than the last published
// one are ignored.
func (h *Hub) Publish(f Frame) {
	select {
	case h.publish <- f:
	default:
		h.logger.Warn("publish queue full, dropping frame", "seq", f.Seq)
	}
}

// PublishJSON encodes v and publishes it as frame seq.
func (h *Hub) PublishJSON(seq int64, v any) error {
	f, err := Encode(seq, v)
	if err != nil {
		return err
	}
	h.Publish(f)
	return nil
}

// Last returns the most recently published frame.
func (h *Hub) Last() (Frame, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.hasLast
}

// Skipped returns how many queued frames were replaced before a slow
// client could write them.
func (h *Hub) Skipped() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.skipped
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsRunning reports whether Run is active.
func (h *Hub) IsRunning() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}
