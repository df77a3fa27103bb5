package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-attention/pkg/hub"
	"github.com/teslashibe/go-attention/pkg/report"
)

// handleHealth reports liveness and the session being served
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"session": s.state.ID(),
		"clients": s.hub.ClientCount(),
	})
}

// handleSnapshot returns the current session snapshot
func (s *Server) handleSnapshot(c *fiber.Ctx) error {
	return c.JSON(s.state.Snapshot())
}

// handleSummary returns the rendered session summary
func (s *Server) handleSummary(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(report.Summary(s.state.Snapshot()))
}

// handleActions returns the action log
func (s *Server) handleActions(c *fiber.Ctx) error {
	return c.JSON(s.state.Snapshot().Actions)
}

// handleTotalsWS streams the session totals after every cycle
func (s *Server) handleTotalsWS(conn *websocket.Conn) {
	client := hub.NewClient(s.hub, conn)
	if client == nil {
		conn.Close()
		return
	}
	client.Run()
}
