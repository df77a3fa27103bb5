package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-attention/pkg/session"
)

type watchOptions struct {
	addr  string
	count int
}

func newWatchCmd() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a running session's dashboard",
		Long: `Connect to the totals websocket of a session started with
"attention run --web" and print one line per cycle.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := watchURL(opts.addr)
			if err != nil {
				return err
			}
			return watch(cmd, u, opts.count)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", "localhost:8080", "dashboard address or URL")
	f.IntVarP(&opts.count, "count", "n", 0, "stop after this many updates, 0 for no limit")

	return cmd
}

// watchURL turns a host:port or http(s) URL into the totals websocket URL.
func watchURL(addr string) (string, error) {
	base, err := baseURL(addr)
	if err != nil {
		return "", err
	}
	return "ws" + strings.TrimPrefix(base, "http") + "/ws/totals", nil
}

func watch(cmd *cobra.Command, u string, count int) error {
	conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), u, nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w", u, err)
	}
	defer conn.Close()

	// Unblock ReadJSON on interrupt.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-cmd.Context().Done():
			conn.Close()
		case <-done:
		}
	}()

	out := cmd.OutOrStdout()
	for seen := 0; count == 0 || seen < count; seen++ {
		var totals session.Totals
		if err := conn.ReadJSON(&totals); err != nil {
			if cmd.Context().Err() != nil ||
				websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
				errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read totals: %w", err)
		}
		fmt.Fprintln(out, formatTotals(totals))
	}
	return nil
}

// formatTotals renders session totals as a single status line.
func formatTotals(t session.Totals) string {
	var b strings.Builder

	last := t.LastGaze
	if last == "" {
		last = session.GazeUnknown
	}
	fmt.Fprintf(&b, "#%d gaze=%s attentive=%.0f%% blinks=%d tilt=",
		t.Cycles, last, 100*t.Attentive(), t.Blinks)
	for i, dir := range session.TiltDirections {
		if i > 0 {
			b.WriteByte('/')
		}
		fmt.Fprintf(&b, "%d", t.TiltCounts[dir])
	}
	fmt.Fprintf(&b, " rms=%.4f", t.MeanLevel)
	if t.Anomaly {
		b.WriteString(" anomaly")
	}
	return b.String()
}
