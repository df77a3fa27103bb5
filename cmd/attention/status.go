package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-attention/internal/httpc"
	"github.com/teslashibe/go-attention/pkg/session"
)

type statusOptions struct {
	addr    string
	summary bool
}

func newStatusCmd() *cobra.Command {
	opts := &statusOptions{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the state of a running session",
		Long: `Query the dashboard of a session started with "attention run --web"
and print its current snapshot, or the full summary with --summary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := baseURL(opts.addr)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if opts.summary {
				body, err := httpc.Get(cmd.Context(), nil, base+"/api/summary")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, strings.TrimRight(string(body), "\n"))
				return nil
			}

			var snap session.Snapshot
			if err := httpc.GetJSON(cmd.Context(), nil, base+"/api/snapshot", &snap); err != nil {
				return err
			}
			fmt.Fprintf(out, "session %s, running %s\n", snap.ID, snap.Elapsed.Round(time.Second))
			fmt.Fprintln(out, formatTotals(snap.Totals()))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", "localhost:8080", "dashboard address or URL")
	f.BoolVar(&opts.summary, "summary", false, "print the rendered session summary")

	return cmd
}

// baseURL turns a host:port or http(s) URL into the dashboard's base URL.
func baseURL(addr string) (string, error) {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", addr, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "http"
	case "https", "wss":
		u.Scheme = "https"
	default:
		return "", fmt.Errorf("invalid address %q: unsupported scheme %q", addr, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid address %q: missing host", addr)
	}
	u.Path = ""
	u.RawQuery = ""
	return u.String(), nil
}
