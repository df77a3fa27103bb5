package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-attention/internal/app"
	"github.com/teslashibe/go-attention/internal/log"
	"github.com/teslashibe/go-attention/pkg/audioio"
)

type runOptions struct {
	duration     time.Duration
	web          bool
	addr         string
	device       string
	audioBackend string
	cascadeDir   string
	noSummary    bool
}

func newRunCmd(g *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a monitoring session",
		Long: `Run a monitoring session until interrupted or the maximum duration
elapses, then print the session summary.

The camera, microphone and cascade files must be available at start;
failures after that degrade single samples and never stop the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("duration") {
				cfg.Monitor.MaxDuration = opts.duration
			}
			if flags.Changed("web") {
				cfg.Web.Enabled = opts.web
			}
			if flags.Changed("addr") {
				cfg.Web.Addr = opts.addr
			}
			if flags.Changed("camera") {
				cfg.Camera.Device = opts.device
			}
			if flags.Changed("audio-backend") {
				cfg.Audio.Backend = audioio.Backend(opts.audioBackend)
			}
			if flags.Changed("cascade-dir") {
				cfg.Cascades.Dir = opts.cascadeDir
			}

			initLogging(cfg)

			a, err := app.New(*cfg, log.L())
			if err != nil {
				return err
			}
			defer a.Shutdown()

			ctx := cmd.Context()
			if err := a.Init(ctx); err != nil {
				return err
			}
			if err := a.Run(ctx); err != nil {
				return err
			}

			if !opts.noSummary {
				fmt.Fprintln(cmd.OutOrStdout(), a.Summary())
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.DurationVarP(&opts.duration, "duration", "d", 0, "maximum session length, 0 runs until interrupted")
	f.BoolVar(&opts.web, "web", false, "serve the live dashboard")
	f.StringVar(&opts.addr, "addr", "", "dashboard listen address")
	f.StringVar(&opts.device, "camera", "", "camera index, file or stream URL")
	f.StringVar(&opts.audioBackend, "audio-backend", "", "audio backend: auto, alsa, coreaudio, mock")
	f.StringVar(&opts.cascadeDir, "cascade-dir", "", "directory holding the Haar cascade XML files")
	f.BoolVar(&opts.noSummary, "no-summary", false, "skip the end-of-session summary")

	return cmd
}
