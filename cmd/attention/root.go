package main

import (
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-attention/internal/config"
	"github.com/teslashibe/go-attention/internal/log"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "attention",
		Short: "Webcam and microphone attention monitor",
		Long: `attention - estimates where a person is looking, how their head is
tilted and whether anyone is speaking, and keeps running statistics for
the session.

Configuration is layered, later sources winning:
  built-in defaults
  attention.yaml (or --config)
  .env in the working directory or ~/.config/attention/
  ATTN_* environment variables
  command line flags

Examples:
  # Two minute session with the live dashboard
  attention run --web

  # Follow a running dashboard from another terminal
  attention watch --addr localhost:8080

  # One-off snapshot of a running session
  attention status`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default ./"+config.DefaultFile+" if present)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format: text or json")

	cmd.AddCommand(
		newRunCmd(opts),
		newWatchCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig loads the layered configuration and applies the global flags.
// Validation is left to the caller, after command flags are applied.
func (o *globalOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	return cfg, nil
}

// initLogging configures the global logger from cfg.
func initLogging(cfg *config.Config) {
	log.Init(cfg.Log.Level, cfg.Log.Format)
}
