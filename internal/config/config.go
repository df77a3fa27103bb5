// Package config loads the attention monitor configuration.
//
// Sources are layered, later ones winning: built-in defaults, an optional
// YAML file, .env files, ATTN_* environment variables and finally command
// line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/teslashibe/go-attention/pkg/audioio"
	"github.com/teslashibe/go-attention/pkg/camera"
	"github.com/teslashibe/go-attention/pkg/monitor"
	"github.com/teslashibe/go-attention/pkg/perception"
	"github.com/teslashibe/go-attention/pkg/voice"
	"github.com/teslashibe/go-attention/pkg/web"
)

// DefaultFile is read from the working directory when no file is named.
const DefaultFile = "attention.yaml"

// DefaultCascadeDir is where distribution OpenCV packages install the Haar
// cascades.
const DefaultCascadeDir = "/usr/share/opencv4/haarcascades"

// Config is the complete monitor configuration.
type Config struct {
	Camera   camera.Config         `yaml:"camera" json:"camera"`
	Audio    audioio.Config        `yaml:"audio" json:"audio"`
	Voice    voice.Config          `yaml:"voice" json:"voice"`
	Gaze     perception.GazeConfig `yaml:"gaze" json:"gaze"`
	Pose     perception.PoseConfig `yaml:"pose" json:"pose"`
	Cascades CascadeConfig         `yaml:"cascades" json:"cascades"`
	Monitor  monitor.Config        `yaml:"monitor" json:"monitor"`
	Web      web.Config            `yaml:"web" json:"web"`
	Log      LogConfig             `yaml:"log" json:"log"`
}

// CascadeConfig locates the Haar cascade files.
type CascadeConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// LogConfig selects log verbosity and output format.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // text or json
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Camera:   camera.DefaultConfig(),
		Audio:    audioio.DefaultConfig(),
		Voice:    voice.DefaultConfig(),
		Gaze:     perception.DefaultGazeConfig(),
		Pose:     perception.DefaultPoseConfig(),
		Cascades: CascadeConfig{Dir: DefaultCascadeDir},
		Monitor:  monitor.DefaultConfig(),
		Web:      web.DefaultConfig(),
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds a Config from defaults, the YAML file at path (or DefaultFile
// if path is empty and it exists), .env files and the environment. It does
// not validate; call Validate after applying flags.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	loadDotEnv()

	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile decodes the YAML file at path over cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// loadDotEnv loads the first .env file found. Variables already set in the
// environment are left alone.
func loadDotEnv() {
	for _, path := range envPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// envPaths returns a list of paths to check for .env files.
func envPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "attention", ".env"))
	}
	return paths
}

// Validate checks every section and returns the first problem found as a
// *ConfigError.
func (c *Config) Validate() error {
	checks := []struct {
		field string
		err   error
	}{
		{"camera", c.Camera.Validate()},
		{"audio", c.Audio.Validate()},
		{"voice", c.Voice.Validate()},
		{"gaze", c.Gaze.Validate()},
		{"pose", c.Pose.Validate()},
		{"monitor", c.Monitor.Validate()},
		{"web", c.Web.Validate()},
		{"cascades.dir", c.validateCascades()},
		{"log", c.validateLog()},
	}
	for _, chk := range checks {
		if chk.err != nil {
			return &ConfigError{Field: chk.field, Message: chk.err.Error()}
		}
	}
	return nil
}

func (c *Config) validateCascades() error {
	if c.Cascades.Dir == "" {
		return errors.New("must not be empty")
	}
	return nil
}

func (c *Config) validateLog() error {
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be text or json, got %q", c.Log.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown level %q", c.Log.Level)
	}
	return nil
}
