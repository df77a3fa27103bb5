package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/teslashibe/go-attention/pkg/audioio"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ATTN_"

type envOverride struct {
	key   string
	apply func(c *Config, v string) error
}

var envOverrides = []envOverride{
	{"CAMERA_DEVICE", func(c *Config, v string) error { c.Camera.Device = v; return nil }},
	{"CAMERA_PRESET", func(c *Config, v string) error { c.Camera.Preset = v; return nil }},
	{"FRAME_STRIDE", func(c *Config, v string) error { return setInt(&c.Camera.FrameStride, v) }},
	{"AUDIO_BACKEND", func(c *Config, v string) error { c.Audio.Backend = audioio.Backend(v); return nil }},
	{"AUDIO_DEVICE", func(c *Config, v string) error { c.Audio.Device = v; return nil }},
	{"AUDIO_SAMPLE_RATE", func(c *Config, v string) error { return setInt(&c.Audio.SampleRate, v) }},
	{"CAPTURE_DURATION", func(c *Config, v string) error { return setDuration(&c.Audio.CaptureDuration, v) }},
	{"VOICE_THRESHOLD", func(c *Config, v string) error { return setFloat(&c.Voice.Threshold, v) }},
	{"CASCADE_DIR", func(c *Config, v string) error { c.Cascades.Dir = v; return nil }},
	{"MAX_DURATION", func(c *Config, v string) error { return setDuration(&c.Monitor.MaxDuration, v) }},
	{"REPORT_EVERY", func(c *Config, v string) error { return setInt(&c.Monitor.ReportEvery, v) }},
	{"CYCLE_INTERVAL", func(c *Config, v string) error { return setDuration(&c.Monitor.CycleInterval, v) }},
	{"WEB_ENABLED", func(c *Config, v string) error { return setBool(&c.Web.Enabled, v) }},
	{"WEB_ADDR", func(c *Config, v string) error { c.Web.Addr = v; return nil }},
	{"LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = v; return nil }},
	{"LOG_FORMAT", func(c *Config, v string) error { c.Log.Format = v; return nil }},
}

// EnvKeys returns every recognised environment variable name.
func EnvKeys() []string {
	keys := make([]string, len(envOverrides))
	for i, o := range envOverrides {
		keys[i] = EnvPrefix + o.key
	}
	return keys
}

// ApplyEnv applies ATTN_* variables to cfg. Malformed values are reported
// as *ConfigError rather than ignored.
func ApplyEnv(cfg *Config) error {
	for _, o := range envOverrides {
		key := EnvPrefix + o.key
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		if err := o.apply(cfg, v); err != nil {
			return &ConfigError{Field: key, Message: err.Error()}
		}
	}
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("not an integer: %q", v)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", v)
	}
	*dst = f
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("not a boolean: %q", v)
	}
	*dst = b
	return nil
}

// setDuration accepts Go durations ("90s", "2m") or bare seconds.
func setDuration(dst *time.Duration, v string) error {
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	return fmt.Errorf("not a duration: %q", v)
}
