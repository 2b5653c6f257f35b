// Package config loads pacer settings from YAML files and bridges them
// to pace options.
//
// Everything in the file is optional; absent fields keep the pacer
// defaults. The one exception is the refresh period, which the pacer
// itself requires.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/pace"
	"github.com/gogpu/pace/histogram"
)

// Duration unmarshals either a Go duration string ("16.6ms") or a plain
// integer nanosecond count.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("config: bad duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var ns int64
	if err := value.Decode(&ns); err != nil {
		return fmt.Errorf("config: duration must be a string or integer nanoseconds: %w", err)
	}
	*d = Duration(ns)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// HistogramConfig configures the frame-time histogram.
type HistogramConfig struct {
	BucketMinMS float64 `yaml:"bucket_min_ms"`
	BucketMaxMS float64 `yaml:"bucket_max_ms"`
	NumBuckets  int     `yaml:"num_buckets"`
	NeverBucket bool    `yaml:"never_bucket"`
}

// Settings converts the section to histogram settings.
func (h HistogramConfig) Settings() histogram.Settings {
	return histogram.Settings{
		BucketMin:   h.BucketMinMS,
		BucketMax:   h.BucketMaxMS,
		NumBuckets:  h.NumBuckets,
		NeverBucket: h.NeverBucket,
	}
}

// TelemetryConfig configures report upload.
type TelemetryConfig struct {
	Endpoint string   `yaml:"endpoint"`
	Interval Duration `yaml:"interval"`
}

// Config is the YAML settings file.
type Config struct {
	RefreshPeriod       Duration `yaml:"refresh_period"`
	SwapInterval        int      `yaml:"swap_interval"`
	FenceTimeout        Duration `yaml:"fence_timeout"`
	AutoSwapInterval    *bool    `yaml:"auto_swap_interval"`
	AutoPipelineMode    *bool    `yaml:"auto_pipeline_mode"`
	BlockingWait        *bool    `yaml:"blocking_wait"`
	MaxAutoSwapDuration Duration `yaml:"max_auto_swap_duration"`
	FrameWindow         int      `yaml:"frame_window"`
	Stats               *bool    `yaml:"stats"`

	Histogram HistogramConfig `yaml:"histogram"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Default returns a config equivalent to the pacer defaults, with no
// refresh period set.
func Default() Config {
	return Config{
		SwapInterval: 1,
		FenceTimeout: Duration(50 * time.Millisecond),
	}
}

// Load reads and parses a YAML settings file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML settings. Unknown fields are rejected so typos in
// a settings file surface immediately.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty document keeps the defaults.
			return cfg, nil
		}
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges. The pacer re-validates on New; this
// catches errors at load time with file-oriented messages.
func (c Config) Validate() error {
	if c.RefreshPeriod <= 0 {
		return fmt.Errorf("config: refresh_period is required")
	}
	if c.SwapInterval < 1 {
		return fmt.Errorf("config: swap_interval must be at least 1")
	}
	if c.FenceTimeout < 0 {
		return fmt.Errorf("config: fence_timeout must not be negative")
	}
	if c.FrameWindow < 0 {
		return fmt.Errorf("config: frame_window must not be negative")
	}
	if c.Telemetry.Endpoint != "" && c.Telemetry.Interval < 0 {
		return fmt.Errorf("config: telemetry.interval must not be negative")
	}
	return nil
}

// Options converts the config to pace options. Zero-valued fields are
// omitted so the pacer defaults apply.
func (c Config) Options() []pace.Option {
	opts := []pace.Option{pace.WithRefreshPeriod(c.RefreshPeriod.Std())}

	if c.SwapInterval > 0 {
		opts = append(opts, pace.WithSwapInterval(c.SwapInterval))
	}
	if c.FenceTimeout > 0 {
		opts = append(opts, pace.WithFenceTimeout(c.FenceTimeout.Std()))
	}
	if c.AutoSwapInterval != nil {
		opts = append(opts, pace.WithAutoSwapInterval(*c.AutoSwapInterval))
	}
	if c.AutoPipelineMode != nil {
		opts = append(opts, pace.WithAutoPipelineMode(*c.AutoPipelineMode))
	}
	if c.BlockingWait != nil {
		opts = append(opts, pace.WithBlockingWait(*c.BlockingWait))
	}
	if c.MaxAutoSwapDuration > 0 {
		opts = append(opts, pace.WithMaxAutoSwapDuration(c.MaxAutoSwapDuration.Std()))
	}
	if c.FrameWindow > 0 {
		opts = append(opts, pace.WithFrameWindow(c.FrameWindow))
	}
	if c.Stats != nil {
		opts = append(opts, pace.WithStats(*c.Stats))
	}
	return opts
}
