// Package config handles configuration loading and live reloading for chutki.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ayusman/chutki/internal/gesture"
	"github.com/ayusman/chutki/internal/tracking"
)

// Config is the top-level configuration file.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `toml:"listen_addr"`

	// DatabasePath is the SQLite database file path.
	DatabasePath string `toml:"database_path"`

	// ReplayFile, if set, selects a pose recording to play back as the
	// tracking backend. Empty means no backend (the hand stays absent).
	ReplayFile string `toml:"replay_file"`

	// ReplayLoop loops the recording instead of losing the hand at its end.
	ReplayLoop bool `toml:"replay_loop"`

	// TickRateHz is how often the detector ticks per second.
	TickRateHz int `toml:"tick_rate_hz"`

	Detector DetectorConfig `toml:"detector"`
}

// DetectorConfig holds the snap-detector tuning parameters.
type DetectorConfig struct {
	// TrackedHand is "Left" or "Right".
	TrackedHand string `toml:"tracked_hand"`

	// ReadyDistance arms the detector, meters.
	ReadyDistance float64 `toml:"ready_distance"`

	// Velocity trips the detector, meters/second.
	Velocity float64 `toml:"velocity"`

	// CompletedDistance completes the snap, meters.
	CompletedDistance float64 `toml:"completed_distance"`

	// Window is the joint history size in samples.
	Window int `toml:"window"`
}

// Default returns the default configuration.
func Default() *Config {
	g := gesture.DefaultConfig()
	return &Config{
		ListenAddr:   ":8080",
		DatabasePath: "chutki.db",
		TickRateHz:   30,
		Detector: DetectorConfig{
			TrackedHand:       string(g.TrackedHand),
			ReadyDistance:     g.ReadyDistance,
			Velocity:          g.Velocity,
			CompletedDistance: g.CompletedDistance,
			Window:            g.Window,
		},
	}
}

// Load reads a TOML configuration file, filling unset fields with
// defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be positive, got %d", c.TickRateHz)
	}
	h := tracking.Hand(c.Detector.TrackedHand)
	if h != tracking.LeftHand && h != tracking.RightHand {
		return fmt.Errorf("tracked_hand must be %q or %q, got %q", tracking.LeftHand, tracking.RightHand, c.Detector.TrackedHand)
	}
	if c.Detector.ReadyDistance <= 0 {
		return fmt.Errorf("ready_distance must be positive, got %v", c.Detector.ReadyDistance)
	}
	if c.Detector.Velocity <= 0 {
		return fmt.Errorf("velocity must be positive, got %v", c.Detector.Velocity)
	}
	if c.Detector.CompletedDistance <= 0 {
		return fmt.Errorf("completed_distance must be positive, got %v", c.Detector.CompletedDistance)
	}
	if c.Detector.Window < 2 {
		return fmt.Errorf("window must be at least 2, got %d", c.Detector.Window)
	}
	return nil
}

// GestureConfig converts the detector section into a gesture.Config.
func (c *Config) GestureConfig() gesture.Config {
	return gesture.Config{
		TrackedHand:       tracking.Hand(c.Detector.TrackedHand),
		ReadyDistance:     c.Detector.ReadyDistance,
		Velocity:          c.Detector.Velocity,
		CompletedDistance: c.Detector.CompletedDistance,
		Window:            c.Detector.Window,
	}
}
