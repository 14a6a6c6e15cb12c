// Package config loads daemon settings from an INI or TOML file, applies
// environment overrides and resolves the screen geometry.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"

	"github.com/edgewake/trace2wake/gesture"
	"github.com/edgewake/trace2wake/power"
	"github.com/edgewake/trace2wake/utils"
)

const (
	// ModeEnv holds the startup mode string, the boot-argument analogue.
	ModeEnv = "T2W"

	DefaultListen = "localhost:12010"

	configFile = "trace2wake.ini"
)

const (
	Preset1080p  = "1080p"
	Preset720p   = "720p"
	PresetAuto   = "auto"
	PresetCustom = "custom"
)

const (
	ScreenManual = "manual"
	ScreenDBus   = "dbus"
)

type Config struct {
	General  GeneralConfig  `ini:"trace2wake" toml:"trace2wake" json:"trace2wake"`
	Geometry GeometryConfig `ini:"geometry" toml:"geometry" json:"geometry"`
	Power    PowerConfig    `ini:"power" toml:"power" json:"power"`
	Server   ServerConfig   `ini:"server" toml:"server" json:"server"`
	Screen   ScreenConfig   `ini:"screen" toml:"screen" json:"screen"`
}

type GeneralConfig struct {
	Mode  string `ini:"mode" toml:"mode" json:"mode"`
	Input string `ini:"input" toml:"input" json:"input,omitempty"`
}

// GeometryConfig selects a preset or gives the arc dimensions. With preset
// "custom", width and height derive the rest unless all five explicit values
// are set.
type GeometryConfig struct {
	Preset      string `ini:"preset" toml:"preset" json:"preset"`
	Width       int    `ini:"width" toml:"width" json:"width,omitempty"`
	Height      int    `ini:"height" toml:"height" json:"height,omitempty"`
	HalfWidth   int    `ini:"half_width" toml:"half_width" json:"halfWidth,omitempty"`
	MaxHeight   int    `ini:"max_height" toml:"max_height" json:"maxHeight,omitempty"`
	LowerRadius int    `ini:"lower_radius" toml:"lower_radius" json:"lowerRadius,omitempty"`
	UpperRadius int    `ini:"upper_radius" toml:"upper_radius" json:"upperRadius,omitempty"`
	YIntercept  int    `ini:"y_intercept" toml:"y_intercept" json:"yIntercept,omitempty"`
}

type PowerConfig struct {
	HoldMs     int    `ini:"hold_ms" toml:"hold_ms" json:"holdMs"`
	Device     string `ini:"device" toml:"device" json:"device,omitempty"`
	UinputName string `ini:"uinput_name" toml:"uinput_name" json:"uinputName"`
}

type ServerConfig struct {
	Enabled bool   `ini:"enabled" toml:"enabled" json:"enabled"`
	Listen  string `ini:"listen" toml:"listen" json:"listen"`
	CORS    bool   `ini:"cors" toml:"cors" json:"cors"`
}

type ScreenConfig struct {
	Source           string `ini:"source" toml:"source" json:"source"`
	InitialSuspended bool   `ini:"initial_suspended" toml:"initial_suspended" json:"initialSuspended"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		General: GeneralConfig{
			Mode: fmt.Sprint(int(gesture.DefaultMode)),
		},
		Geometry: GeometryConfig{
			Preset: Preset1080p,
		},
		Power: PowerConfig{
			HoldMs:     int(power.DefaultHold / time.Millisecond),
			UinputName: power.DefaultUinputName,
		},
		Server: ServerConfig{
			Enabled: true,
			Listen:  DefaultListen,
		},
		Screen: ScreenConfig{
			Source: ScreenManual,
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/trace2wake/trace2wake.ini, falling back
// to ~/.config.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "trace2wake", configFile)
}

// Load reads path over the defaults and applies the environment. An empty
// path tries DefaultPath and silently keeps the defaults if it is missing.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		err := decodeFile(path, &cfg)
		switch {
		case err == nil:
			utils.Verbose("Loaded config from %s", path)
		case !explicit && errors.Is(err, os.ErrNotExist):
			utils.Verbose("No config file at %s, using defaults", path)
		default:
			return Config{}, err
		}
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		return nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := file.MapTo(cfg); err != nil {
		return fmt.Errorf("failed to map config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides the startup mode from T2W when it is set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(ModeEnv); ok {
		utils.Verbose("Startup mode from %s=%q", ModeEnv, v)
		c.General.Mode = v
	}
}

// StartupMode interprets the mode string with the "0", "1", "2" rule.
// Anything else keeps the compiled-in default.
func (c Config) StartupMode() gesture.Mode {
	mode, ok := gesture.ParseMode(c.General.Mode)
	if !ok {
		utils.Warn("Ignoring startup mode %q, using %s", c.General.Mode, gesture.DefaultMode)
	}
	return mode
}

// Hold returns the power key hold duration.
func (c Config) Hold() time.Duration {
	if c.Power.HoldMs <= 0 {
		return power.DefaultHold
	}
	return time.Duration(c.Power.HoldMs) * time.Millisecond
}

func (c Config) Validate() error {
	switch c.Geometry.Preset {
	case Preset1080p, Preset720p, PresetAuto, PresetCustom:
	default:
		return fmt.Errorf("unknown geometry preset %q", c.Geometry.Preset)
	}

	switch c.Screen.Source {
	case ScreenManual, ScreenDBus:
	default:
		return fmt.Errorf("unknown screen source %q", c.Screen.Source)
	}

	if c.Power.HoldMs < 0 {
		return fmt.Errorf("power hold_ms must not be negative, got %d", c.Power.HoldMs)
	}

	if c.Server.Enabled && c.Server.Listen == "" {
		return errors.New("server listen address is empty")
	}
	return nil
}
