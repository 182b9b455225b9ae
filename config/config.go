// Package config loads application settings with viper. Values come from
// defaults, an optional config file and GOSIGHT_ environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gosight/control"
	"gosight/process"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "GOSIGHT"
	FileName  = "gosight"
)

// Renderer choices.
const (
	RendererAuto     = "auto"
	RendererTerminal = "term"
	RendererHeadless = "headless"
)

type Window struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type Target struct {
	PID     int    `mapstructure:"pid"`
	Process string `mapstructure:"process"`
	Base    string `mapstructure:"base"`
}

type Control struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type Scan struct {
	Levels   bool          `mapstructure:"levels"`
	Interval time.Duration `mapstructure:"interval"`
	Debug    bool          `mapstructure:"debug"`
}

// Settings is a typed snapshot of the loaded configuration.
type Settings struct {
	Window   Window  `mapstructure:"window"`
	Target   Target  `mapstructure:"target"`
	Control  Control `mapstructure:"control"`
	Scan     Scan    `mapstructure:"scan"`
	Layout   string  `mapstructure:"layout"`
	Renderer string  `mapstructure:"renderer"`
}

// SetDefaults installs every default value.
func SetDefaults() {
	viper.SetDefault("window.width", 1920)
	viper.SetDefault("window.height", 1080)

	viper.SetDefault("target.pid", 0)
	viper.SetDefault("target.process", "SoTGame.exe")
	viper.SetDefault("target.base", "0x140000000")

	viper.SetDefault("control.enabled", true)
	viper.SetDefault("control.addr", control.DefaultAddr)

	viper.SetDefault("scan.levels", true)
	viper.SetDefault("scan.interval", "1ms")
	viper.SetDefault("scan.debug", false)

	viper.SetDefault("layout", "")
	viper.SetDefault("renderer", RendererAuto)

	p := control.Defaults()
	viper.SetDefault("params.prediction", p.Prediction)
	viper.SetDefault("params.treasure", p.Treasure)
	viper.SetDefault("params.xMaps", p.XMaps)
	viper.SetDefault("params.riddles", p.Riddles)
	viper.SetDefault("params.fovMultiplier", p.FOVMultiplier)
	viper.SetDefault("params.maxSimNum", p.MaxSimulations)
	viper.SetDefault("params.movementMode", p.MovementMode)
}

// Load sets defaults, binds the environment and reads the config file. An
// empty path searches the working directory for gosight.{yaml,json,toml}; a
// missing file is not an error then.
func Load(path string) error {
	SetDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
		return nil
	}

	viper.SetConfigName(FileName)
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Current decodes the loaded configuration.
func Current() (Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("decoding config: %w", err)
	}
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return s, fmt.Errorf("window %dx%d must be positive", s.Window.Width, s.Window.Height)
	}
	switch s.Renderer {
	case RendererAuto, RendererTerminal, RendererHeadless:
	default:
		return s, fmt.Errorf("unknown renderer %q", s.Renderer)
	}
	return s, nil
}

// Params returns the initial control record.
func Params() (control.Params, error) {
	p := control.Params{
		Prediction:     viper.GetBool("params.prediction"),
		Treasure:       viper.GetBool("params.treasure"),
		XMaps:          viper.GetBool("params.xMaps"),
		Riddles:        viper.GetBool("params.riddles"),
		FOVMultiplier:  float32(viper.GetFloat64("params.fovMultiplier")),
		MaxSimulations: viper.GetInt32("params.maxSimNum"),
		MovementMode:   uint8(viper.GetUint("params.movementMode")),
	}
	if err := p.Validate(); err != nil {
		return control.Params{}, fmt.Errorf("params: %w", err)
	}
	return p, nil
}

// BaseAddress parses target.base, accepting hex with a 0x prefix.
func (t Target) BaseAddress() (process.ProcessMemoryAddress, error) {
	v, err := strconv.ParseUint(t.Base, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("target base %q: %w", t.Base, err)
	}
	return process.ProcessMemoryAddress(v), nil
}
