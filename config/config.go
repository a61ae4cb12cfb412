// Package config loads the TOML configuration shared by the server and the
// command line renderer.
package config

import (
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	newton "github.com/marben/newton_fractal"
	"github.com/marben/newton_fractal/render"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server ServerConfig `toml:"server"`
	View   ViewConfig   `toml:"view"`
	Render RenderConfig `toml:"render"`
	Log    LogConfig    `toml:"log"`
}

type ServerConfig struct {
	Addr              string        `toml:"addr"`
	StaticDir         string        `toml:"static_dir"`
	ReadHeaderTimeout time.Duration `toml:"read_header_timeout"`
	OriginPatterns    []string      `toml:"origin_patterns"`
}

// ViewConfig is the initial state of every new view.
type ViewConfig struct {
	Width         int     `toml:"width"`
	Height        int     `toml:"height"`
	Preset        string  `toml:"preset"`
	RootCount     int     `toml:"root_count"`
	MaxIterations int     `toml:"max_iterations"`
	DampingRe     float64 `toml:"damping_re"`
	DampingIm     float64 `toml:"damping_im"`
	ZoomPercent   float64 `toml:"zoom_percent"`
	ZoomToCursor  bool    `toml:"zoom_to_cursor"`
	HitRadius     float64 `toml:"hit_radius"`
}

type RenderConfig struct {
	// Enabled makes the server rasterize frames itself and send them as PNG.
	Enabled      bool    `toml:"enabled"`
	TileSize     int     `toml:"tile_size"`
	Workers      int     `toml:"workers"`
	PreviewScale float64 `toml:"preview_scale"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			StaticDir:         "./static",
			ReadHeaderTimeout: 5 * time.Second,
			OriginPatterns:    []string{"localhost:*", "127.0.0.1:*"},
		},
		View: ViewConfig{
			Width:         1280,
			Height:        720,
			RootCount:     newton.DefaultRootCount,
			MaxIterations: newton.DefaultMaxIterations,
			DampingRe:     newton.DefaultDamping,
			ZoomPercent:   100,
			ZoomToCursor:  true,
			HitRadius:     newton.RootIndicatorRadius,
		},
		Render: RenderConfig{
			Enabled:      true,
			TileSize:     64,
			Workers:      0,
			PreviewScale: 0.5,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
// Keys not known to Config are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "decode %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.Errorf("%s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if cfg.View.Preset != "" {
		err := cfg.View.ApplyPreset(cfg.View.Preset, func(key string) bool {
			return md.IsDefined("view", key)
		})
		if err != nil {
			return Config{}, errors.Wrap(err, path)
		}
	}
	return cfg, cfg.Validate()
}

// ApplyPreset copies the named preset into v, skipping the keys for which
// keep returns true.
func (v *ViewConfig) ApplyPreset(name string, keep func(key string) bool) error {
	p, ok := newton.PresetByName(name)
	if !ok {
		return errors.Errorf("unknown preset %q", name)
	}
	v.Preset = p.Name
	if !keep("root_count") {
		v.RootCount = p.RootCount
	}
	if !keep("max_iterations") {
		v.MaxIterations = p.MaxIterations
	}
	if !keep("damping_re") {
		v.DampingRe = real(p.Damping)
	}
	if !keep("damping_im") {
		v.DampingIm = imag(p.Damping)
	}
	return nil
}

func (c Config) Validate() error {
	if !c.Viewport().Valid() {
		return errors.Wrapf(newton.ErrInvalidViewport, "view %dx%d", c.View.Width, c.View.Height)
	}
	if err := newton.CheckRootCount(c.View.RootCount); err != nil {
		return errors.Wrap(err, "view.root_count")
	}
	if c.View.MaxIterations < 1 {
		return errors.Wrapf(newton.ErrInvalidMaxIterations, "view.max_iterations %d", c.View.MaxIterations)
	}
	if !finite(c.View.DampingRe) || !finite(c.View.DampingIm) {
		return errors.Wrap(newton.ErrInvalidDamping, "view.damping")
	}
	if err := newton.CheckZoomFactor(c.View.ZoomPercent / 100); err != nil {
		return errors.Wrap(err, "view.zoom_percent")
	}
	if !(c.View.HitRadius > 0) {
		return errors.Errorf("view.hit_radius must be positive, got %v", c.View.HitRadius)
	}
	if c.Render.TileSize < 1 {
		return errors.Errorf("render.tile_size must be positive, got %d", c.Render.TileSize)
	}
	if c.Render.Workers < 0 {
		return errors.Errorf("render.workers must not be negative, got %d", c.Render.Workers)
	}
	if !(c.Render.PreviewScale > 0 && c.Render.PreviewScale <= 1) {
		return errors.Errorf("render.preview_scale must be in (0, 1], got %v", c.Render.PreviewScale)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	return nil
}

func (c Config) Viewport() newton.Viewport {
	return newton.Viewport{Width: c.View.Width, Height: c.View.Height}
}

func (c Config) Damping() complex128 {
	return complex(c.View.DampingRe, c.View.DampingIm)
}

func (c Config) StoreOptions() []newton.StoreOption {
	return []newton.StoreOption{
		newton.WithRootCount(c.View.RootCount),
		newton.WithMaxIterations(c.View.MaxIterations),
		newton.WithDamping(c.Damping()),
	}
}

func (c Config) ControllerOptions() []newton.ControllerOption {
	return []newton.ControllerOption{
		newton.WithHitRadius(c.View.HitRadius),
		newton.WithZoomToCursor(c.View.ZoomToCursor),
	}
}

// NewController builds a store and controller in the configured initial
// state for a device of size vp.
func (c Config) NewController(vp newton.Viewport) (*newton.Controller, error) {
	store, err := newton.NewStore(vp, c.StoreOptions()...)
	if err != nil {
		return nil, err
	}
	store.SetZoomPercent(c.View.ZoomPercent)
	return newton.NewController(store, vp, c.ControllerOptions()...)
}

// RenderOptions returns the rasterizer options, at preview scale if asked.
func (c Config) RenderOptions(preview bool) render.Options {
	opts := render.Options{
		TileSize: c.Render.TileSize,
		Workers:  c.Render.Workers,
		Scale:    1,
	}
	if preview {
		opts.Scale = c.Render.PreviewScale
	}
	return opts
}

// SetupLogging installs the global zerolog logger writing to w.
func (l LogConfig) SetupLogging(w io.Writer) error {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		return errors.Wrap(err, "log.level")
	}
	zerolog.SetGlobalLevel(level)
	if w == nil {
		w = os.Stderr
	}
	if l.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
