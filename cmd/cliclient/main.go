// cliclient renders one Newton fractal frame on the CPU and saves it as a
// PNG file. It starts from the same configuration as the server.
package main

import (
	"context"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/marben/newton_fractal/config"
	"github.com/marben/newton_fractal/render"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type options struct {
	configPath    string
	width         int
	height        int
	roots         int
	maxIterations int
	dampingRe     float64
	dampingIm     float64
	zoom          float64
	preset        string
	out           string
	workers       int
	tile          int
}

// flagKeys maps the flags a preset would overwrite to their view config keys.
var flagKeys = map[string]string{
	"roots":          "root_count",
	"max-iterations": "max_iterations",
	"damping-re":     "damping_re",
	"damping-im":     "damping_im",
}

func main() {
	if err := newRootCmd(&options{}).Execute(); err != nil {
		log.Error().Err(err).Msg("render failed")
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cliclient [flags]",
		Short: "Render a Newton fractal to a PNG file",
		Example: `  # Render the defaults to newton.png
  cliclient

  # Six roots with an overshooting damping, zoomed in
  cliclient --preset overshoot --zoom 400 --out overshoot.png

  # Start from a config file and override its size
  cliclient -c newton.toml --width 3840 --height 2160`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), *opts)
			if err != nil {
				return err
			}
			if err := cfg.Log.SetupLogging(os.Stderr); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, opts.out)
		},
	}

	d := config.Default()
	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "TOML config file")
	f.IntVar(&opts.width, "width", d.View.Width, "image width in pixels")
	f.IntVar(&opts.height, "height", d.View.Height, "image height in pixels")
	f.IntVar(&opts.roots, "roots", d.View.RootCount, "number of roots")
	f.IntVar(&opts.maxIterations, "max-iterations", d.View.MaxIterations, "iteration limit per pixel")
	f.Float64Var(&opts.dampingRe, "damping-re", d.View.DampingRe, "real part of the damping factor")
	f.Float64Var(&opts.dampingIm, "damping-im", d.View.DampingIm, "imaginary part of the damping factor")
	f.Float64Var(&opts.zoom, "zoom", d.View.ZoomPercent, "zoom in percent, 100 is fully zoomed out")
	f.StringVar(&opts.preset, "preset", "", "named starting configuration")
	f.StringVarP(&opts.out, "out", "o", "newton.png", "output file")
	f.IntVar(&opts.workers, "workers", d.Render.Workers, "concurrent tiles, 0 for one per CPU")
	f.IntVar(&opts.tile, "tile", d.Render.TileSize, "tile edge in pixels")
	return cmd
}

// loadConfig layers the config file, the preset and the explicitly set flags.
func loadConfig(flags *pflag.FlagSet, opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}

	if flags.Changed("preset") {
		err := cfg.View.ApplyPreset(opts.preset, func(key string) bool {
			for flag, k := range flagKeys {
				if k == key && flags.Changed(flag) {
					return true
				}
			}
			return false
		})
		if err != nil {
			return config.Config{}, err
		}
	}

	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("width", func() { cfg.View.Width = opts.width })
	set("height", func() { cfg.View.Height = opts.height })
	set("roots", func() { cfg.View.RootCount = opts.roots })
	set("max-iterations", func() { cfg.View.MaxIterations = opts.maxIterations })
	set("damping-re", func() { cfg.View.DampingRe = opts.dampingRe })
	set("damping-im", func() { cfg.View.DampingIm = opts.dampingIm })
	set("zoom", func() { cfg.View.ZoomPercent = opts.zoom })
	set("workers", func() { cfg.Render.Workers = opts.workers })
	set("tile", func() { cfg.Render.TileSize = opts.tile })

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config.Config, out string) error {
	vp := cfg.Viewport()
	ctrl, err := cfg.NewController(vp)
	if err != nil {
		return err
	}

	u := ctrl.Store().Snapshot(vp)
	renderer := render.RendererImpl{OnTileRender: func(tile image.Rectangle) {
		log.Debug().Stringer("tile", tile).Msg("rendering tile")
	}}

	start := time.Now()
	img, err := render.Frame(ctx, u, renderer, cfg.RenderOptions(false))
	if err != nil {
		return err
	}
	log.Info().
		Int("width", vp.Width).
		Int("height", vp.Height).
		Int("roots", u.RootCount).
		Dur("elapsed", time.Since(start)).
		Msg("frame rendered")

	if err := savePNG(out, img); err != nil {
		return err
	}
	log.Info().Str("file", out).Msg("saved")
	return nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output file")
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
