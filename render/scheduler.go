package render

import (
	"context"
	"image"
	"runtime"
	"sync"

	newton "github.com/marben/newton_fractal"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// Options controls how a frame is split and rendered.
type Options struct {
	TileSize int     // tile edge in pixels
	Workers  int     // concurrent tiles, 0 means GOMAXPROCS
	Scale    float64 // render at this fraction of the size and upscale, 0 or 1 for full size
}

func DefaultOptions() Options {
	return Options{TileSize: 64, Workers: 0, Scale: 1}
}

// Scheduler hands out the tiles of one frame to any number of workers and
// composes the results.
type Scheduler struct {
	u   newton.Uniforms
	img *image.RGBA

	totalPixels    int
	finishedPixels int

	unstarted []image.Rectangle
	m         sync.Mutex
}

func NewScheduler(u newton.Uniforms, tileSize int) *Scheduler {
	vp := u.Viewport()
	img := image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	return &Scheduler{
		u:           u,
		img:         img,
		unstarted:   SplitRect(img.Bounds(), tileSize, tileSize),
		totalPixels: vp.Width * vp.Height,
	}
}

func (s *Scheduler) popTile() (tile image.Rectangle, found bool) {
	s.m.Lock()
	defer s.m.Unlock()

	if len(s.unstarted) == 0 {
		return image.Rectangle{}, false
	}
	tile = s.unstarted[0]
	s.unstarted = s.unstarted[1:]
	return tile, true
}

func (s *Scheduler) tileFinished(tileImg *image.RGBA) {
	s.m.Lock()
	defer s.m.Unlock()

	draw.Draw(
		s.img,
		tileImg.Bounds(),     // destination rectangle (global coords)
		tileImg,              // source image
		tileImg.Bounds().Min, // source start
		draw.Src,
	)
	s.finishedPixels += tileImg.Bounds().Dx() * tileImg.Bounds().Dy()
}

// Finished returns the rendered share of the frame in [0, 1].
func (s *Scheduler) Finished() float32 {
	s.m.Lock()
	defer s.m.Unlock()
	if s.totalPixels == 0 {
		return 1
	}
	return float32(s.finishedPixels) / float32(s.totalPixels)
}

// Render renders all tiles on renderer with the given number of workers.
func (s *Scheduler) Render(ctx context.Context, renderer newton.Renderer, workers int) (*image.RGBA, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				tile, found := s.popTile()
				if !found {
					return nil
				}
				tileImg, err := renderer.RenderTile(s.u, tile)
				if err != nil {
					return errors.Wrapf(err, "render of tile %s", tile)
				}
				s.tileFinished(&tileImg)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	renderLog().Debug().
		Int("width", s.img.Rect.Dx()).
		Int("height", s.img.Rect.Dy()).
		Float32("finished", s.Finished()).
		Msg("frame rendered")
	return s.img, nil
}

// Frame renders the full frame described by u.
func Frame(ctx context.Context, u newton.Uniforms, renderer newton.Renderer, opts Options) (*image.RGBA, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if opts.TileSize <= 0 {
		opts.TileSize = DefaultOptions().TileSize
	}
	if opts.Scale <= 0 || opts.Scale >= 1 {
		return NewScheduler(u, opts.TileSize).Render(ctx, renderer, opts.Workers)
	}

	small := Downscale(u, opts.Scale)
	img, err := NewScheduler(small, opts.TileSize).Render(ctx, renderer, opts.Workers)
	if err != nil {
		return nil, err
	}
	vp := u.Viewport()
	full := image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	draw.ApproxBiLinear.Scale(full, full.Bounds(), img, img.Bounds(), draw.Src, nil)
	return full, nil
}

// Downscale returns u for a device scale times the size, at least 2x2. The
// plane region stays the same.
func Downscale(u newton.Uniforms, scale float64) newton.Uniforms {
	w := max(2, int(float64(u.Size[0])*scale))
	h := max(2, int(float64(u.Size[1])*scale))
	u.Size = [2]float32{float32(w), float32(h)}
	return u
}

// SplitRect covers r with tileW by tileH tiles in row order. The last column
// and row are cut to fit inside r.
func SplitRect(r image.Rectangle, tileW, tileH int) []image.Rectangle {
	if tileW <= 0 || tileH <= 0 {
		panic("tile dimensions must be positive")
	}
	var tiles []image.Rectangle
	for y := r.Min.Y; y < r.Max.Y; y += tileH {
		for x := r.Min.X; x < r.Max.X; x += tileW {
			tiles = append(tiles, image.Rect(x, y, min(x+tileW, r.Max.X), min(y+tileH, r.Max.Y)))
		}
	}
	return tiles
}
