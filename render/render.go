// Package render is a CPU rasterizer for newton.Uniforms. It draws what the
// fragment shader draws, one tile at a time, for server side frames, PNG
// export and tests.
package render

import (
	"image"
	"image/color"
	"math"
	"math/cmplx"

	newton "github.com/marben/newton_fractal"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// renderLog is the render module logger. It is derived on every call so that
// it follows the global logger installed at startup.
func renderLog() *zerolog.Logger {
	l := log.With().Str("module", "render").Logger()
	return &l
}

var indicatorColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

type RendererImpl struct {
	OnTileRender func(tile image.Rectangle)
}

var _ newton.Renderer = RendererImpl{}

func (imp RendererImpl) RenderTile(u newton.Uniforms, tile image.Rectangle) (image.RGBA, error) {
	if err := u.Validate(); err != nil {
		return image.RGBA{}, err
	}
	if imp.OnTileRender != nil {
		imp.OnTileRender(tile)
	}

	// Image has global coordinates (tile.Min .. tile.Max)
	img := image.NewRGBA(tile)
	p := newProblem(u)
	b := u.Bounds()
	vp := u.Viewport()
	xFactor := b.Width() / float64(vp.Width-1)
	yFactor := -b.Height() / float64(vp.Height-1)

	for py := tile.Min.Y; py < tile.Max.Y; py++ {
		zy := float64(py)*yFactor + b.Top
		for px := tile.Min.X; px < tile.Max.X; px++ {
			z := complex(float64(px)*xFactor+b.Left, zy)
			col := p.shade(z)
			if p.onIndicator(z, xFactor) {
				col = indicatorColor
			}
			img.SetRGBA(px, py, col)
		}
	}
	return *img, nil
}

// problem is a Newton iteration setup unpacked from Uniforms
type problem struct {
	roots   []complex128
	colors  []newton.RGB
	damping complex128
	maxIter int
	eps     float64
	rir     float64
}

func newProblem(u newton.Uniforms) problem {
	p := problem{
		roots:   make([]complex128, u.RootCount),
		colors:  make([]newton.RGB, u.RootCount),
		damping: u.Damp(),
		maxIter: u.MaxIterations,
		eps:     float64(u.EPS),
		rir:     float64(u.RootIndicatorRadius),
	}
	for i := range u.RootCount {
		p.roots[i] = u.Root(i)
		p.colors[i] = u.Color(i)
	}
	return p
}

// eval returns the polynomial with the given roots and its derivative at z.
func eval(z complex128, roots []complex128) (f, df complex128) {
	f = 1
	for _, r := range roots {
		d := z - r
		df = df*d + f
		f *= d
	}
	return f, df
}

// step is one damped Newton step. ok is false where the derivative vanishes.
func (p problem) step(z complex128) (complex128, bool) {
	f, df := eval(z, p.roots)
	if df == 0 {
		return z, false
	}
	z0 := z - p.damping*f/df
	if cmplx.IsNaN(z0) || cmplx.IsInf(z0) {
		return z, false
	}
	return z0, true
}

// converge iterates from z and returns the root reached and the number of
// steps it took.
func (p problem) converge(z complex128) (root, steps int, ok bool) {
	for i := range p.maxIter {
		z0, valid := p.step(z)
		if !valid {
			break
		}
		if cmplx.Abs(z0-z) < p.eps {
			for r, v := range p.roots {
				if cmplx.Abs(z0-v) < p.eps {
					return r, i, true
				}
			}
		}
		z = z0
	}
	return -1, p.maxIter, false
}

func (p problem) shade(z complex128) color.RGBA {
	r, steps, ok := p.converge(z)
	if !ok {
		return color.RGBA{A: 255}
	}
	return darker(p.colors[r], steps)
}

// onIndicator reports whether z lies on the ring drawn around a root.
func (p problem) onIndicator(z complex128, pixel float64) bool {
	for _, r := range p.roots {
		if math.Abs(cmplx.Abs(z-r)-p.rir) < 0.5*pixel {
			return true
		}
	}
	return false
}

// darker dims c the longer a point took to converge.
func darker(c newton.RGB, steps int) color.RGBA {
	k := math.Min(1, 100/float64(60+8*steps))
	return color.RGBA{
		R: channel(c.R * k),
		G: channel(c.G * k),
		B: channel(c.B * k),
		A: 255,
	}
}

func channel(v float64) uint8 {
	return uint8(math.Round(255 * math.Max(0, math.Min(1, v))))
}

// Converge reports which root the iteration starting at z reaches, if any,
// and after how many steps.
func Converge(u newton.Uniforms, z complex128) (root, steps int, ok bool) {
	return newProblem(u).converge(z)
}

// Orbit returns the Newton iterates starting at start, start included. It
// stops once two iterates are closer than EPS or after MaxIterations steps.
func Orbit(u newton.Uniforms, start complex128) []complex128 {
	p := newProblem(u)
	orbit := []complex128{start}
	z := start
	for range p.maxIter {
		z0, ok := p.step(z)
		if !ok {
			renderLog().Debug().Float64("re", real(z)).Float64("im", imag(z)).Msg("orbit hit a critical point")
			break
		}
		orbit = append(orbit, z0)
		if cmplx.Abs(z0-z) < p.eps {
			break
		}
		z = z0
	}
	return orbit
}
