package newton

import (
	"github.com/pkg/errors"
)

// Uniforms is the parameter block handed to the rasterizer. Field names in
// JSON match the shader uniforms. A snapshot is never modified after
// Snapshot returns it.
type Uniforms struct {
	RootCount           int        `json:"rootCount"`
	Limits              [4]float32 `json:"limits"` // top, right, bottom, left
	MaxIterations       int        `json:"maxIterations"`
	Damping             [2]float32 `json:"damping"`
	Size                [2]float32 `json:"size"`
	Roots               []float32  `json:"roots"`  // re, im pairs
	Colors              []float32  `json:"colors"` // r, g, b triples
	EPS                 float32    `json:"EPS"`
	RootIndicatorRadius float32    `json:"RIR"` // in plane units
}

// Snapshot captures the store for a device of size vp.
func (s *Store) Snapshot(vp Viewport) Uniforms {
	roots := s.roots.roots
	u := Uniforms{
		RootCount:           len(roots),
		MaxIterations:       s.maxIterations,
		Damping:             [2]float32{float32(real(s.damping)), float32(imag(s.damping))},
		Size:                [2]float32{float32(vp.Width), float32(vp.Height)},
		Roots:               make([]float32, 0, 2*len(roots)),
		Colors:              make([]float32, 0, 3*len(roots)),
		EPS:                 EPS,
		RootIndicatorRadius: float32(s.DistanceToComplex(vp, RootIndicatorRadius)),
	}
	for i, v := range s.frame.Vec4() {
		u.Limits[i] = float32(v)
	}
	for _, r := range roots {
		u.Roots = append(u.Roots, float32(real(r.Value)), float32(imag(r.Value)))
		u.Colors = append(u.Colors, float32(r.Color.R), float32(r.Color.G), float32(r.Color.B))
	}
	return u
}

func (u Uniforms) Bounds() Bounds {
	return Bounds{
		Top:    float64(u.Limits[0]),
		Right:  float64(u.Limits[1]),
		Bottom: float64(u.Limits[2]),
		Left:   float64(u.Limits[3]),
	}
}

func (u Uniforms) Viewport() Viewport {
	return Viewport{Width: int(u.Size[0]), Height: int(u.Size[1])}
}

func (u Uniforms) Root(i int) complex128 {
	return complex(float64(u.Roots[2*i]), float64(u.Roots[2*i+1]))
}

func (u Uniforms) Color(i int) RGB {
	return RGB{
		R: float64(u.Colors[3*i]),
		G: float64(u.Colors[3*i+1]),
		B: float64(u.Colors[3*i+2]),
	}
}

func (u Uniforms) Damp() complex128 {
	return complex(float64(u.Damping[0]), float64(u.Damping[1]))
}

// Validate checks the layout of u, e.g. after decoding it from the wire.
func (u Uniforms) Validate() error {
	if err := CheckRootCount(u.RootCount); err != nil {
		return err
	}
	if len(u.Roots) != 2*u.RootCount {
		return errors.Errorf("uniforms: %d root components for %d roots", len(u.Roots), u.RootCount)
	}
	if len(u.Colors) != 3*u.RootCount {
		return errors.Errorf("uniforms: %d color components for %d roots", len(u.Colors), u.RootCount)
	}
	if err := checkMaxIterations(u.MaxIterations); err != nil {
		return err
	}
	if !u.Viewport().Valid() {
		return errors.Wrapf(ErrInvalidViewport, "size %vx%v", u.Size[0], u.Size[1])
	}
	if !u.Bounds().Valid() {
		return errors.Errorf("uniforms: degenerate limits %v", u.Limits)
	}
	return nil
}
