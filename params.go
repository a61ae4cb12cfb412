package newton

import (
	"math"
)

// Viewport is the device size in pixels. The windowing layer owns it; the
// store only receives it as an argument.
type Viewport struct {
	Width, Height int
}

// Valid reports whether vp is large enough to map pixels to the plane.
func (vp Viewport) Valid() bool {
	return vp.Width >= 2 && vp.Height >= 2
}

// Point is a position in device pixels, y pointing down.
type Point struct {
	X, Y float64
}

// Store is the single source of truth for rendering: frame, roots, iteration
// cap and damping.
type Store struct {
	frame         Frame
	roots         *RootSet
	maxIterations int
	damping       complex128
}

type StoreOption func(*Store) error

func WithRootCount(n int) StoreOption {
	return func(s *Store) error {
		return s.roots.Regenerate(n)
	}
}

func WithMaxIterations(n int) StoreOption {
	return func(s *Store) error {
		return s.SetMaxIterations(n)
	}
}

func WithDamping(d complex128) StoreOption {
	return func(s *Store) error {
		return s.SetDamping(d)
	}
}

// NewStore returns a store with default parameters and a frame sized for vp.
func NewStore(vp Viewport, opts ...StoreOption) (*Store, error) {
	if !vp.Valid() {
		return nil, ErrInvalidViewport
	}
	roots, err := NewRootSet(DefaultRootCount)
	if err != nil {
		return nil, err
	}
	s := &Store{
		frame:         NewFrameFor(vp),
		roots:         roots,
		maxIterations: DefaultMaxIterations,
		damping:       complex(DefaultDamping, 0),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Frame returns a copy of the current frame.
func (s *Store) Frame() Frame {
	return s.frame
}

func (s *Store) ZoomFactor() float64 {
	return s.frame.ZoomFactor()
}

func (s *Store) Roots() []Root {
	return s.roots.Roots()
}

func (s *Store) RootCount() int {
	return s.roots.Len()
}

func (s *Store) MaxIterations() int {
	return s.maxIterations
}

func (s *Store) Damping() complex128 {
	return s.damping
}

// ToScreen maps z to device pixels of vp.
func (s *Store) ToScreen(vp Viewport, z complex128) Point {
	f := s.frame
	return Point{
		X: (real(z) - f.Left) * float64(vp.Width-1) / f.Width(),
		Y: (imag(z) - f.Top) * float64(vp.Height-1) / -f.Height(),
	}
}

// ToComplex is the inverse of ToScreen.
func (s *Store) ToComplex(vp Viewport, p Point) complex128 {
	f := s.frame
	re := p.X*f.Width()/float64(vp.Width-1) + f.Left
	im := p.Y*-f.Height()/float64(vp.Height-1) + f.Top
	return complex(re, im)
}

// DistanceToComplex converts a pixel distance to a plane distance using the
// horizontal scale.
func (s *Store) DistanceToComplex(vp Viewport, d float64) float64 {
	return d * s.frame.Width() / float64(vp.Width-1)
}

// FindRootNear returns the lowest index of a root whose screen position lies
// within radius pixels of p on both axes.
func (s *Store) FindRootNear(vp Viewport, p Point, radius float64) (int, bool) {
	for i, r := range s.roots.roots {
		q := s.ToScreen(vp, r.Value)
		if math.Abs(q.X-p.X) < radius && math.Abs(q.Y-p.Y) < radius {
			return i, true
		}
	}
	return -1, false
}

// SetRootCount regenerates the root set with n roots. The frame is left alone.
func (s *Store) SetRootCount(n int) error {
	return s.roots.Regenerate(n)
}

func (s *Store) SetMaxIterations(n int) error {
	if err := checkMaxIterations(n); err != nil {
		return err
	}
	s.maxIterations = n
	return nil
}

func (s *Store) SetDamping(d complex128) error {
	if err := checkDamping(d); err != nil {
		return err
	}
	s.damping = d
	return nil
}

func (s *Store) SetZoomFactor(z float64) bool {
	return s.frame.SetZoomFactor(z)
}

// SetZoomPercent sets the zoom factor in percent, 100 being fully zoomed out.
func (s *Store) SetZoomPercent(p float64) bool {
	return s.frame.SetZoomFactor(p / 100.0)
}

func (s *Store) SetRootValue(i int, z complex128) error {
	return s.roots.SetValue(i, z)
}

func (s *Store) SetRootColor(i int, c RGB) error {
	return s.roots.SetColor(i, c)
}

func (s *Store) MirrorRoot(i int, axis Axis) error {
	return s.roots.Mirror(i, axis)
}

func (s *Store) AddRoot(z complex128, c RGB) error {
	return s.roots.Add(z, c)
}

func (s *Store) RemoveRoot(i int) error {
	return s.roots.Remove(i)
}

func (s *Store) Zoom(in bool, xw, yw float64) bool {
	return s.frame.Zoom(in, xw, yw)
}

func (s *Store) Pan(vp Viewport, dx, dy float64) bool {
	return s.frame.Pan(dx, dy, vp)
}

func (s *Store) Resize(dx, dy float64) bool {
	return s.frame.Resize(dx, dy)
}

// Reset puts the roots back on the unit circle and sizes the frame for vp.
func (s *Store) Reset(vp Viewport) bool {
	s.roots.Respace()
	return s.frame.Reset(vp)
}
