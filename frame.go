package newton

// Bounds is a rectangle within the complex plane
type Bounds struct {
	Top, Right, Bottom, Left float64
}

func (b Bounds) Width() float64 {
	return b.Right - b.Left
}

func (b Bounds) Height() float64 {
	return b.Top - b.Bottom
}

// Center returns the midpoint of b.
func (b Bounds) Center() complex128 {
	return complex(0.5*b.Right+0.5*b.Left, 0.5*b.Top+0.5*b.Bottom)
}

// Vec4 returns the bounds in shader order: top, right, bottom, left.
func (b Bounds) Vec4() [4]float64 {
	return [4]float64{b.Top, b.Right, b.Bottom, b.Left}
}

// Contains reports whether z lies inside b, edges included.
func (b Bounds) Contains(z complex128) bool {
	return real(z) >= b.Left && real(z) <= b.Right && imag(z) >= b.Bottom && imag(z) <= b.Top
}

// Valid reports whether b is finite with a strictly positive extent.
func (b Bounds) Valid() bool {
	for _, v := range [...]float64{b.Top, b.Right, b.Bottom, b.Left, b.Width(), b.Height()} {
		if !finite(v) {
			return false
		}
	}
	return b.Width() > 0 && b.Height() > 0
}

// narrow rounds b to float32, the precision of the shader limits.
func (b Bounds) narrow() Bounds {
	return Bounds{
		Top:    float64(float32(b.Top)),
		Right:  float64(float32(b.Right)),
		Bottom: float64(float32(b.Bottom)),
		Left:   float64(float32(b.Left)),
	}
}

func (b Bounds) translate(dx, dy float64) Bounds {
	return Bounds{
		Top:    b.Top + dy,
		Right:  b.Right + dx,
		Bottom: b.Bottom + dy,
		Left:   b.Left + dx,
	}
}

// grow moves every edge outwards, left/right by dx and top/bottom by dy.
func (b Bounds) grow(dx, dy float64) Bounds {
	return Bounds{
		Top:    b.Top + dy,
		Right:  b.Right + dx,
		Bottom: b.Bottom - dy,
		Left:   b.Left - dx,
	}
}

// Frame is the visible region of the plane together with its reference,
// the fully zoomed out region the zoom factor is measured against.
//
// Pan, Resize and Reset move both rectangles, zooming touches only the
// visible one. Every mutator keeps both rectangles Valid and the visible one
// non-degenerate at float32 precision: a step that would break that is
// dropped and reported by a false return.
type Frame struct {
	Bounds
	Reference Bounds
}

// NewFrame returns the unit frame [-1, 1] x [-1, 1] at zoom factor 1.
func NewFrame() Frame {
	b := Bounds{Top: 1, Right: 1, Bottom: -1, Left: -1}
	return Frame{Bounds: b, Reference: b}
}

// NewFrameFor returns a frame sized for vp and centered on the origin.
func NewFrameFor(vp Viewport) Frame {
	f := NewFrame()
	f.Reset(vp)
	return f
}

func (f *Frame) ZoomFactor() float64 {
	return f.Reference.Width() / f.Width()
}

// SetZoomFactor resizes the visible region to the reference size divided by
// z, keeping its center. Non-positive or non-finite factors are ignored.
func (f *Frame) SetZoomFactor(z float64) bool {
	if CheckZoomFactor(z) != nil {
		return false
	}
	w2 := 0.5 * f.Reference.Width() / z
	h2 := 0.5 * f.Reference.Height() / z
	c := f.Center()
	return f.set(Bounds{
		Top:    imag(c) + h2,
		Right:  real(c) + w2,
		Bottom: imag(c) - h2,
		Left:   real(c) - w2,
	}, f.Reference)
}

// Zoom shrinks (in) or grows the visible region by ZoomStep. The point at
// fractional position (xw, yw) of the viewport, measured from the top left
// corner, stays where it is on screen.
func (f *Frame) Zoom(in bool, xw, yw float64) bool {
	zoom := ZoomStep
	if in {
		zoom = -zoom
	}
	wZoom := f.Width() * zoom
	hZoom := f.Height() * zoom
	return f.set(Bounds{
		Top:    f.Top + yw*hZoom,
		Right:  f.Right + (1.0-xw)*wZoom,
		Bottom: f.Bottom - (1.0-yw)*hZoom,
		Left:   f.Left - xw*wZoom,
	}, f.Reference)
}

// Pan moves the frame by a pixel distance at the current scale of vp.
// Positive dy moves the frame down the screen, i.e. towards smaller imaginary
// parts. Both rectangles move by the same plane distance, so the zoom factor
// does not change.
func (f *Frame) Pan(dx, dy float64, vp Viewport) bool {
	if !vp.Valid() {
		return false
	}
	px := dx * f.Width() / float64(vp.Width-1)
	py := dy * -f.Height() / float64(vp.Height-1)
	return f.set(f.Bounds.translate(px, py), f.Reference.translate(px, py))
}

// Resize tracks a change of the device viewport by dx, dy pixels. Both
// rectangles grow by SizeFactor per pixel on each side.
func (f *Frame) Resize(dx, dy float64) bool {
	gx := SizeFactor * dx
	gy := SizeFactor * dy
	return f.set(f.Bounds.grow(gx, gy), f.Reference.grow(gx, gy))
}

// Reset sizes both rectangles for vp, centered on the origin.
func (f *Frame) Reset(vp Viewport) bool {
	if !vp.Valid() {
		return false
	}
	b := Bounds{
		Top:    SizeFactor * float64(vp.Height),
		Right:  SizeFactor * float64(vp.Width),
		Bottom: -SizeFactor * float64(vp.Height),
		Left:   -SizeFactor * float64(vp.Width),
	}
	return f.set(b, b)
}

// set stores cur and ref if both are Valid and cur keeps a positive extent in
// the float32 shader limits.
func (f *Frame) set(cur, ref Bounds) bool {
	if !cur.Valid() || !ref.Valid() || !cur.narrow().Valid() {
		return false
	}
	f.Bounds = cur
	f.Reference = ref
	return true
}
