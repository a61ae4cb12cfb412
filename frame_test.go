package newton

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func assertBounds(t *testing.T, want, got Bounds) {
	t.Helper()
	assert.InDelta(t, want.Top, got.Top, tol, "top")
	assert.InDelta(t, want.Right, got.Right, tol, "right")
	assert.InDelta(t, want.Bottom, got.Bottom, tol, "bottom")
	assert.InDelta(t, want.Left, got.Left, tol, "left")
}

func TestNewFrame(t *testing.T) {
	f := NewFrame()
	assert.Equal(t, Bounds{Top: 1, Right: 1, Bottom: -1, Left: -1}, f.Bounds)
	assert.Equal(t, f.Bounds, f.Reference)
	assert.Equal(t, 2.0, f.Width())
	assert.Equal(t, 2.0, f.Height())
	assert.Equal(t, 1.0, f.ZoomFactor())
	assert.Equal(t, [4]float64{1, 1, -1, -1}, f.Vec4())
}

func TestFrameZoomInAboutCenter(t *testing.T) {
	f := NewFrame()
	require.True(t, f.Zoom(true, 0.5, 0.5))

	assertBounds(t, Bounds{Top: 0.95, Right: 0.95, Bottom: -0.95, Left: -0.95}, f.Bounds)
	assert.InDelta(t, 1/(1-0.05), f.ZoomFactor(), tol)
	assert.Equal(t, NewFrame().Reference, f.Reference, "zoom must not touch the reference")
}

func TestFrameZoomOut(t *testing.T) {
	f := NewFrame()
	require.True(t, f.Zoom(false, 0.5, 0.5))
	assertBounds(t, Bounds{Top: 1.05, Right: 1.05, Bottom: -1.05, Left: -1.05}, f.Bounds)
	assert.InDelta(t, 1/1.05, f.ZoomFactor(), tol)
}

func TestFrameZoomKeepsAnchor(t *testing.T) {
	vp := Viewport{Width: 640, Height: 480}
	cases := []struct {
		name   string
		xw, yw float64
		in     bool
	}{
		{"top left in", 0, 0, true},
		{"bottom right out", 1, 1, false},
		{"off center in", 0.25, 0.8, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFrameFor(vp)
			anchor := func() complex128 {
				return complex(f.Left+tc.xw*f.Width(), f.Top-tc.yw*f.Height())
			}
			before := anchor()
			require.True(t, f.Zoom(tc.in, tc.xw, tc.yw))
			after := anchor()
			assert.InDelta(t, real(before), real(after), tol)
			assert.InDelta(t, imag(before), imag(after), tol)
		})
	}
}

func TestFrameZoomNeverDegenerates(t *testing.T) {
	f := NewFrame()
	for range 20000 {
		f.Zoom(true, 0.3, 0.7)
		require.Greater(t, f.Width(), 0.0)
		require.Greater(t, f.Height(), 0.0)
	}
	for range 20000 {
		f.Zoom(false, 0.9, 0.1)
		require.True(t, f.Bounds.Valid())
	}
}

func TestFrameZoomRejectsNaNWeights(t *testing.T) {
	f := NewFrame()
	assert.False(t, f.Zoom(true, math.NaN(), 0.5))
	assert.Equal(t, NewFrame(), f)
}

func TestFrameSetZoomFactor(t *testing.T) {
	f := NewFrame()
	require.True(t, f.Pan(100, 0, Viewport{Width: 201, Height: 201}))
	center := f.Center()

	require.True(t, f.SetZoomFactor(4))
	assert.InDelta(t, 4.0, f.ZoomFactor(), tol)
	assert.InDelta(t, 0.5, f.Width(), tol)
	assert.InDelta(t, 0.5, f.Height(), tol)
	assert.InDelta(t, real(center), real(f.Center()), tol)
	assert.InDelta(t, imag(center), imag(f.Center()), tol)

	// recomputed from the reference, not compounded
	require.True(t, f.SetZoomFactor(4))
	assert.InDelta(t, 4.0, f.ZoomFactor(), tol)
}

func TestFrameSetZoomFactorIgnoresDegenerate(t *testing.T) {
	for _, z := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		f := NewFrame()
		assert.False(t, f.SetZoomFactor(z), "%v", z)
		assert.Equal(t, NewFrame(), f, "%v", z)
	}
}

func TestFramePan(t *testing.T) {
	vp := Viewport{Width: 201, Height: 101}
	f := NewFrame()
	require.True(t, f.Pan(50, 25, vp))

	// 50px of 200 at width 2 is 0.5, 25px of 100 at height 2 is 0.5 downwards
	assertBounds(t, Bounds{Top: 0.5, Right: 1.5, Bottom: -1.5, Left: -0.5}, f.Bounds)
	assertBounds(t, f.Bounds, f.Reference)
}

func TestFramePanKeepsZoomFactor(t *testing.T) {
	vp := Viewport{Width: 1024, Height: 768}
	f := NewFrameFor(vp)
	for range 7 {
		f.Zoom(true, 0.2, 0.6)
	}
	zf := f.ZoomFactor()

	moves := [][2]float64{{10, -3}, {-250, 40}, {0.5, 0.25}, {1e4, -1e4}, {-7, 7}}
	for _, m := range moves {
		require.True(t, f.Pan(m[0], m[1], vp))
		assert.InDelta(t, zf, f.ZoomFactor(), 1e-9)
	}
}

func TestFramePanInvalidViewport(t *testing.T) {
	f := NewFrame()
	assert.False(t, f.Pan(10, 10, Viewport{Width: 1, Height: 100}))
	assert.Equal(t, NewFrame(), f)
}

func TestFrameResize(t *testing.T) {
	vp := Viewport{Width: 700, Height: 350}
	f := NewFrameFor(vp)
	assertBounds(t, Bounds{Top: 0.5, Right: 1, Bottom: -0.5, Left: -1}, f.Bounds)

	require.True(t, f.Resize(70, -35))
	assertBounds(t, Bounds{Top: 0.45, Right: 1.1, Bottom: -0.45, Left: -1.1}, f.Bounds)
	assertBounds(t, f.Bounds, f.Reference)

	// same as resetting for the new size
	assertBounds(t, NewFrameFor(Viewport{Width: 770, Height: 315}).Bounds, f.Bounds)
}

func TestFrameResizeWhenZoomed(t *testing.T) {
	f := NewFrame()
	require.True(t, f.SetZoomFactor(2))
	assertBounds(t, Bounds{Top: 0.5, Right: 0.5, Bottom: -0.5, Left: -0.5}, f.Bounds)

	// both rectangles grow by the same plane distance
	require.True(t, f.Resize(700, 0))
	assertBounds(t, Bounds{Top: 0.5, Right: 1.5, Bottom: -0.5, Left: -1.5}, f.Bounds)
	assertBounds(t, Bounds{Top: 1, Right: 2, Bottom: -1, Left: -2}, f.Reference)
	assert.InDelta(t, 4.0/3.0, f.ZoomFactor(), tol)
}

func TestFrameZoomStopsAtShaderPrecision(t *testing.T) {
	vp := Viewport{Width: 801, Height: 601}
	f := NewFrameFor(vp)
	xw, yw := 700.0/float64(vp.Width), 100.0/float64(vp.Height)

	steps := 0
	for f.Zoom(true, xw, yw) {
		steps++
		require.Less(t, steps, 5000, "zoom never stopped")
	}
	assert.Greater(t, steps, 100)

	before := f
	assert.False(t, f.Zoom(true, xw, yw))
	assert.Equal(t, before, f)
	assert.False(t, f.SetZoomFactor(1e30))
	assert.Less(t, float32(f.Left), float32(f.Right))
	assert.Less(t, float32(f.Bottom), float32(f.Top))

	// zooming back out still works
	assert.True(t, f.Zoom(false, xw, yw))
}

func TestFrameResizeRejectsCollapse(t *testing.T) {
	f := NewFrameFor(Viewport{Width: 100, Height: 100})
	before := f
	assert.False(t, f.Resize(-100, 0))
	assert.Equal(t, before, f)
}

func TestFrameReset(t *testing.T) {
	f := NewFrame()
	f.Zoom(true, 0.1, 0.1)
	f.Pan(30, 30, Viewport{Width: 100, Height: 100})

	require.True(t, f.Reset(Viewport{Width: 1400, Height: 700}))
	assertBounds(t, Bounds{Top: 1, Right: 2, Bottom: -1, Left: -2}, f.Bounds)
	assert.Equal(t, f.Bounds, f.Reference)
	assert.Equal(t, 1.0, f.ZoomFactor())
}

func TestBoundsValid(t *testing.T) {
	assert.True(t, Bounds{Top: 1, Right: 1, Bottom: 0, Left: 0}.Valid())
	assert.False(t, Bounds{Top: 1, Right: 0, Bottom: 0, Left: 0}.Valid())
	assert.False(t, Bounds{Top: 0, Right: 1, Bottom: 1, Left: 0}.Valid())
	assert.False(t, Bounds{Top: math.Inf(1), Right: 1, Bottom: 0, Left: 0}.Valid())
	assert.False(t, Bounds{Top: 1, Right: math.MaxFloat64, Bottom: 0, Left: -math.MaxFloat64}.Valid())
}
