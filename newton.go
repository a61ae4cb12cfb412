// Package newton keeps the parameters of an interactive Newton fractal view:
// the mapping between device pixels and the complex plane, the root set and
// the pointer state machine that edits both.
//
// Nothing in this package blocks or logs. Every event handler runs to
// completion and reports through its return value whether a redraw is due.
package newton

const (
	EPS                 = 1e-3 // max error allowed for convergence
	RootIndicatorRadius = 5    // root indicator radius in pixels
	ZoomStep            = 0.05 // relative frame change per wheel notch

	MinRoots         = 2
	MaxRoots         = 10
	DefaultRootCount = 5

	DefaultDamping       = 1.0
	DefaultMaxIterations = 160

	// SizeFactor is the plane distance from the origin to a frame edge per
	// device pixel after a reset, so a reset frame spans 2*SizeFactor*W.
	SizeFactor = 1.0 / 700.0
)
