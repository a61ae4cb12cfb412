package newton

import (
	"math"

	"github.com/pkg/errors"
)

var (
	ErrIndexOutOfRange      = errors.New("root index out of range")
	ErrInvalidRootCount     = errors.New("invalid root count")
	ErrDegenerateZoom       = errors.New("degenerate zoom factor")
	ErrInvalidMaxIterations = errors.New("invalid max iterations")
	ErrInvalidDamping       = errors.New("invalid damping")
	ErrInvalidViewport      = errors.New("invalid viewport")
)

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return errors.Wrapf(ErrIndexOutOfRange, "index %d with %d roots", i, n)
	}
	return nil
}

// CheckRootCount reports whether n roots can be configured.
func CheckRootCount(n int) error {
	if n < MinRoots || n > MaxRoots {
		return errors.Wrapf(ErrInvalidRootCount, "%d not in [%d, %d]", n, MinRoots, MaxRoots)
	}
	return nil
}

// CheckZoomFactor reports whether z can be passed to Frame.SetZoomFactor.
func CheckZoomFactor(z float64) error {
	if !(z > 0) || math.IsInf(z, 1) {
		return errors.Wrapf(ErrDegenerateZoom, "%v", z)
	}
	return nil
}

func checkMaxIterations(n int) error {
	if n < 1 {
		return errors.Wrapf(ErrInvalidMaxIterations, "%d", n)
	}
	return nil
}

func checkDamping(d complex128) error {
	if !finite(real(d)) || !finite(imag(d)) {
		return errors.Wrapf(ErrInvalidDamping, "%v", d)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
