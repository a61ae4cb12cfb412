package newton

import (
	"math"
	"math/cmplx"
)

// RGB is a color with channels in [0, 1].
type RGB struct {
	R, G, B float64
}

// Palette holds the color of the root at each position.
var Palette = [MaxRoots]RGB{
	{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	{0, 1, 1}, {1, 0, 1}, {1, 1, 0},
	{1, 0.5, 0}, {1, 0, 0.5}, {0, 1, 0.5}, {0.5, 0.5, 0.5},
}

type Root struct {
	Value complex128
	Color RGB
}

// Axis selects the mirror line for RootSet.Mirror.
type Axis int

const (
	RealAxis Axis = iota // mirror on the x-axis
	ImagAxis             // mirror on the y-axis
)

func (a Axis) String() string {
	switch a {
	case RealAxis:
		return "real"
	case ImagAxis:
		return "imag"
	default:
		return "unknown"
	}
}

// RootSet is an ordered set of MinRoots to MaxRoots roots. A root is
// identified by its position only.
type RootSet struct {
	roots []Root
}

// NewRootSet returns n roots spread evenly over the unit circle.
func NewRootSet(n int) (*RootSet, error) {
	rs := &RootSet{}
	if err := rs.Regenerate(n); err != nil {
		return nil, err
	}
	return rs, nil
}

// Regenerate replaces the set with n fresh roots: the root at position i gets
// Palette[i] and the value e^(2πi·i/n).
func (rs *RootSet) Regenerate(n int) error {
	if err := CheckRootCount(n); err != nil {
		return err
	}
	roots := make([]Root, n)
	for i := range roots {
		roots[i].Color = Palette[i]
	}
	rs.roots = roots
	rs.Respace()
	return nil
}

// Respace moves the roots back onto the unit circle, colors untouched.
func (rs *RootSet) Respace() {
	n := len(rs.roots)
	for i := range rs.roots {
		angle := 2 * math.Pi * float64(i) / float64(n)
		rs.roots[i].Value = cmplx.Rect(1, angle)
	}
}

func (rs *RootSet) Len() int {
	return len(rs.roots)
}

func (rs *RootSet) At(i int) (Root, error) {
	if err := checkIndex(i, len(rs.roots)); err != nil {
		return Root{}, err
	}
	return rs.roots[i], nil
}

// Roots returns a copy of the set.
func (rs *RootSet) Roots() []Root {
	out := make([]Root, len(rs.roots))
	copy(out, rs.roots)
	return out
}

func (rs *RootSet) SetValue(i int, z complex128) error {
	if err := checkIndex(i, len(rs.roots)); err != nil {
		return err
	}
	rs.roots[i].Value = z
	return nil
}

func (rs *RootSet) SetColor(i int, c RGB) error {
	if err := checkIndex(i, len(rs.roots)); err != nil {
		return err
	}
	rs.roots[i].Color = c
	return nil
}

// Mirror reflects root i on the given axis.
func (rs *RootSet) Mirror(i int, axis Axis) error {
	if err := checkIndex(i, len(rs.roots)); err != nil {
		return err
	}
	z := rs.roots[i].Value
	switch axis {
	case RealAxis:
		z = cmplx.Conj(z)
	case ImagAxis:
		z = complex(-real(z), imag(z))
	}
	rs.roots[i].Value = z
	return nil
}

// Add appends a root with its own value and color. The set never grows
// beyond MaxRoots.
func (rs *RootSet) Add(z complex128, c RGB) error {
	if err := CheckRootCount(len(rs.roots) + 1); err != nil {
		return err
	}
	rs.roots = append(rs.roots, Root{Value: z, Color: c})
	return nil
}

// Remove drops root i. The set never shrinks below MinRoots.
func (rs *RootSet) Remove(i int) error {
	if err := checkIndex(i, len(rs.roots)); err != nil {
		return err
	}
	if err := CheckRootCount(len(rs.roots) - 1); err != nil {
		return err
	}
	rs.roots = append(rs.roots[:i], rs.roots[i+1:]...)
	return nil
}
