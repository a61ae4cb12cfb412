package newton

import (
	"strings"

	"github.com/pkg/errors"
)

// Preset is a named starting configuration.
type Preset struct {
	Name          string
	RootCount     int
	MaxIterations int
	Damping       complex128
}

// Well known starting points
var (
	// Classic – five roots of unity, plain Newton steps
	Classic = Preset{Name: "classic", RootCount: 5, MaxIterations: DefaultMaxIterations, Damping: 1}

	// Triad – z^3-1, the textbook three basin picture
	Triad = Preset{Name: "triad", RootCount: 3, MaxIterations: DefaultMaxIterations, Damping: 1}

	// Square – z^4-1 with its fourfold symmetric boundary
	Square = Preset{Name: "square", RootCount: 4, MaxIterations: DefaultMaxIterations, Damping: 1}

	// Relaxed – half steps, smooth basins with wide bands
	Relaxed = Preset{Name: "relaxed", RootCount: 5, MaxIterations: 320, Damping: 0.5}

	// Overshoot – complex damping twists the basin boundaries into spirals
	Overshoot = Preset{Name: "overshoot", RootCount: 6, MaxIterations: 240, Damping: complex(1.4, 0.3)}

	// Decagon – every palette color in use
	Decagon = Preset{Name: "decagon", RootCount: MaxRoots, MaxIterations: 200, Damping: 1}
)

var Presets = []Preset{Classic, Triad, Square, Relaxed, Overshoot, Decagon}

func PresetByName(name string) (Preset, bool) {
	for _, p := range Presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// Apply configures s with p and resets the frame for vp.
func (p Preset) Apply(s *Store, vp Viewport) error {
	if err := s.SetRootCount(p.RootCount); err != nil {
		return errors.Wrapf(err, "preset %q", p.Name)
	}
	if err := s.SetMaxIterations(p.MaxIterations); err != nil {
		return errors.Wrapf(err, "preset %q", p.Name)
	}
	if err := s.SetDamping(p.Damping); err != nil {
		return errors.Wrapf(err, "preset %q", p.Name)
	}
	if !s.Reset(vp) {
		return errors.Wrapf(ErrInvalidViewport, "preset %q: %dx%d", p.Name, vp.Width, vp.Height)
	}
	return nil
}
