// Package session applies the JSON event stream of one connected view to its
// controller. It knows nothing about the transport.
package session

import (
	newton "github.com/marben/newton_fractal"
	"github.com/marben/newton_fractal/render"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Reply is the outcome of one event.
type Reply struct {
	Redraw bool
	// Cursor is set only when the cursor changed.
	Cursor *newton.Cursor
	Orbit  []OrbitPoint
	// Err is a rejected request. The session stays usable.
	Err error
}

// Messages returns the outbound messages of r, uniforms excluded.
func (r Reply) Messages() []Message {
	var msgs []Message
	if r.Cursor != nil {
		msgs = append(msgs, CursorMessage(*r.Cursor))
	}
	if r.Orbit != nil {
		msgs = append(msgs, OrbitMessage(r.Orbit))
	}
	if r.Err != nil {
		msgs = append(msgs, ErrorMessage(r.Err))
	}
	return msgs
}

// Session is not safe for concurrent use.
type Session struct {
	ctrl   *newton.Controller
	cursor newton.Cursor
	log    zerolog.Logger
}

func New(ctrl *newton.Controller, logger zerolog.Logger) *Session {
	return &Session{
		ctrl:   ctrl,
		cursor: ctrl.Cursor(),
		log:    logger.With().Str("module", "session").Logger(),
	}
}

func (s *Session) Controller() *newton.Controller {
	return s.ctrl
}

// Dragging reports whether a root or the view is being dragged.
func (s *Session) Dragging() bool {
	return s.ctrl.Mode() != newton.Idle
}

// Snapshot returns the uniforms for the current viewport.
func (s *Session) Snapshot() newton.Uniforms {
	return s.ctrl.Store().Snapshot(s.ctrl.Viewport())
}

// Handle decodes and applies one raw event. Only a malformed event is an
// error; rejected requests are returned in Reply.Err.
func (s *Session) Handle(raw []byte) (Reply, error) {
	e, err := Decode(raw)
	if err != nil {
		return Reply{}, err
	}
	return s.Apply(e)
}

// Apply applies one decoded event.
func (s *Session) Apply(e Event) (Reply, error) {
	var r Reply
	switch e.Type {
	case EventDown:
		r.Redraw = s.ctrl.PointerDown(e.Point()).Redraw
	case EventMove:
		r.Redraw = s.ctrl.PointerMove(e.Point()).Redraw
	case EventUp:
		r.Redraw = s.ctrl.PointerUp(e.Point()).Redraw
	case EventWheel:
		r.Redraw = s.ctrl.Wheel(e.X, e.Y, e.DeltaY).Redraw
	case EventResize:
		r.Redraw = s.ctrl.Resize(e.Width, e.Height).Redraw
	case EventReset:
		r.Redraw = s.ctrl.Reset().Redraw
	case EventConfig:
		r.Redraw, r.Err = s.configure(e)
	case EventSetRoot:
		r.Err = s.ctrl.Store().SetRootValue(e.Index, complex(e.Re, e.Im))
		r.Redraw = r.Err == nil
	case EventRemoveRoot:
		var fb newton.Feedback
		fb, r.Err = s.ctrl.RemoveRoot(e.Index)
		r.Redraw = fb.Redraw
	case EventAddRoot:
		r.Err = s.ctrl.Store().AddRoot(complex(e.Re, e.Im), newton.RGB{R: e.R, G: e.G, B: e.B})
		r.Redraw = r.Err == nil
	case EventColorRoot:
		r.Err = s.ctrl.Store().SetRootColor(e.Index, newton.RGB{R: e.R, G: e.G, B: e.B})
		r.Redraw = r.Err == nil
	case EventMirrorRoot:
		r.Err = s.mirror(e)
		r.Redraw = r.Err == nil
	case EventOrbit:
		r.Orbit = s.orbit(e.Point())
	default:
		return Reply{}, errors.Wrapf(ErrUnknownEvent, "%q", e.Type)
	}

	if c := s.ctrl.Cursor(); c != s.cursor {
		s.cursor = c
		r.Cursor = &c
	}
	if r.Err != nil {
		s.log.Debug().Str("event", string(e.Type)).Err(r.Err).Msg("request rejected")
	}
	return r, nil
}

// configure applies every present field and keeps going past rejected ones.
// A non-positive zoom percentage is ignored.
func (s *Session) configure(e Event) (bool, error) {
	store := s.ctrl.Store()
	var (
		redraw bool
		errs   []error
	)
	apply := func(err error) {
		if err != nil {
			errs = append(errs, err)
			return
		}
		redraw = true
	}

	if e.RootCount != nil {
		_, err := s.ctrl.SetRootCount(*e.RootCount)
		apply(err)
	}
	if e.MaxIterations != nil {
		apply(store.SetMaxIterations(*e.MaxIterations))
	}
	if e.DampingRe != nil || e.DampingIm != nil {
		d := store.Damping()
		re, im := real(d), imag(d)
		if e.DampingRe != nil {
			re = *e.DampingRe
		}
		if e.DampingIm != nil {
			im = *e.DampingIm
		}
		apply(store.SetDamping(complex(re, im)))
	}
	if e.ZoomPercent != nil && *e.ZoomPercent > 0 {
		if store.SetZoomPercent(*e.ZoomPercent) {
			redraw = true
		}
	}

	if len(errs) == 0 {
		return redraw, nil
	}
	for _, err := range errs[1:] {
		s.log.Debug().Err(err).Msg("config field rejected")
	}
	return redraw, errs[0]
}

func (s *Session) mirror(e Event) error {
	axis, err := ParseAxis(e.Axis)
	if err != nil {
		return err
	}
	return s.ctrl.Store().MirrorRoot(e.Index, axis)
}

// orbit traces the iteration from the plane point under p, in device pixels.
func (s *Session) orbit(p newton.Point) []OrbitPoint {
	vp := s.ctrl.Viewport()
	store := s.ctrl.Store()
	zs := render.Orbit(store.Snapshot(vp), store.ToComplex(vp, p))
	points := make([]OrbitPoint, len(zs))
	for i, z := range zs {
		sp := store.ToScreen(vp, z)
		points[i] = OrbitPoint{X: sp.X, Y: sp.Y}
	}
	return points
}
