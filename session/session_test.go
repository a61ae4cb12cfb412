package session

import (
	"fmt"
	"testing"

	"github.com/bytedance/sonic"
	newton "github.com/marben/newton_fractal"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testViewport = newton.Viewport{Width: 801, Height: 601}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	store, err := newton.NewStore(testViewport)
	require.NoError(t, err)
	ctrl, err := newton.NewController(store, testViewport)
	require.NoError(t, err)
	return New(ctrl, zerolog.Nop())
}

func handle(t *testing.T, s *Session, format string, args ...any) Reply {
	t.Helper()
	r, err := s.Handle([]byte(fmt.Sprintf(format, args...)))
	require.NoError(t, err)
	return r
}

func TestDecode(t *testing.T) {
	e, err := Decode([]byte(`{"type":"wheel","x":10,"y":20.5,"deltaY":-3}`))
	require.NoError(t, err)
	assert.Equal(t, Event{Type: EventWheel, X: 10, Y: 20.5, DeltaY: -3}, e)

	e, err = Decode([]byte(`{"type":"config","maxIterations":42}`))
	require.NoError(t, err)
	require.NotNil(t, e.MaxIterations)
	assert.Equal(t, 42, *e.MaxIterations)
	assert.Nil(t, e.RootCount)
	assert.Nil(t, e.DampingRe)

	_, err = Decode([]byte(`{"x":1}`))
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, err = Decode([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	b, err := Encode(CursorMessage(newton.CursorGrabbing))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"cursor","cursor":"grabbing"}`, string(b))

	b, err = Encode(ErrorMessage(errors.New("nope")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","message":"nope"}`, string(b))

	b, err = Encode(OrbitMessage([]OrbitPoint{{X: 1, Y: 2}}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"orbit","points":[{"x":1,"y":2}]}`, string(b))
}

func TestEncodeUniforms(t *testing.T) {
	s := newTestSession(t)
	b, err := Encode(UniformsMessage(s.Snapshot()))
	require.NoError(t, err)

	var envelope struct {
		Type     string         `json:"type"`
		Uniforms map[string]any `json:"uniforms"`
	}
	require.NoError(t, sonic.Unmarshal(b, &envelope))
	assert.Equal(t, "uniforms", envelope.Type)
	for _, key := range []string{"rootCount", "limits", "maxIterations", "damping", "size", "roots", "colors", "EPS", "RIR"} {
		assert.Contains(t, envelope.Uniforms, key)
	}
}

func TestParseAxis(t *testing.T) {
	a, err := ParseAxis("real")
	require.NoError(t, err)
	assert.Equal(t, newton.RealAxis, a)
	a, err = ParseAxis("imag")
	require.NoError(t, err)
	assert.Equal(t, newton.ImagAxis, a)
	_, err = ParseAxis("diagonal")
	assert.Error(t, err)
}

func TestDragRootSession(t *testing.T) {
	s := newTestSession(t)
	store := s.Controller().Store()
	p := store.ToScreen(testViewport, store.Roots()[0].Value)

	r := handle(t, s, `{"type":"move","x":%g,"y":%g}`, p.X, p.Y)
	assert.False(t, r.Redraw)
	require.NotNil(t, r.Cursor)
	assert.Equal(t, newton.CursorGrab, *r.Cursor)

	r = handle(t, s, `{"type":"move","x":%g,"y":%g}`, p.X+1, p.Y)
	assert.Nil(t, r.Cursor, "unchanged cursor is not repeated")

	r = handle(t, s, `{"type":"down","x":%g,"y":%g}`, p.X, p.Y)
	assert.False(t, r.Redraw)
	require.NotNil(t, r.Cursor)
	assert.Equal(t, newton.CursorGrabbing, *r.Cursor)
	assert.True(t, s.Dragging())

	r = handle(t, s, `{"type":"move","x":%g,"y":%g}`, p.X+20, p.Y)
	assert.True(t, r.Redraw)
	assert.Equal(t, store.ToComplex(testViewport, newton.Point{X: p.X + 20, Y: p.Y}), store.Roots()[0].Value)

	r = handle(t, s, `{"type":"up","x":%g,"y":%g}`, p.X+20, p.Y)
	assert.True(t, r.Redraw)
	assert.False(t, s.Dragging())
	require.NotNil(t, r.Cursor)
	assert.Equal(t, newton.CursorGrab, *r.Cursor)
}

func TestWheelAndResize(t *testing.T) {
	s := newTestSession(t)
	zf := s.Controller().Store().ZoomFactor()

	r := handle(t, s, `{"type":"wheel","x":400,"y":300,"deltaY":-1}`)
	assert.True(t, r.Redraw)
	assert.Greater(t, s.Controller().Store().ZoomFactor(), zf)

	r = handle(t, s, `{"type":"wheel","x":400,"y":300,"deltaY":0}`)
	assert.False(t, r.Redraw)

	r = handle(t, s, `{"type":"resize","width":1001,"height":701}`)
	assert.True(t, r.Redraw)
	assert.Equal(t, [2]float32{1001, 701}, s.Snapshot().Size)

	r = handle(t, s, `{"type":"resize","width":1,"height":701}`)
	assert.False(t, r.Redraw)
	assert.Equal(t, newton.Viewport{Width: 1001, Height: 701}, s.Controller().Viewport())
}

func TestConfigEvent(t *testing.T) {
	s := newTestSession(t)
	store := s.Controller().Store()

	r := handle(t, s, `{"type":"config","rootCount":3,"maxIterations":50,"dampingIm":0.5,"zoomPercent":200}`)
	require.NoError(t, r.Err)
	assert.True(t, r.Redraw)
	assert.Equal(t, 3, store.RootCount())
	assert.Equal(t, 50, store.MaxIterations())
	assert.Equal(t, complex(newton.DefaultDamping, 0.5), store.Damping())
	assert.InDelta(t, 2.0, store.ZoomFactor(), 1e-12)

	r = handle(t, s, `{"type":"config","zoomPercent":0}`)
	require.NoError(t, r.Err)
	assert.False(t, r.Redraw)
	assert.InDelta(t, 2.0, store.ZoomFactor(), 1e-12)

	r = handle(t, s, `{"type":"config","rootCount":11,"maxIterations":70}`)
	assert.ErrorIs(t, r.Err, newton.ErrInvalidRootCount)
	assert.True(t, r.Redraw, "valid fields still apply")
	assert.Equal(t, 3, store.RootCount())
	assert.Equal(t, 70, store.MaxIterations())

	msgs := r.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, MessageError, msgs[0].Type)
}

func TestRootEvents(t *testing.T) {
	s := newTestSession(t)
	store := s.Controller().Store()

	r := handle(t, s, `{"type":"setRoot","index":1,"re":0.25,"im":-0.5}`)
	require.NoError(t, r.Err)
	assert.True(t, r.Redraw)
	assert.Equal(t, complex(0.25, -0.5), store.Roots()[1].Value)

	r = handle(t, s, `{"type":"mirrorRoot","index":1,"axis":"real"}`)
	require.NoError(t, r.Err)
	assert.Equal(t, complex(0.25, 0.5), store.Roots()[1].Value)

	r = handle(t, s, `{"type":"mirrorRoot","index":1,"axis":"sideways"}`)
	assert.Error(t, r.Err)
	assert.False(t, r.Redraw)

	r = handle(t, s, `{"type":"colorRoot","index":0,"r":0.1,"g":0.2,"b":0.3}`)
	require.NoError(t, r.Err)
	assert.Equal(t, newton.RGB{R: 0.1, G: 0.2, B: 0.3}, store.Roots()[0].Color)

	r = handle(t, s, `{"type":"removeRoot","index":4}`)
	require.NoError(t, r.Err)
	assert.Equal(t, 4, store.RootCount())

	r = handle(t, s, `{"type":"addRoot","re":0.5,"im":0.5,"r":1,"g":1,"b":1}`)
	require.NoError(t, r.Err)
	assert.True(t, r.Redraw)
	require.Equal(t, 5, store.RootCount())
	assert.Equal(t, newton.Root{Value: complex(0.5, 0.5), Color: newton.RGB{R: 1, G: 1, B: 1}}, store.Roots()[4])

	r = handle(t, s, `{"type":"setRoot","index":9,"re":0,"im":0}`)
	assert.ErrorIs(t, r.Err, newton.ErrIndexOutOfRange)
	assert.False(t, r.Redraw)
}

func TestRootChangesEndRootDrag(t *testing.T) {
	s := newTestSession(t)
	store := s.Controller().Store()

	p := store.ToScreen(testViewport, store.Roots()[2].Value)
	handle(t, s, `{"type":"down","x":%g,"y":%g}`, p.X, p.Y)
	require.True(t, s.Dragging())

	r := handle(t, s, `{"type":"removeRoot","index":0}`)
	require.NoError(t, r.Err)
	assert.True(t, r.Redraw)
	assert.False(t, s.Dragging())
	require.NotNil(t, r.Cursor)
	assert.NotEqual(t, newton.CursorGrabbing, *r.Cursor)

	p = store.ToScreen(testViewport, store.Roots()[1].Value)
	handle(t, s, `{"type":"down","x":%g,"y":%g}`, p.X, p.Y)
	require.True(t, s.Dragging())

	r = handle(t, s, `{"type":"config","rootCount":6}`)
	require.NoError(t, r.Err)
	assert.False(t, s.Dragging())
	assert.Equal(t, 6, store.RootCount())
}

func TestAddRootLimit(t *testing.T) {
	s := newTestSession(t)
	store := s.Controller().Store()
	for store.RootCount() < newton.MaxRoots {
		r := handle(t, s, `{"type":"addRoot","re":0,"im":0.1}`)
		require.NoError(t, r.Err)
	}

	r := handle(t, s, `{"type":"addRoot","re":0,"im":0.2}`)
	assert.ErrorIs(t, r.Err, newton.ErrInvalidRootCount)
	assert.False(t, r.Redraw)
	assert.Equal(t, newton.MaxRoots, store.RootCount())
}

func TestResetEvent(t *testing.T) {
	s := newTestSession(t)
	handle(t, s, `{"type":"wheel","x":10,"y":10,"deltaY":-1}`)
	handle(t, s, `{"type":"setRoot","index":0,"re":3,"im":3}`)

	r := handle(t, s, `{"type":"reset"}`)
	assert.True(t, r.Redraw)
	assert.InDelta(t, 1.0, s.Controller().Store().ZoomFactor(), 1e-12)
	assert.InDelta(t, 1.0, real(s.Controller().Store().Roots()[0].Value), 1e-12)
}

func TestOrbitEvent(t *testing.T) {
	s := newTestSession(t)
	store := s.Controller().Store()
	start := store.ToScreen(testViewport, complex(0.9, 0.1))

	r := handle(t, s, `{"type":"orbit","x":%g,"y":%g}`, start.X, start.Y)
	assert.False(t, r.Redraw)
	require.Greater(t, len(r.Orbit), 1)
	assert.InDelta(t, start.X, r.Orbit[0].X, 1e-9)
	assert.InDelta(t, start.Y, r.Orbit[0].Y, 1e-9)

	end := store.ToScreen(testViewport, 1)
	last := r.Orbit[len(r.Orbit)-1]
	assert.InDelta(t, end.X, last.X, 1)
	assert.InDelta(t, end.Y, last.Y, 1)

	msgs := r.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, MessageOrbit, msgs[0].Type)
}

func TestUnknownEvent(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Handle([]byte(`{"type":"teleport"}`))
	assert.ErrorIs(t, err, ErrUnknownEvent)
}
