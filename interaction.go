package newton

// Mode is the gesture the controller is currently tracking.
type Mode int

const (
	Idle Mode = iota
	DraggingRoot
	DraggingView
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "Idle"
	case DraggingRoot:
		return "DraggingRoot"
	case DraggingView:
		return "DraggingView"
	default:
		return "Unknown"
	}
}

// Cursor is the hover feedback for the pointer. String returns the CSS name.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorGrab
	CursorGrabbing
	CursorMove
)

func (c Cursor) String() string {
	switch c {
	case CursorGrab:
		return "grab"
	case CursorGrabbing:
		return "grabbing"
	case CursorMove:
		return "move"
	default:
		return "default"
	}
}

// Feedback is the outcome of one input event.
type Feedback struct {
	Redraw bool
	Cursor Cursor
}

func (fb Feedback) redraw() Feedback {
	fb.Redraw = true
	return fb
}

// Controller routes pointer, wheel and resize events to the store. It is not
// safe for concurrent use: events must be handled one at a time, in order.
type Controller struct {
	store *Store
	vp    Viewport

	mode   Mode
	index  int // dragged root, valid in DraggingRoot only
	prev   Point
	cursor Cursor

	hitRadius    float64
	zoomToCursor bool
}

type ControllerOption func(*Controller)

// WithHitRadius sets the pixel radius around a root that grabs it.
func WithHitRadius(px float64) ControllerOption {
	return func(c *Controller) {
		c.hitRadius = px
	}
}

// WithZoomToCursor selects whether the wheel zooms about the pointer or about
// the center of the viewport.
func WithZoomToCursor(on bool) ControllerOption {
	return func(c *Controller) {
		c.zoomToCursor = on
	}
}

func NewController(store *Store, vp Viewport, opts ...ControllerOption) (*Controller, error) {
	if !vp.Valid() {
		return nil, ErrInvalidViewport
	}
	c := &Controller{
		store:        store,
		vp:           vp,
		index:        -1,
		hitRadius:    RootIndicatorRadius,
		zoomToCursor: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Controller) Store() *Store {
	return c.store
}

func (c *Controller) Viewport() Viewport {
	return c.vp
}

func (c *Controller) Mode() Mode {
	return c.mode
}

func (c *Controller) Cursor() Cursor {
	return c.cursor
}

// DragIndex returns the dragged root while in DraggingRoot.
func (c *Controller) DragIndex() (int, bool) {
	if c.mode != DraggingRoot {
		return -1, false
	}
	return c.index, true
}

// PointerDown starts dragging the root under p, or the view when there is none.
func (c *Controller) PointerDown(p Point) Feedback {
	c.prev = p
	if i, ok := c.store.FindRootNear(c.vp, p, c.hitRadius); ok {
		c.mode, c.index = DraggingRoot, i
		return c.feedback(false, CursorGrabbing)
	}
	c.mode, c.index = DraggingView, -1
	return c.feedback(false, CursorMove)
}

func (c *Controller) PointerMove(p Point) Feedback {
	switch c.mode {
	case DraggingRoot:
		if err := c.store.SetRootValue(c.index, c.store.ToComplex(c.vp, p)); err != nil {
			// the root went away mid drag
			c.idle()
			return c.hover(p)
		}
		c.prev = p
		return c.feedback(true, CursorGrabbing)
	case DraggingView:
		c.store.Pan(c.vp, c.prev.X-p.X, c.prev.Y-p.Y)
		c.prev = p
		return c.feedback(true, CursorMove)
	default:
		return c.hover(p)
	}
}

// PointerUp ends any drag.
func (c *Controller) PointerUp(p Point) Feedback {
	c.idle()
	return c.hover(p).redraw()
}

// Wheel zooms in for negative deltaY and out for positive deltaY. The drag
// state is left alone. No redraw is due when the zoom limit is reached.
func (c *Controller) Wheel(x, y, deltaY float64) Feedback {
	if deltaY == 0 {
		return c.feedback(false, c.cursor)
	}
	xw, yw := 0.5, 0.5
	if c.zoomToCursor {
		xw = x / float64(c.vp.Width)
		yw = y / float64(c.vp.Height)
	}
	return c.feedback(c.store.Zoom(deltaY < 0, xw, yw), c.cursor)
}

// Resize adapts the frame to a new device size. Sizes below 2x2 are ignored.
func (c *Controller) Resize(width, height int) Feedback {
	next := Viewport{Width: width, Height: height}
	if !next.Valid() {
		return c.feedback(false, c.cursor)
	}
	c.store.Resize(float64(next.Width-c.vp.Width), float64(next.Height-c.vp.Height))
	c.vp = next
	return c.feedback(true, c.cursor)
}

// Reset respaces the roots, refits the frame to the viewport and ends any drag.
func (c *Controller) Reset() Feedback {
	c.idle()
	c.store.Reset(c.vp)
	return c.feedback(true, CursorDefault)
}

// RemoveRoot removes root i. A root drag ends when the dragged root is
// removed or its index shifts.
func (c *Controller) RemoveRoot(i int) (Feedback, error) {
	if err := c.store.RemoveRoot(i); err != nil {
		return c.feedback(false, c.cursor), err
	}
	if c.mode == DraggingRoot && i <= c.index {
		c.idle()
		return c.hover(c.prev).redraw(), nil
	}
	return c.feedback(true, c.cursor), nil
}

// SetRootCount regenerates the root set with n roots and ends a root drag.
func (c *Controller) SetRootCount(n int) (Feedback, error) {
	if err := c.store.SetRootCount(n); err != nil {
		return c.feedback(false, c.cursor), err
	}
	if c.mode == DraggingRoot {
		c.idle()
		return c.hover(c.prev).redraw(), nil
	}
	return c.feedback(true, c.cursor), nil
}

func (c *Controller) hover(p Point) Feedback {
	if _, ok := c.store.FindRootNear(c.vp, p, c.hitRadius); ok {
		return c.feedback(false, CursorGrab)
	}
	return c.feedback(false, CursorDefault)
}

func (c *Controller) idle() {
	c.mode, c.index = Idle, -1
}

func (c *Controller) feedback(redraw bool, cursor Cursor) Feedback {
	c.cursor = cursor
	return Feedback{Redraw: redraw, Cursor: cursor}
}
