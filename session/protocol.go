package session

import (
	"github.com/bytedance/sonic"
	newton "github.com/marben/newton_fractal"
	"github.com/pkg/errors"
)

type EventType string

const (
	EventDown       EventType = "down"
	EventMove       EventType = "move"
	EventUp         EventType = "up"
	EventWheel      EventType = "wheel"
	EventResize     EventType = "resize"
	EventConfig     EventType = "config"
	EventReset      EventType = "reset"
	EventSetRoot    EventType = "setRoot"
	EventAddRoot    EventType = "addRoot"
	EventRemoveRoot EventType = "removeRoot"
	EventColorRoot  EventType = "colorRoot"
	EventMirrorRoot EventType = "mirrorRoot"
	EventOrbit      EventType = "orbit"
)

// Event is one inbound message. Only the fields of its Type are read.
type Event struct {
	Type EventType `json:"type"`

	// down, move, up, wheel, orbit
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaY float64 `json:"deltaY"`

	// resize
	Width  int `json:"width"`
	Height int `json:"height"`

	// config, absent fields are left alone
	RootCount     *int     `json:"rootCount,omitempty"`
	MaxIterations *int     `json:"maxIterations,omitempty"`
	DampingRe     *float64 `json:"dampingRe,omitempty"`
	DampingIm     *float64 `json:"dampingIm,omitempty"`
	ZoomPercent   *float64 `json:"zoomPercent,omitempty"`

	// setRoot, addRoot, removeRoot, colorRoot, mirrorRoot
	Index int     `json:"index"`
	Re    float64 `json:"re"`
	Im    float64 `json:"im"`
	R     float64 `json:"r"`
	G     float64 `json:"g"`
	B     float64 `json:"b"`
	Axis  string  `json:"axis"`
}

func (e Event) Point() newton.Point {
	return newton.Point{X: e.X, Y: e.Y}
}

var ErrUnknownEvent = errors.New("unknown event type")

func Decode(raw []byte) (Event, error) {
	var e Event
	if err := sonic.Unmarshal(raw, &e); err != nil {
		return Event{}, errors.Wrap(err, "decode event")
	}
	if e.Type == "" {
		return Event{}, errors.Wrap(ErrUnknownEvent, "missing type")
	}
	return e, nil
}

func ParseAxis(s string) (newton.Axis, error) {
	switch s {
	case "real":
		return newton.RealAxis, nil
	case "imag":
		return newton.ImagAxis, nil
	default:
		return 0, errors.Errorf("unknown axis %q", s)
	}
}

type MessageType string

const (
	MessageUniforms MessageType = "uniforms"
	MessageCursor   MessageType = "cursor"
	MessageOrbit    MessageType = "orbit"
	MessageError    MessageType = "error"
)

type OrbitPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Message is one outbound message.
type Message struct {
	Type     MessageType      `json:"type"`
	Uniforms *newton.Uniforms `json:"uniforms,omitempty"`
	Cursor   string           `json:"cursor,omitempty"`
	Points   []OrbitPoint     `json:"points,omitempty"`
	Message  string           `json:"message,omitempty"`
}

func UniformsMessage(u newton.Uniforms) Message {
	return Message{Type: MessageUniforms, Uniforms: &u}
}

func CursorMessage(c newton.Cursor) Message {
	return Message{Type: MessageCursor, Cursor: c.String()}
}

func OrbitMessage(points []OrbitPoint) Message {
	return Message{Type: MessageOrbit, Points: points}
}

func ErrorMessage(err error) Message {
	return Message{Type: MessageError, Message: err.Error()}
}

func Encode(m Message) ([]byte, error) {
	b, err := sonic.Marshal(m)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s message", m.Type)
	}
	return b, nil
}
