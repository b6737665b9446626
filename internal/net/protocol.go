package net

import (
	"PencilBoard/internal/pen"
	"PencilBoard/internal/state"
)

// ClientMessage is one message from a browser client.
type ClientMessage struct {
	Type    string  `json:"type"`
	Pointer string  `json:"pointer,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Surface string  `json:"surface,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Anchor  string  `json:"anchor,omitempty"`
	Border  *bool   `json:"border,omitempty"`
	Value   string  `json:"value,omitempty"`
}

// ServerMessage is one message to a browser client.
type ServerMessage struct {
	Type     string  `json:"type"`
	Surface  string  `json:"surface,omitempty"`
	Content  string  `json:"content,omitempty"`
	Revision uint64  `json:"revision,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Anchor   string  `json:"anchor,omitempty"`
	Active   bool    `json:"active,omitempty"`
	Ops      []Op    `json:"ops,omitempty"`
	Error    string  `json:"error,omitempty"`
}

func boxMessage(typ, id string, box state.Rect) ServerMessage {
	return ServerMessage{Type: typ, Surface: id, X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}
}

// Op is one 2D canvas call, named after the browser canvas method it maps
// to.
type Op struct {
	Op    string    `json:"op"`
	Args  []float64 `json:"args,omitempty"`
	Color string    `json:"color,omitempty"`
}

// drawQueue collects the drawing calls made while one client message is
// handled, grouped by surface in the order surfaces were first drawn on.
type drawQueue struct {
	order []string
	ops   map[string][]Op
}

func newDrawQueue() *drawQueue {
	return &drawQueue{ops: make(map[string][]Op)}
}

func (q *drawQueue) add(id string, op Op) {
	if _, ok := q.ops[id]; !ok {
		q.order = append(q.order, id)
	}
	q.ops[id] = append(q.ops[id], op)
}

// drain returns one draw message per surface and empties the queue.
func (q *drawQueue) drain() []ServerMessage {
	out := make([]ServerMessage, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, ServerMessage{Type: "draw", Surface: id, Ops: q.ops[id]})
	}
	q.order = q.order[:0]
	clear(q.ops)
	return out
}

// wireContext is the drawing context of one surface of a remote document.
// It forwards every call to the client instead of drawing.
type wireContext struct {
	id string
	q  *drawQueue
}

var _ pen.Context = (*wireContext)(nil)

func (c *wireContext) add(name string, args ...float64) {
	c.q.add(c.id, Op{Op: name, Args: args})
}

func (c *wireContext) BeginPath()                   { c.add("beginPath") }
func (c *wireContext) MoveTo(x, y float64)          { c.add("moveTo", x, y) }
func (c *wireContext) LineTo(x, y float64)          { c.add("lineTo", x, y) }
func (c *wireContext) SetLineWidth(w float64)       { c.add("lineWidth", w) }
func (c *wireContext) ClearRect(x, y, w, h float64) { c.add("clearRect", x, y, w, h) }

func (c *wireContext) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	c.add("bezierCurveTo", c1x, c1y, c2x, c2y, x, y)
}

func (c *wireContext) SetStrokeColor(color string) {
	c.q.add(c.id, Op{Op: "strokeStyle", Color: color})
}

func (c *wireContext) Stroke() error {
	c.add("stroke")
	return nil
}
