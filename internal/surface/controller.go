// Package surface decides, for every pointer event, which drawing surface of
// a document owns drawing input, and opens and closes surfaces accordingly.
//
// At most one surface is active at a time. Opening a surface loads its
// persisted strokes into memory; closing it writes them back. A surface is
// always closed before another is opened, so the in-memory history is only
// ever written back to the surface it was loaded from.
package surface

import (
	"log/slog"

	"PencilBoard/internal/pen"
	"PencilBoard/internal/state"
)

// Host is the document that embeds the surfaces.
type Host interface {
	// ResolveSurface reports which surface, if any, target designates.
	ResolveSurface(target any) (id string, ok bool)
	// LocalPoint converts a page position to surface-local coordinates.
	LocalPoint(id string, page state.Point) state.Point
	LoadHistory(id string) (string, error)
	SaveHistory(id, raw string) error
	DrawingContext(id string) (pen.Context, error)
	// SetActive lets the host highlight the active surface.
	SetActive(id string, active bool)
}

// openSurface is the Active(id) state: the id travels with the history it
// was loaded into.
type openSurface struct {
	id      string
	history state.StrokeHistory
}

// Controller is the activation state machine. A nil active field is Idle.
type Controller struct {
	host     Host
	recorder *pen.Recorder
	active   *openSurface
	mode     Mode
	style    pen.Style
}

// NewController returns an idle controller feeding recorder.
func NewController(host Host, recorder *pen.Recorder) *Controller {
	return &Controller{
		host:     host,
		recorder: recorder,
		mode:     ModeFreePen,
		style:    pen.DefaultStyle(),
	}
}

// Active returns the id of the active surface.
func (c *Controller) Active() (string, bool) {
	if c.active == nil {
		return "", false
	}
	return c.active.id, true
}

// Drawing reports whether a drawing session is open.
func (c *Controller) Drawing() bool {
	return c.recorder.Drawing()
}

// History returns a copy of the active surface's in-memory history.
func (c *Controller) History() (state.StrokeHistory, bool) {
	if c.active == nil {
		return nil, false
	}
	return c.active.history.Clone(), true
}

func (c *Controller) Mode() Mode { return c.mode }

// SetMode changes the drawing tool.
func (c *Controller) SetMode(m Mode) {
	c.mode = m
}

func (c *Controller) Style() pen.Style { return c.style }

// SetStyle sets the style of segments created from now on.
func (c *Controller) SetStyle(s pen.Style) {
	c.style = s
}

// Open makes id the active surface, closing any other active surface
// first. Opening the active surface again does nothing.
func (c *Controller) Open(id string) {
	if c.active != nil {
		if c.active.id == id {
			return
		}
		c.Close()
	}

	raw, err := c.host.LoadHistory(id)
	if err != nil {
		state.Logger().Warn("surface: load failed, starting empty",
			slog.String("surface", id), slog.Any("error", err))
		raw = ""
	}
	history, err := state.DecodeOrEmpty(raw)
	if err != nil {
		state.Logger().Warn("surface: discarding malformed history",
			slog.String("surface", id), slog.Any("error", err))
	}
	ctx, err := c.host.DrawingContext(id)
	if err != nil {
		state.Logger().Warn("surface: no drawing context, live feedback disabled",
			slog.String("surface", id), slog.Any("error", err))
		ctx = nil
	}

	c.active = &openSurface{id: id, history: history}
	c.recorder.Attach(&c.active.history, ctx)
	c.host.SetActive(id, true)
	state.Logger().Info("surface: opened",
		slog.String("surface", id), slog.Int("segments", len(history)))
}

// Close writes the active surface's history back and returns to Idle.
// Closing while Idle does nothing.
func (c *Controller) Close() {
	if c.active == nil {
		return
	}
	closing := c.active
	c.recorder.Detach()
	c.active = nil

	raw, err := state.Encode(closing.history)
	if err != nil {
		state.Logger().Error("surface: encode failed, strokes not saved",
			slog.String("surface", closing.id), slog.Any("error", err))
	} else if err := c.host.SaveHistory(closing.id, raw); err != nil {
		state.Logger().Error("surface: save failed",
			slog.String("surface", closing.id), slog.Any("error", err))
	}
	c.host.SetActive(closing.id, false)
	state.Logger().Info("surface: closed",
		slog.String("surface", closing.id), slog.Int("segments", len(closing.history)))
}

// Discard drops id from the controller without saving, for surfaces that
// no longer exist. Other surfaces are left alone.
func (c *Controller) Discard(id string) {
	if c.active == nil || c.active.id != id {
		return
	}
	c.recorder.Detach()
	c.active = nil
	state.Logger().Info("surface: discarded", slog.String("surface", id))
}

// PointerDown routes a pointer-down event.
func (c *Controller) PointerDown(ev Event) {
	if !ev.Pointer.canDraw() {
		return
	}
	id, ok := c.host.ResolveSurface(ev.Target)
	if !ok {
		c.Close()
		return
	}
	c.Open(id)

	switch c.mode {
	case ModeFreePen:
		c.recorder.Begin(c.host.LocalPoint(id, ev.Page), c.style)
	case ModeStraightLine, ModeErase:
		// accepted modes without a drawing behavior yet
	}
}

// PointerMove routes a pointer-move event. Only moves over the active
// surface reach the recorder.
func (c *Controller) PointerMove(ev Event) {
	if c.active == nil || !ev.Pointer.canDraw() {
		return
	}
	id, ok := c.host.ResolveSurface(ev.Target)
	if !ok || id != c.active.id {
		return
	}

	switch c.mode {
	case ModeFreePen:
		c.recorder.Extend(c.host.LocalPoint(id, ev.Page))
	case ModeStraightLine, ModeErase:
	}
}

// PointerUp ends any drawing session. Releasing over a surface other than
// the active one closes the active surface.
func (c *Controller) PointerUp(ev Event) {
	c.recorder.End()
	if c.active == nil {
		return
	}
	if id, ok := c.host.ResolveSurface(ev.Target); ok && id != c.active.id {
		state.Logger().Warn("surface: pointer released over another surface",
			slog.String("active", c.active.id), slog.String("released", id))
		c.Close()
	}
}
