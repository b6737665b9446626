package net

import (
	"errors"
	"fmt"

	"PencilBoard/internal/board"
	"PencilBoard/internal/document"
	"PencilBoard/internal/pen"
	"PencilBoard/internal/state"
	"PencilBoard/internal/surface"
)

// Session is the document and board of one connected client.
type Session struct {
	Store    *document.Store
	Board    *board.Board
	defaults document.Config

	draws   *drawQueue
	pending []ServerMessage
}

// NewSession returns a session over an empty document.
func NewSession(defaults document.Config, opts ...board.Option) *Session {
	s := &Session{defaults: defaults, draws: newDrawQueue()}
	s.Store = document.NewStore(func(id string, _, _ int) pen.Context {
		return &wireContext{id: id, q: s.draws}
	})
	s.Store.OnChange = s.onChange
	s.Board = board.New(s.Store, opts...)
	return s
}

func (s *Session) onChange(c document.Change) {
	switch c.Kind {
	case document.SurfaceInserted:
		m := boxMessage("inserted", c.Surface, c.Box)
		m.Anchor = string(s.Store.Anchor(c.Surface))
		s.pending = append(s.pending, m)
	case document.SurfaceRemoved:
		s.pending = append(s.pending, ServerMessage{Type: "removed", Surface: c.Surface})
	case document.ContentSaved:
		s.pending = append(s.pending, ServerMessage{
			Type: "content", Surface: c.Surface, Content: c.Content, Revision: c.Revision,
		})
	case document.BoxPreviewed, document.BoxCommitted, document.AnchorChanged:
		s.pending = append(s.pending, boxMessage("box", c.Surface, c.Box))
	case document.ActiveChanged:
		s.pending = append(s.pending, ServerMessage{Type: "active", Surface: c.Surface, Active: c.Active})
	}
}

// Welcome describes the current document to a newly connected client.
func (s *Session) Welcome() []ServerMessage {
	s.pending = nil
	var out []ServerMessage
	for _, sf := range s.Store.Surfaces() {
		m := boxMessage("inserted", sf.ID, sf.Box())
		m.Anchor = string(sf.Anchor)
		out = append(out, m)
	}
	if err := s.Board.RenderAll(); err != nil {
		out = append(out, errorMessage(err))
	}
	return append(out, s.draws.drain()...)
}

func errorMessage(err error) ServerMessage {
	return ServerMessage{Type: "error", Error: err.Error()}
}

// Handle applies one client message and returns the messages to send back:
// document changes first, then the drawing calls.
func (s *Session) Handle(msg ClientMessage) []ServerMessage {
	var out []ServerMessage
	if err := s.apply(msg); err != nil {
		out = append(out, errorMessage(err))
	}
	out = append(s.pending, out...)
	s.pending = nil
	return append(out, s.draws.drain()...)
}

func (s *Session) pointerEvent(msg ClientMessage) (surface.Event, error) {
	pt, ok := surface.ParsePointerType(msg.Pointer)
	if !ok {
		return surface.Event{}, fmt.Errorf("unknown pointer type %q", msg.Pointer)
	}
	p := state.Point{X: msg.X, Y: msg.Y}
	return surface.Event{Target: p, Pointer: pt, Page: p}, nil
}

func (s *Session) apply(msg ClientMessage) error {
	switch msg.Type {
	case "pointerdown", "pointermove", "pointerup":
		ev, err := s.pointerEvent(msg)
		if err != nil {
			return err
		}
		switch msg.Type {
		case "pointerdown":
			return s.Board.PointerDown(ev)
		case "pointermove":
			s.Board.PointerMove(ev)
		default:
			s.Board.PointerUp(ev)
		}
		return nil
	case "insert":
		cfg := s.defaults
		if msg.Width > 0 {
			cfg.Width = msg.Width
		}
		if msg.Height > 0 {
			cfg.Height = msg.Height
		}
		if msg.Anchor != "" {
			a, ok := state.ParseAnchor(msg.Anchor)
			if !ok {
				return fmt.Errorf("unknown anchor %q", msg.Anchor)
			}
			cfg.Anchor = a
		}
		if msg.Border != nil {
			cfg.Border = *msg.Border
		}
		s.Store.Insert(cfg)
		return nil
	case "remove":
		s.Board.Detach(msg.Surface)
		return s.Store.Remove(msg.Surface)
	case "anchor":
		a, ok := state.ParseAnchor(msg.Anchor)
		if !ok {
			return fmt.Errorf("unknown anchor %q", msg.Anchor)
		}
		if err := s.Store.SetAnchor(msg.Surface, a); err != nil {
			return err
		}
		s.Board.MarkDirty(msg.Surface)
		return nil
	case "mode":
		return s.Board.OnModeChange(msg.Value)
	case "color":
		return s.Board.OnColorChange(msg.Value)
	case "strokeWidth":
		return s.Board.OnStrokeWidthChange(msg.Value)
	case "stepType":
		return s.Board.OnStepTypeChange(msg.Value)
	case "render":
		if msg.Surface == "" {
			return s.Board.RenderAll()
		}
		return s.Board.RenderFullHistory(msg.Surface)
	case "":
		return errors.New("message without type")
	}
	return fmt.Errorf("unknown message type %q", msg.Type)
}

// Close writes back the surface the client was drawing on.
func (s *Session) Close() {
	s.Board.Close()
	s.pending = nil
	s.draws.drain()
}
