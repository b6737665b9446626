// Package board ties the drawing engine together: it routes pointer events
// to the resize handles or the surface controller, applies the toolbar
// settings, and redraws surfaces whose content the host has disturbed.
package board

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/time/rate"

	"PencilBoard/internal/pen"
	"PencilBoard/internal/resize"
	"PencilBoard/internal/state"
	"PencilBoard/internal/surface"
)

// ErrBusy rejects a press while a drawing session or a resize drag is in
// progress.
var ErrBusy = errors.New("board busy")

// DefaultRedrawPeriod is the minimum time between two full redraws.
const DefaultRedrawPeriod = 200 * time.Millisecond

// Host is the document the board works on.
type Host interface {
	surface.Host
	resize.Host
	// IDs lists every surface of the document.
	IDs() []string
}

// Board is the editor state of one document. It is not safe for concurrent
// use; the host delivers events one at a time.
type Board struct {
	host       Host
	renderer   *pen.Renderer
	recorder   *pen.Recorder
	controller *surface.Controller
	resizer    *resize.Resizer

	dirty        map[string]struct{}
	redraw       *rate.Sometimes
	redrawPeriod time.Duration
	minDist2     float64
}

// New returns a board over host.
func New(host Host, opts ...Option) *Board {
	b := &Board{
		host:         host,
		renderer:     pen.NewRenderer(),
		dirty:        make(map[string]struct{}),
		redrawPeriod: DefaultRedrawPeriod,
		minDist2:     pen.DefaultMinDist2,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.recorder = pen.NewRecorder(b.renderer, pen.WithMinDist2(b.minDist2))
	b.controller = surface.NewController(host, b.recorder)
	b.resizer = resize.NewResizer(host)
	b.redraw = &rate.Sometimes{Interval: b.redrawPeriod}
	if b.redrawPeriod <= 0 {
		b.redraw = &rate.Sometimes{Every: 1}
	}
	return b
}

// SetLogger sets the logger shared by the drawing engine.
func SetLogger(l *slog.Logger) {
	state.SetLogger(l)
}

func (b *Board) Renderer() *pen.Renderer { return b.renderer }

// Active returns the id of the active surface.
func (b *Board) Active() (string, bool) { return b.controller.Active() }

// Drawing reports whether a drawing session is open.
func (b *Board) Drawing() bool { return b.controller.Drawing() }

// Resizing returns the resize drag in progress, if any.
func (b *Board) Resizing() (resize.Session, bool) { return b.resizer.Session() }

func (b *Board) Mode() surface.Mode { return b.controller.Mode() }

func (b *Board) Style() pen.Style { return b.controller.Style() }

// History returns a copy of the active surface's in-memory strokes.
func (b *Board) History() (state.StrokeHistory, bool) { return b.controller.History() }

// PointerDown starts a resize when the press lands on a handle and hands
// every other press to the surface controller. Dirty surfaces are redrawn
// first.
func (b *Board) PointerDown(ev surface.Event) error {
	b.flushBeforeEvent()

	if id, h, ok := b.resizer.HandleAt(ev.Target); ok {
		if b.controller.Drawing() || b.resizer.Dragging() {
			state.Logger().Warn("board: resize rejected", slog.String("surface", id), slog.Any("error", ErrBusy))
			return fmt.Errorf("resize %s: %w", id, ErrBusy)
		}
		if err := b.resizer.Begin(id, h); err != nil {
			state.Logger().Warn("board: resize not started", slog.Any("error", err))
		}
		return nil
	}
	if b.resizer.Dragging() {
		state.Logger().Warn("board: press rejected while resizing", slog.Any("error", ErrBusy))
		return fmt.Errorf("draw: %w", ErrBusy)
	}
	b.controller.PointerDown(ev)
	return nil
}

// PointerMove feeds the resize drag when one is in progress and the drawing
// session otherwise.
func (b *Board) PointerMove(ev surface.Event) {
	b.flushBeforeEvent()
	if b.resizer.Dragging() {
		b.resizer.Update(ev.Page)
		return
	}
	b.controller.PointerMove(ev)
}

// PointerUp commits a resize drag or ends the drawing session. Dirty
// surfaces are redrawn first, as for every pointer event.
func (b *Board) PointerUp(ev surface.Event) {
	b.flushBeforeEvent()
	if b.resizer.Dragging() {
		s, err := b.resizer.Commit()
		if err != nil {
			state.Logger().Warn("board: resize not committed", slog.Any("error", err))
			return
		}
		b.MarkDirty(s.Surface)
		b.RequestRedraw()
		return
	}
	b.controller.PointerUp(ev)
}

// OnModeChange selects the drawing tool by name. Unknown names leave the
// mode unchanged.
func (b *Board) OnModeChange(name string) error {
	m, ok := surface.ParseMode(name)
	if !ok {
		err := fmt.Errorf("unknown mode %q", name)
		state.Logger().Warn("board: mode unchanged", slog.Any("error", err))
		return err
	}
	b.controller.SetMode(m)
	return nil
}

// OnColorChange sets the color of new segments. Colors that cannot be
// persisted are refused.
func (b *Board) OnColorChange(color string) error {
	if !state.ValidColor(color) {
		err := fmt.Errorf("invalid color %q", color)
		state.Logger().Warn("board: color unchanged", slog.Any("error", err))
		return err
	}
	s := b.controller.Style()
	s.Color = color
	b.controller.SetStyle(s)
	return nil
}

// OnStrokeWidthChange sets the width of new segments from a width class
// name. Unknown names select pen.DefaultWidth.
func (b *Board) OnStrokeWidthChange(name string) error {
	w, err := pen.WidthByName(name)
	if err != nil {
		state.Logger().Warn("board: using default width", slog.Any("error", err))
	}
	s := b.controller.Style()
	s.Width = w
	b.controller.SetStyle(s)
	return err
}

// OnStepTypeChange sets the step type of new segments. Unknown names leave
// it unchanged.
func (b *Board) OnStepTypeChange(name string) error {
	st, err := pen.ParseStepType(name)
	if err != nil {
		state.Logger().Warn("board: step type unchanged", slog.Any("error", err))
		return err
	}
	s := b.controller.Style()
	s.StepType = st
	b.controller.SetStyle(s)
	return nil
}

// RenderFullHistory clears surface id and draws all of its strokes. The
// active surface is drawn from memory, any other from its persisted text.
func (b *Board) RenderFullHistory(id string) error {
	ctx, err := b.host.DrawingContext(id)
	if err != nil {
		return fmt.Errorf("render %s: %w", id, err)
	}
	box, err := b.host.BoundingBox(id)
	if err != nil {
		return fmt.Errorf("render %s: %w", id, err)
	}

	var h state.StrokeHistory
	if active, ok := b.controller.Active(); ok && active == id {
		h, _ = b.controller.History()
	} else {
		raw, err := b.host.LoadHistory(id)
		if err != nil {
			return fmt.Errorf("render %s: %w", id, err)
		}
		if h, err = state.DecodeOrEmpty(raw); err != nil {
			state.Logger().Warn("board: rendering malformed history as empty",
				slog.String("surface", id), slog.Any("error", err))
		}
	}

	ctx.ClearRect(0, 0, box.Width, box.Height)
	if err := b.renderer.RenderHistory(ctx, h); err != nil {
		return fmt.Errorf("render %s: %w", id, err)
	}
	return nil
}

// RenderAll redraws every surface of the document.
func (b *Board) RenderAll() error {
	var errs []error
	for _, id := range b.host.IDs() {
		errs = append(errs, b.RenderFullHistory(id))
	}
	clear(b.dirty)
	return errors.Join(errs...)
}

// MarkDirty records that surface id has to be redrawn.
func (b *Board) MarkDirty(id string) {
	b.dirty[id] = struct{}{}
}

// Dirty returns the surfaces waiting for a redraw, sorted.
func (b *Board) Dirty() []string {
	ids := make([]string, 0, len(b.dirty))
	for id := range b.dirty {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// FlushDirty redraws the dirty surfaces and empties the set.
func (b *Board) FlushDirty() error {
	if len(b.dirty) == 0 {
		return nil
	}
	var errs []error
	for _, id := range b.Dirty() {
		errs = append(errs, b.RenderFullHistory(id))
	}
	clear(b.dirty)
	return errors.Join(errs...)
}

// flushBeforeEvent redraws dirty surfaces ahead of a pointer event.
func (b *Board) flushBeforeEvent() {
	if err := b.FlushDirty(); err != nil {
		state.Logger().Warn("board: redraw failed", slog.Any("error", err))
	}
}

// RequestRedraw redraws the whole document unless it was redrawn less than
// the redraw period ago. It reports whether the redraw ran.
func (b *Board) RequestRedraw() bool {
	ran := false
	b.redraw.Do(func() {
		ran = true
		if err := b.RenderAll(); err != nil {
			state.Logger().Warn("board: redraw failed", slog.Any("error", err))
		}
	})
	return ran
}

// Detach forgets surface id, which is being removed from the document. A
// resize of it is cancelled and its unsaved strokes are dropped.
func (b *Board) Detach(id string) {
	if s, ok := b.resizer.Session(); ok && s.Surface == id {
		b.resizer.Cancel()
	}
	b.controller.Discard(id)
	delete(b.dirty, id)
}

// Close writes the active surface back, e.g. before the document is saved.
func (b *Board) Close() {
	b.recorder.End()
	b.controller.Close()
}
