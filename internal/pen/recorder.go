package pen

import (
	"log/slog"

	"PencilBoard/internal/state"
)

// DefaultMinDist2 is the squared distance, in px², a sample must move away
// from the last recorded point before it is recorded.
const DefaultMinDist2 = 20

// minPoints is the number of points a segment collects regardless of the
// distance filter, so dots and very short marks still register.
const minPoints = 4

// Session is the transient state of a pointer held down on a surface.
type Session struct {
	LastPoint state.Point
	Segment   int
}

// Recorder appends pointer samples to the history of the active surface.
// It does not own the history: the surface controller attaches the history
// of the surface it opens and detaches it before closing that surface.
type Recorder struct {
	MinDist2 float64

	renderer *Renderer
	history  *state.StrokeHistory
	ctx      Context
	session  *Session
	style    Style
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithMinDist2 sets the squared distance filter.
func WithMinDist2(d2 float64) RecorderOption {
	return func(r *Recorder) { r.MinDist2 = d2 }
}

// NewRecorder returns a recorder drawing live feedback with renderer.
func NewRecorder(renderer *Renderer, opts ...RecorderOption) *Recorder {
	r := &Recorder{MinDist2: DefaultMinDist2, renderer: renderer}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attach points the recorder at a surface's in-memory history and drawing
// context. Any pointer still down on the previous surface is released.
func (r *Recorder) Attach(h *state.StrokeHistory, ctx Context) {
	r.session = nil
	r.history = h
	r.ctx = ctx
}

// Detach releases the history and context.
func (r *Recorder) Detach() {
	r.session = nil
	r.history = nil
	r.ctx = nil
}

// Attached reports whether a history is attached.
func (r *Recorder) Attached() bool {
	return r.history != nil
}

// Drawing reports whether the pointer is down.
func (r *Recorder) Drawing() bool {
	return r.session != nil
}

// Session returns the current drawing session, if any.
func (r *Recorder) Session() (Session, bool) {
	if r.session == nil {
		return Session{}, false
	}
	return *r.session, true
}

// Begin starts a new segment at origin with style.
func (r *Recorder) Begin(origin state.Point, style Style) {
	if r.history == nil {
		return
	}
	*r.history = append(*r.history, state.Segment{
		Width:    style.Width,
		Color:    style.Color,
		StepType: style.StepType,
		Points:   []state.Point{origin},
	})
	r.style = style
	r.session = &Session{LastPoint: origin, Segment: len(*r.history) - 1}
	state.Logger().Debug("pen: begin segment",
		slog.Int("segment", r.session.Segment),
		slog.Float64("x", origin.X), slog.Float64("y", origin.Y))
}

// Extend records p if it is far enough from the last recorded point or the
// current segment is still short. It reports whether p was recorded.
func (r *Recorder) Extend(p state.Point) bool {
	if r.session == nil || r.history == nil {
		return false
	}
	seg := &(*r.history)[r.session.Segment]
	d2 := state.SquaredNorm(state.Vector(r.session.LastPoint, p))
	if d2 <= r.MinDist2 && len(seg.Points) >= minPoints {
		return false
	}
	seg.Points = append(seg.Points, p)
	if r.ctx != nil {
		if err := r.renderer.DrawIncremental(r.ctx, r.session.LastPoint, p, r.style); err != nil {
			state.Logger().Warn("pen: live stroke failed", slog.Any("error", err))
		}
	}
	r.session.LastPoint = p
	return true
}

// End releases the pointer. The segment stays in the history.
func (r *Recorder) End() {
	if r.session != nil {
		state.Logger().Debug("pen: end segment", slog.Int("segment", r.session.Segment))
	}
	r.session = nil
}
