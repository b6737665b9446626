// Package resize implements drag-to-resize of a surface's bounding box from
// one of its two bottom corner handles.
package resize

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"PencilBoard/internal/state"
)

var ErrNotDragging = errors.New("no resize in progress")

// Handle is a resize handle position.
type Handle int

const (
	BottomLeft Handle = iota
	BottomRight
)

func (h Handle) String() string {
	switch h {
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	}
	return fmt.Sprintf("Handle(%d)", int(h))
}

// ParseHandle maps "bottom-left" or "bottom-right" to a Handle.
func ParseHandle(name string) (Handle, bool) {
	switch name {
	case "bottom-left":
		return BottomLeft, true
	case "bottom-right":
		return BottomRight, true
	}
	return BottomLeft, false
}

// Host is the document that owns the surfaces' bounding boxes.
type Host interface {
	// ResolveHandle reports which surface handle, if any, target designates.
	ResolveHandle(target any) (id string, h Handle, ok bool)
	BoundingBox(id string) (state.Rect, error)
	Anchor(id string) state.Anchor
	// PreviewBoundingBox shows a proposed size without committing it.
	PreviewBoundingBox(id string, width, height float64)
	SetBoundingBox(id string, width, height float64) error
}

// Session is the state of one drag, from handle press to release.
type Session struct {
	Surface        string
	Handle         Handle
	OriginalWidth  float64
	OriginalHeight float64
	// Reference is the page position of the corner opposite the handle.
	Reference      state.Point
	ProposedWidth  float64
	ProposedHeight float64
}

// Propose computes the bounding box size for the pointer at page position
// cur. The dragged corner's displacement is added to the original size;
// horizontally it counts twice for centered surfaces, which grow on both
// sides while only one corner is dragged.
func (s Session) Propose(cur state.Point, anchor state.Anchor) (width, height float64) {
	var dx float64
	switch s.Handle {
	case BottomRight:
		dx = cur.X - (s.Reference.X + s.OriginalWidth)
	default:
		dx = s.Reference.X - (cur.X + s.OriginalWidth)
	}
	if anchor == state.AnchorCenter {
		dx *= 2
	}
	dy := cur.Y - (s.Reference.Y + s.OriginalHeight)
	return math.Round(math.Abs(s.OriginalWidth + dx)), math.Round(math.Abs(s.OriginalHeight + dy))
}

// Resizer is the Idle / Dragging state machine. A nil session is Idle.
type Resizer struct {
	host    Host
	session *Session
}

func NewResizer(host Host) *Resizer {
	return &Resizer{host: host}
}

// Dragging reports whether a resize is in progress.
func (r *Resizer) Dragging() bool {
	return r.session != nil
}

// Session returns the current drag, if any.
func (r *Resizer) Session() (Session, bool) {
	if r.session == nil {
		return Session{}, false
	}
	return *r.session, true
}

// HandleAt reports the surface and handle under target.
func (r *Resizer) HandleAt(target any) (string, Handle, bool) {
	return r.host.ResolveHandle(target)
}

// Begin starts dragging handle h of surface id.
func (r *Resizer) Begin(id string, h Handle) error {
	box, err := r.host.BoundingBox(id)
	if err != nil {
		return fmt.Errorf("resize %s: %w", id, err)
	}
	// the handles sit on the bottom edge; the opposite corner is on the top
	ref := state.Point{X: box.X, Y: box.Y}
	if h == BottomLeft {
		ref.X = box.X + box.Width
	}
	r.session = &Session{
		Surface:        id,
		Handle:         h,
		OriginalWidth:  box.Width,
		OriginalHeight: box.Height,
		Reference:      ref,
		ProposedWidth:  box.Width,
		ProposedHeight: box.Height,
	}
	state.Logger().Debug("resize: begin",
		slog.String("surface", id), slog.String("handle", h.String()),
		slog.Float64("width", box.Width), slog.Float64("height", box.Height))
	return nil
}

// Update proposes a new size for the pointer at page position cur and shows
// it as a preview.
func (r *Resizer) Update(cur state.Point) {
	s := r.session
	if s == nil {
		return
	}
	s.ProposedWidth, s.ProposedHeight = s.Propose(cur, r.host.Anchor(s.Surface))
	r.host.PreviewBoundingBox(s.Surface, s.ProposedWidth, s.ProposedHeight)
}

// Commit writes the proposed size to the surface and returns to Idle.
func (r *Resizer) Commit() (Session, error) {
	s := r.session
	if s == nil {
		return Session{}, ErrNotDragging
	}
	r.session = nil
	if err := r.host.SetBoundingBox(s.Surface, s.ProposedWidth, s.ProposedHeight); err != nil {
		r.host.PreviewBoundingBox(s.Surface, s.OriginalWidth, s.OriginalHeight)
		return *s, fmt.Errorf("resize %s: %w", s.Surface, err)
	}
	state.Logger().Info("resize: committed",
		slog.String("surface", s.Surface),
		slog.Float64("width", s.ProposedWidth), slog.Float64("height", s.ProposedHeight))
	return *s, nil
}

// Cancel reverts the preview to the original size and returns to Idle
// without committing.
func (r *Resizer) Cancel() {
	s := r.session
	if s == nil {
		return
	}
	r.session = nil
	r.host.PreviewBoundingBox(s.Surface, s.OriginalWidth, s.OriginalHeight)
	state.Logger().Info("resize: cancelled", slog.String("surface", s.Surface))
}
