// Package document is an in-memory host document: it lays out drawing
// surfaces on a page, resolves pointer positions to surfaces and resize
// handles, and keeps each surface's persisted stroke text.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"PencilBoard/internal/pen"
	"PencilBoard/internal/resize"
	"PencilBoard/internal/state"
)

var (
	ErrNoSurface = errors.New("no such surface")
	ErrNoContext = errors.New("no drawing context factory")
	// ErrUnknownAnchor is returned for a position other than left, center
	// or right.
	ErrUnknownAnchor = errors.New("unknown anchor")
)

const (
	// HandleSize is the side of the square resize handles, in page pixels.
	HandleSize = 12
	// Margin separates surfaces from each other and from the page edges.
	Margin = 20
	// DefaultPageWidth is the page width used for anchoring.
	DefaultPageWidth = 800
)

// Config holds the defaults for inserted surfaces.
type Config struct {
	Width  float64
	Height float64
	Anchor state.Anchor
	Border bool
}

// DefaultConfig is a centered 400x300 surface with a border.
func DefaultConfig() Config {
	return Config{Width: 400, Height: 300, Anchor: state.AnchorCenter, Border: true}
}

// ContextFactory creates the drawing context of a surface.
type ContextFactory func(id string, width, height int) pen.Context

// resizable is implemented by drawing contexts with a backing store that
// follows the surface size.
type resizable interface {
	Resize(width, height int) error
}

// ChangeKind tells what a Change is about.
type ChangeKind int

const (
	SurfaceInserted ChangeKind = iota
	SurfaceRemoved
	ContentSaved
	BoxPreviewed
	BoxCommitted
	ActiveChanged
	AnchorChanged
)

// Change describes one modification of the document.
type Change struct {
	Kind     ChangeKind
	Surface  string
	Content  string
	Box      state.Rect
	Active   bool
	Revision uint64
}

type entry struct {
	surface state.Surface
	content string
	preview *state.Rect
	ctx     pen.Context
}

// Store is the document. It is safe for concurrent use; OnChange is called
// without the lock held.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	order      []string
	clock      state.Clock
	pageWidth  float64
	newContext ContextFactory

	// OnChange, when set, is told about every modification.
	OnChange func(Change)
}

// NewStore returns an empty document whose surfaces draw on contexts made by
// newContext. newContext may be nil for documents that are never drawn on.
func NewStore(newContext ContextFactory) *Store {
	return &Store{
		entries:    make(map[string]*entry),
		pageWidth:  DefaultPageWidth,
		newContext: newContext,
	}
}

func (s *Store) notify(c Change) {
	if s.OnChange != nil {
		s.OnChange(c)
	}
}

func (s *Store) get(id string) (*entry, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSurface, id)
	}
	return e, nil
}

// SetPageWidth changes the width surfaces are anchored against.
func (s *Store) SetPageWidth(w float64) {
	s.mu.Lock()
	s.pageWidth = w
	s.layout()
	s.mu.Unlock()
}

// layout stacks the surfaces vertically in insertion order and places each
// horizontally according to its anchor. Callers hold the lock.
func (s *Store) layout() {
	y := float64(Margin)
	for _, id := range s.order {
		sf := &s.entries[id].surface
		switch sf.Anchor {
		case state.AnchorCenter:
			sf.X = (s.pageWidth - sf.Width) / 2
		case state.AnchorRight:
			sf.X = s.pageWidth - sf.Width - Margin
		default:
			sf.X = Margin
		}
		sf.Y = y
		y += sf.Height + Margin
	}
}

// Insert adds an empty surface at the end of the document and returns its id.
func (s *Store) Insert(cfg Config) string {
	return s.insert(uuid.NewString(), cfg, "")
}

// insert adds a surface under id, or under a fresh id when id is already
// taken.
func (s *Store) insert(id string, cfg Config, content string) string {
	anchor, ok := state.ParseAnchor(string(cfg.Anchor))
	if !ok && cfg.Anchor != "" {
		state.Logger().Warn("document: unknown anchor, using left", slog.String("anchor", string(cfg.Anchor)))
	}
	cfg.Anchor = anchor
	s.mu.Lock()
	if _, taken := s.entries[id]; taken {
		fresh := uuid.NewString()
		state.Logger().Info("document: surface id taken, renaming",
			slog.String("surface", id), slog.String("as", fresh))
		id = fresh
	}
	s.entries[id] = &entry{
		surface: state.Surface{
			ID:     id,
			Width:  cfg.Width,
			Height: cfg.Height,
			Anchor: cfg.Anchor,
			Border: cfg.Border,
		},
		content: content,
	}
	s.order = append(s.order, id)
	s.layout()
	box := s.entries[id].surface.Box()
	rev := s.clock.Tick()
	s.mu.Unlock()

	state.Logger().Info("document: surface inserted", slog.String("surface", id))
	s.notify(Change{Kind: SurfaceInserted, Surface: id, Content: content, Box: box, Revision: rev})
	return id
}

// Remove deletes a surface.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	if _, err := s.get(id); err != nil {
		s.mu.Unlock()
		return err
	}
	delete(s.entries, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.layout()
	rev := s.clock.Tick()
	s.mu.Unlock()

	s.notify(Change{Kind: SurfaceRemoved, Surface: id, Revision: rev})
	return nil
}

// IDs returns the surface ids in document order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Surface returns a snapshot of a surface with its decoded history.
// Malformed text yields an empty history.
func (s *Store) Surface(id string) (state.Surface, error) {
	s.mu.RLock()
	e, err := s.get(id)
	if err != nil {
		s.mu.RUnlock()
		return state.Surface{}, err
	}
	sf, content := e.surface, e.content
	s.mu.RUnlock()

	sf.History, _ = state.DecodeOrEmpty(content)
	return sf, nil
}

// Surfaces returns snapshots of all surfaces in document order.
func (s *Store) Surfaces() []state.Surface {
	ids := s.IDs()
	out := make([]state.Surface, 0, len(ids))
	for _, id := range ids {
		if sf, err := s.Surface(id); err == nil {
			out = append(out, sf)
		}
	}
	return out
}

// Preview returns the live resize preview of a surface, if one is shown.
func (s *Store) Preview(id string) (state.Rect, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok || e.preview == nil {
		return state.Rect{}, false
	}
	return *e.preview, true
}

// ResolveSurface accepts a page position (state.Point) or a surface id
// (string). Overlapping surfaces resolve to the one inserted last.
func (s *Store) ResolveSurface(target any) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch t := target.(type) {
	case state.Point:
		for i := len(s.order) - 1; i >= 0; i-- {
			id := s.order[i]
			if s.entries[id].surface.Box().Contains(t) {
				return id, true
			}
		}
	case string:
		if _, ok := s.entries[t]; ok {
			return t, true
		}
	}
	return "", false
}

// ResolveHandle reports the resize handle under a page position. Only the
// active surface shows handles.
func (s *Store) ResolveHandle(target any) (string, resize.Handle, bool) {
	p, ok := target.(state.Point)
	if !ok {
		return "", 0, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		sf := s.entries[id].surface
		if !sf.Active {
			continue
		}
		bottom := sf.Y + sf.Height
		if handleBox(sf.X, bottom).Contains(p) {
			return id, resize.BottomLeft, true
		}
		if handleBox(sf.X+sf.Width, bottom).Contains(p) {
			return id, resize.BottomRight, true
		}
	}
	return "", 0, false
}

// HandleBoxes returns the page rectangles of a surface's two handles.
func HandleBoxes(box state.Rect) (left, right state.Rect) {
	bottom := box.Y + box.Height
	return handleBox(box.X, bottom), handleBox(box.X+box.Width, bottom)
}

func handleBox(cx, cy float64) state.Rect {
	return state.Rect{X: cx - HandleSize/2, Y: cy - HandleSize/2, Width: HandleSize, Height: HandleSize}
}

// LocalPoint converts a page position to the surface's coordinates.
func (s *Store) LocalPoint(id string, page state.Point) state.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return page
	}
	return page.Sub(state.Point{X: e.surface.X, Y: e.surface.Y})
}

// LoadHistory returns the persisted stroke text of a surface.
func (s *Store) LoadHistory(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, err := s.get(id)
	if err != nil {
		return "", err
	}
	return e.content, nil
}

// SaveHistory replaces the persisted stroke text of a surface.
func (s *Store) SaveHistory(id, raw string) error {
	s.mu.Lock()
	e, err := s.get(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	e.content = raw
	rev := s.clock.Tick()
	s.mu.Unlock()

	s.notify(Change{Kind: ContentSaved, Surface: id, Content: raw, Revision: rev})
	return nil
}

// DrawingContext returns the surface's drawing context, creating it on
// first use.
func (s *Store) DrawingContext(id string) (pen.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if e.ctx == nil {
		if s.newContext == nil {
			return nil, ErrNoContext
		}
		e.ctx = s.newContext(id, int(e.surface.Width), int(e.surface.Height))
	}
	return e.ctx, nil
}

// SetActive marks a surface as the selected one.
func (s *Store) SetActive(id string, active bool) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	e.surface.Active = active
	rev := s.clock.Tick()
	s.mu.Unlock()

	s.notify(Change{Kind: ActiveChanged, Surface: id, Active: active, Revision: rev})
}

// BoundingBox returns the committed page box of a surface.
func (s *Store) BoundingBox(id string) (state.Rect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, err := s.get(id)
	if err != nil {
		return state.Rect{}, err
	}
	return e.surface.Box(), nil
}

// Anchor returns a surface's anchor. Unknown surfaces are left anchored.
func (s *Store) Anchor(id string) state.Anchor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[id]; ok {
		return e.surface.Anchor
	}
	return state.AnchorLeft
}

// SetAnchor moves a surface to the left, center or right of the page.
func (s *Store) SetAnchor(id string, a state.Anchor) error {
	s.mu.Lock()
	e, err := s.get(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if _, ok := state.ParseAnchor(string(a)); !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownAnchor, a)
	}
	e.surface.Anchor = a
	s.layout()
	box := e.surface.Box()
	rev := s.clock.Tick()
	s.mu.Unlock()

	s.notify(Change{Kind: AnchorChanged, Surface: id, Box: box, Revision: rev})
	return nil
}

// PreviewBoundingBox shows a proposed size for a surface. Previewing the
// committed size removes the preview.
func (s *Store) PreviewBoundingBox(id string, width, height float64) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	box := e.surface.Box()
	if width == box.Width && height == box.Height {
		e.preview = nil
	} else {
		box.Width, box.Height = width, height
		e.preview = &box
	}
	s.mu.Unlock()

	s.notify(Change{Kind: BoxPreviewed, Surface: id, Box: box})
}

// SetBoundingBox commits a new size for a surface and lays the page out
// again.
func (s *Store) SetBoundingBox(id string, width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid size %vx%v for %s", width, height, id)
	}
	s.mu.Lock()
	e, err := s.get(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	e.surface.Width, e.surface.Height = width, height
	e.preview = nil
	s.layout()
	box := e.surface.Box()
	ctx := e.ctx
	rev := s.clock.Tick()
	s.mu.Unlock()

	if r, ok := ctx.(resizable); ok {
		if err := r.Resize(int(width), int(height)); err != nil {
			return fmt.Errorf("resize context of %s: %w", id, err)
		}
	}
	s.notify(Change{Kind: BoxCommitted, Surface: id, Box: box, Revision: rev})
	return nil
}

// Revision returns the revision of the last modification.
func (s *Store) Revision() uint64 {
	return s.clock.Now()
}

type savedSurface struct {
	ID      string       `json:"id"`
	Width   float64      `json:"width"`
	Height  float64      `json:"height"`
	Anchor  state.Anchor `json:"anchor"`
	Border  bool         `json:"border"`
	Content string       `json:"content"`
}

type savedDocument struct {
	Revision uint64         `json:"revision"`
	Surfaces []savedSurface `json:"surfaces"`
}

// Save writes the whole document as JSON.
func (s *Store) Save(w io.Writer) error {
	s.mu.RLock()
	doc := savedDocument{Revision: s.clock.Now(), Surfaces: make([]savedSurface, 0, len(s.order))}
	for _, id := range s.order {
		e := s.entries[id]
		doc.Surfaces = append(doc.Surfaces, savedSurface{
			ID:      id,
			Width:   e.surface.Width,
			Height:  e.surface.Height,
			Anchor:  e.surface.Anchor,
			Border:  e.surface.Border,
			Content: e.content,
		})
	}
	s.mu.RUnlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Load appends the surfaces of a saved document. A surface whose id is
// already in the store is added under a fresh id. Unknown anchors load as
// left.
func (s *Store) Load(r io.Reader) (int, error) {
	var doc savedDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return 0, fmt.Errorf("load document: %w", err)
	}
	s.clock.Update(doc.Revision)
	n := 0
	for _, sv := range doc.Surfaces {
		if sv.ID == "" {
			sv.ID = uuid.NewString()
		}
		if sv.Width <= 0 || sv.Height <= 0 {
			state.Logger().Warn("document: skipping surface without a size", slog.String("surface", sv.ID))
			continue
		}
		s.insert(sv.ID, Config{Width: sv.Width, Height: sv.Height, Anchor: sv.Anchor, Border: sv.Border}, sv.Content)
		n++
	}
	return n, nil
}
