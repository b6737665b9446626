package resize

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"PencilBoard/internal/state"
)

type fakeBox struct {
	box     state.Rect
	anchor  state.Anchor
	preview []state.Rect
	setErr  error
}

type fakeHost map[string]*fakeBox

func (h fakeHost) ResolveHandle(target any) (string, Handle, bool) {
	t, ok := target.(struct {
		id string
		h  Handle
	})
	return t.id, t.h, ok
}

func (h fakeHost) BoundingBox(id string) (state.Rect, error) {
	b, ok := h[id]
	if !ok {
		return state.Rect{}, errors.New("no such surface")
	}
	return b.box, nil
}

func (h fakeHost) Anchor(id string) state.Anchor { return h[id].anchor }

func (h fakeHost) PreviewBoundingBox(id string, w, ht float64) {
	h[id].preview = append(h[id].preview, state.Rect{Width: w, Height: ht})
}

func (h fakeHost) SetBoundingBox(id string, w, ht float64) error {
	if h[id].setErr != nil {
		return h[id].setErr
	}
	h[id].box.Width, h[id].box.Height = w, ht
	return nil
}

func TestPropose(t *testing.T) {
	tests := []struct {
		name   string
		handle Handle
		anchor state.Anchor
		cur    state.Point
		w, h   float64
	}{
		// box at (50, 20), 100 x 80
		{"right +20 centered", BottomRight, state.AnchorCenter, state.Point{X: 170, Y: 100}, 140, 80},
		{"right +20 left anchored", BottomRight, state.AnchorLeft, state.Point{X: 170, Y: 100}, 120, 80},
		{"right -30", BottomRight, state.AnchorRight, state.Point{X: 120, Y: 100}, 70, 80},
		{"left -20", BottomLeft, state.AnchorLeft, state.Point{X: 30, Y: 100}, 120, 80},
		{"left -20 centered", BottomLeft, state.AnchorCenter, state.Point{X: 30, Y: 100}, 140, 80},
		{"left +10", BottomLeft, state.AnchorRight, state.Point{X: 60, Y: 100}, 90, 80},
		{"down +15", BottomRight, state.AnchorLeft, state.Point{X: 150, Y: 115}, 100, 95},
		{"up -30", BottomLeft, state.AnchorLeft, state.Point{X: 50, Y: 70}, 100, 50},
		{"crossed over", BottomRight, state.AnchorLeft, state.Point{X: 30, Y: 0}, 20, 20},
		{"rounded", BottomRight, state.AnchorLeft, state.Point{X: 150.4, Y: 100.6}, 100, 81},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := fakeHost{"s": {box: state.Rect{X: 50, Y: 20, Width: 100, Height: 80}}}
			r := NewResizer(host)
			if err := r.Begin("s", tt.handle); err != nil {
				t.Fatal(err)
			}
			s, _ := r.Session()
			w, h := s.Propose(tt.cur, tt.anchor)
			if w != tt.w || h != tt.h {
				t.Errorf("Propose(%v) = %v x %v, want %v x %v", tt.cur, w, h, tt.w, tt.h)
			}
		})
	}
}

func TestResizer_CenteredRightHandleScenario(t *testing.T) {
	host := fakeHost{"s": {box: state.Rect{X: 200, Y: 0, Width: 100, Height: 50}, anchor: state.AnchorCenter}}
	r := NewResizer(host)
	if err := r.Begin("s", BottomRight); err != nil {
		t.Fatal(err)
	}
	s, _ := r.Session()
	if s.Reference != (state.Point{X: 200, Y: 0}) {
		t.Errorf("reference = %v, want the top-left corner", s.Reference)
	}
	r.Update(state.Point{X: 320, Y: 50})
	s, _ = r.Session()
	if s.ProposedWidth != 140 || s.ProposedHeight != 50 {
		t.Errorf("proposed %v x %v, want 140 x 50", s.ProposedWidth, s.ProposedHeight)
	}
	if host["s"].box.Width != 100 {
		t.Error("Update committed the size")
	}
	if d := cmp.Diff([]state.Rect{{Width: 140, Height: 50}}, host["s"].preview); d != "" {
		t.Errorf("preview mismatch (-want +got):\n%s", d)
	}

	done, err := r.Commit()
	if err != nil {
		t.Fatal(err)
	}
	if done.ProposedWidth != 140 || host["s"].box.Width != 140 {
		t.Errorf("committed %v, box %v", done.ProposedWidth, host["s"].box)
	}
	if r.Dragging() {
		t.Error("still dragging after Commit")
	}
}

func TestResizer_LeftHandleReference(t *testing.T) {
	host := fakeHost{"s": {box: state.Rect{X: 10, Y: 20, Width: 100, Height: 50}}}
	r := NewResizer(host)
	_ = r.Begin("s", BottomLeft)
	s, _ := r.Session()
	if s.Reference != (state.Point{X: 110, Y: 20}) {
		t.Errorf("reference = %v, want the top-right corner", s.Reference)
	}
	if s.OriginalWidth != 100 || s.OriginalHeight != 50 {
		t.Errorf("original size %v x %v", s.OriginalWidth, s.OriginalHeight)
	}
}

func TestResizer_Cancel(t *testing.T) {
	host := fakeHost{"s": {box: state.Rect{Width: 100, Height: 50}}}
	r := NewResizer(host)
	_ = r.Begin("s", BottomRight)
	r.Update(state.Point{X: 180, Y: 90})
	r.Cancel()
	if r.Dragging() {
		t.Error("still dragging after Cancel")
	}
	if host["s"].box.Width != 100 || host["s"].box.Height != 50 {
		t.Errorf("Cancel committed %v", host["s"].box)
	}
	last := host["s"].preview[len(host["s"].preview)-1]
	if last != (state.Rect{Width: 100, Height: 50}) {
		t.Errorf("preview after cancel = %v, want the original size", last)
	}
	if _, err := r.Commit(); !errors.Is(err, ErrNotDragging) {
		t.Errorf("Commit after Cancel: %v", err)
	}
	r.Cancel()
}

func TestResizer_CommitErrorReverts(t *testing.T) {
	host := fakeHost{"s": {box: state.Rect{Width: 100, Height: 50}, setErr: errors.New("read-only")}}
	r := NewResizer(host)
	_ = r.Begin("s", BottomRight)
	r.Update(state.Point{X: 150, Y: 50})
	if _, err := r.Commit(); err == nil {
		t.Fatal("Commit succeeded")
	}
	last := host["s"].preview[len(host["s"].preview)-1]
	if last != (state.Rect{Width: 100, Height: 50}) {
		t.Errorf("preview = %v, want the original size", last)
	}
	if r.Dragging() {
		t.Error("failed commit left the drag open")
	}
}

func TestResizer_BeginUnknownSurface(t *testing.T) {
	r := NewResizer(fakeHost{})
	if err := r.Begin("ghost", BottomRight); err == nil {
		t.Error("Begin on an unknown surface succeeded")
	}
	if r.Dragging() {
		t.Error("dragging after failed Begin")
	}
	r.Update(state.Point{X: 1, Y: 1})
}

func TestParseHandle(t *testing.T) {
	for _, h := range []Handle{BottomLeft, BottomRight} {
		got, ok := ParseHandle(h.String())
		if !ok || got != h {
			t.Errorf("ParseHandle(%q) = %v, %v", h.String(), got, ok)
		}
	}
	if _, ok := ParseHandle("top-left"); ok {
		t.Error("top-left accepted")
	}
}
