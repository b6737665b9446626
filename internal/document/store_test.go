package document

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"PencilBoard/internal/pen"
	"PencilBoard/internal/pen/pentest"
	"PencilBoard/internal/resize"
	"PencilBoard/internal/state"
)

func newTestStore() (*Store, map[string]*pentest.Context) {
	ctxs := map[string]*pentest.Context{}
	s := NewStore(func(id string, w, h int) pen.Context {
		c := &pentest.Context{}
		ctxs[id] = c
		return c
	})
	return s, ctxs
}

func TestStore_LayoutStacksAndAnchors(t *testing.T) {
	s, _ := newTestStore()
	a := s.Insert(Config{Width: 200, Height: 100, Anchor: state.AnchorLeft})
	b := s.Insert(Config{Width: 400, Height: 50, Anchor: state.AnchorCenter})
	c := s.Insert(Config{Width: 100, Height: 80, Anchor: state.AnchorRight})

	tests := []struct {
		id   string
		want state.Rect
	}{
		{a, state.Rect{X: 20, Y: 20, Width: 200, Height: 100}},
		{b, state.Rect{X: 200, Y: 140, Width: 400, Height: 50}},
		{c, state.Rect{X: 680, Y: 210, Width: 100, Height: 80}},
	}
	for _, tt := range tests {
		got, err := s.BoundingBox(tt.id)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("box of %s = %+v, want %+v", tt.id, got, tt.want)
		}
	}
	if d := cmp.Diff([]string{a, b, c}, s.IDs()); d != "" {
		t.Errorf("order mismatch (-want +got):\n%s", d)
	}
}

func TestStore_SetAnchorRelayouts(t *testing.T) {
	s, _ := newTestStore()
	id := s.Insert(Config{Width: 200, Height: 100})
	if s.Anchor(id) != state.AnchorLeft {
		t.Errorf("empty anchor = %q, want left", s.Anchor(id))
	}
	if err := s.SetAnchor(id, state.AnchorCenter); err != nil {
		t.Fatal(err)
	}
	box, _ := s.BoundingBox(id)
	if box.X != 300 {
		t.Errorf("centered x = %v, want 300", box.X)
	}
	if err := s.SetAnchor("ghost", state.AnchorLeft); !errors.Is(err, ErrNoSurface) {
		t.Errorf("SetAnchor(ghost) = %v", err)
	}
}

func TestStore_ResolveSurface(t *testing.T) {
	s, _ := newTestStore()
	a := s.Insert(Config{Width: 200, Height: 100})
	b := s.Insert(Config{Width: 200, Height: 100})

	tests := []struct {
		name   string
		target any
		want   string
		ok     bool
	}{
		{"inside first", state.Point{X: 50, Y: 50}, a, true},
		{"inside second", state.Point{X: 50, Y: 150}, b, true},
		{"gap between", state.Point{X: 50, Y: 130}, "", false},
		{"right of both", state.Point{X: 500, Y: 50}, "", false},
		{"by id", b, b, true},
		{"unknown id", "ghost", "", false},
		{"other type", 42, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.ResolveSurface(tt.target)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ResolveSurface(%v) = %q, %v, want %q, %v", tt.target, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestStore_ResolveHandleOnlyOnActive(t *testing.T) {
	s, _ := newTestStore()
	id := s.Insert(Config{Width: 200, Height: 100})
	// bottom-right corner is (220, 120)
	corner := state.Point{X: 222, Y: 118}

	if _, _, ok := s.ResolveHandle(corner); ok {
		t.Error("handle resolved on an inactive surface")
	}
	s.SetActive(id, true)
	got, h, ok := s.ResolveHandle(corner)
	if !ok || got != id || h != resize.BottomRight {
		t.Errorf("ResolveHandle = %q, %v, %v", got, h, ok)
	}
	_, h, ok = s.ResolveHandle(state.Point{X: 20, Y: 120})
	if !ok || h != resize.BottomLeft {
		t.Errorf("bottom-left corner = %v, %v", h, ok)
	}
	if _, _, ok := s.ResolveHandle(state.Point{X: 120, Y: 60}); ok {
		t.Error("surface middle resolved as a handle")
	}
	if _, _, ok := s.ResolveHandle(id); ok {
		t.Error("id resolved as a handle")
	}
}

func TestStore_LocalPoint(t *testing.T) {
	s, _ := newTestStore()
	id := s.Insert(Config{Width: 200, Height: 100})
	got := s.LocalPoint(id, state.Point{X: 25, Y: 40})
	if got != (state.Point{X: 5, Y: 20}) {
		t.Errorf("LocalPoint = %v", got)
	}
}

func TestStore_SaveTicksAndNotifies(t *testing.T) {
	s, _ := newTestStore()
	id := s.Insert(Config{Width: 10, Height: 10})
	var changes []Change
	s.OnChange = func(c Change) { changes = append(changes, c) }

	before := s.Revision()
	if err := s.SaveHistory(id, "[]"); err != nil {
		t.Fatal(err)
	}
	raw, err := s.LoadHistory(id)
	if err != nil || raw != "[]" {
		t.Errorf("LoadHistory = %q, %v", raw, err)
	}
	want := []Change{{Kind: ContentSaved, Surface: id, Content: "[]", Revision: before + 1}}
	if d := cmp.Diff(want, changes); d != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", d)
	}
	if err := s.SaveHistory("ghost", "[]"); !errors.Is(err, ErrNoSurface) {
		t.Errorf("SaveHistory(ghost) = %v", err)
	}
}

func TestStore_DrawingContextIsCached(t *testing.T) {
	s, ctxs := newTestStore()
	id := s.Insert(Config{Width: 10, Height: 10})
	c1, err := s.DrawingContext(id)
	if err != nil {
		t.Fatal(err)
	}
	c2, _ := s.DrawingContext(id)
	if c1 != c2 || len(ctxs) != 1 {
		t.Error("DrawingContext created a second context")
	}

	bare := NewStore(nil)
	id = bare.Insert(Config{Width: 10, Height: 10})
	if _, err := bare.DrawingContext(id); !errors.Is(err, ErrNoContext) {
		t.Errorf("DrawingContext without factory = %v", err)
	}
}

type resizableContext struct {
	pentest.Context
	sizes [][2]int
}

func (c *resizableContext) Resize(w, h int) error {
	c.sizes = append(c.sizes, [2]int{w, h})
	return nil
}

func TestStore_PreviewAndCommit(t *testing.T) {
	rc := &resizableContext{}
	s := NewStore(func(string, int, int) pen.Context { return rc })
	id := s.Insert(Config{Width: 100, Height: 50, Anchor: state.AnchorCenter})
	next := s.Insert(Config{Width: 100, Height: 50})
	if _, err := s.DrawingContext(id); err != nil {
		t.Fatal(err)
	}

	s.PreviewBoundingBox(id, 140, 50)
	p, ok := s.Preview(id)
	if !ok || p.Width != 140 {
		t.Errorf("Preview = %+v, %v", p, ok)
	}
	if box, _ := s.BoundingBox(id); box.Width != 100 {
		t.Errorf("preview changed the committed box: %+v", box)
	}
	s.PreviewBoundingBox(id, 100, 50)
	if _, ok := s.Preview(id); ok {
		t.Error("previewing the committed size kept a preview")
	}

	if err := s.SetBoundingBox(id, 140, 90); err != nil {
		t.Fatal(err)
	}
	box, _ := s.BoundingBox(id)
	if box != (state.Rect{X: 330, Y: 20, Width: 140, Height: 90}) {
		t.Errorf("committed box = %+v", box)
	}
	if nb, _ := s.BoundingBox(next); nb.Y != 130 {
		t.Errorf("following surface y = %v, want 130", nb.Y)
	}
	if d := cmp.Diff([][2]int{{140, 90}}, rc.sizes); d != "" {
		t.Errorf("context resizes mismatch (-want +got):\n%s", d)
	}
	if err := s.SetBoundingBox(id, 0, 10); err == nil {
		t.Error("zero width accepted")
	}
}

func TestStore_SaveLoad(t *testing.T) {
	s, _ := newTestStore()
	a := s.Insert(Config{Width: 200, Height: 100, Anchor: state.AnchorRight, Border: true})
	_ = s.SaveHistory(a, `[{!width!:5,!color!:!red!,!stepType!:!L!,!pts!:[{!x!:1,!y!:2}]}]`)
	s.Insert(Config{Width: 50, Height: 60})

	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		t.Fatal(err)
	}

	loaded := NewStore(nil)
	n, err := loaded.Load(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("loaded %d surfaces, want 2", n)
	}
	if loaded.Revision() < s.Revision() {
		t.Errorf("revision went back: %d < %d", loaded.Revision(), s.Revision())
	}
	ignoreActive := cmpopts.IgnoreFields(state.Surface{}, "Active")
	if d := cmp.Diff(s.Surfaces(), loaded.Surfaces(), ignoreActive, cmpopts.EquateEmpty()); d != "" {
		t.Errorf("surfaces mismatch (-saved +loaded):\n%s", d)
	}
	sf, _ := loaded.Surface(a)
	if len(sf.History) != 1 || sf.History[0].Color != "red" {
		t.Errorf("decoded history = %+v", sf.History)
	}
}

func TestStore_LoadErrors(t *testing.T) {
	s := NewStore(nil)
	if _, err := s.Load(bytes.NewBufferString("{")); err == nil {
		t.Error("truncated document accepted")
	}
	n, err := s.Load(bytes.NewBufferString(`{"surfaces":[{"id":"x","width":0,"height":5}]}`))
	if err != nil || n != 0 {
		t.Errorf("Load = %d, %v, want the sizeless surface skipped", n, err)
	}
}

func TestStore_Remove(t *testing.T) {
	s, _ := newTestStore()
	a := s.Insert(Config{Width: 10, Height: 10})
	b := s.Insert(Config{Width: 10, Height: 10})
	if err := s.Remove(a); err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]string{b}, s.IDs()); d != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", d)
	}
	if box, _ := s.BoundingBox(b); box.Y != Margin {
		t.Errorf("remaining surface y = %v, want %v", box.Y, Margin)
	}
	if err := s.Remove(a); !errors.Is(err, ErrNoSurface) {
		t.Errorf("second Remove = %v", err)
	}
}

func TestStore_LoadTakenIDs(t *testing.T) {
	src := NewStore(nil)
	src.Insert(Config{Width: 200, Height: 100})
	var buf bytes.Buffer
	if err := src.Save(&buf); err != nil {
		t.Fatal(err)
	}
	saved := buf.String()

	s, _ := newTestStore()
	for range 2 {
		if _, err := s.Load(bytes.NewBufferString(saved)); err != nil {
			t.Fatal(err)
		}
	}
	ids := s.IDs()
	if len(ids) != 2 || ids[0] == ids[1] {
		t.Fatalf("ids after loading twice = %v, want two distinct", ids)
	}
	s.SetActive(ids[0], true)
	ctx, err := s.DrawingContext(ids[0])
	if err != nil {
		t.Fatal(err)
	}

	// a third load leaves the active surface and its context alone
	if _, err := s.Load(bytes.NewBufferString(saved)); err != nil {
		t.Fatal(err)
	}
	if sf, _ := s.Surface(ids[0]); !sf.Active {
		t.Error("loading a taken id cleared the active flag")
	}
	if again, _ := s.DrawingContext(ids[0]); again != ctx {
		t.Error("loading a taken id replaced the drawing context")
	}

	for _, id := range s.IDs() {
		if err := s.Remove(id); err != nil {
			t.Fatalf("Remove(%s) = %v", id, err)
		}
	}
	if n := len(s.Surfaces()); n != 0 {
		t.Errorf("%d surfaces left after removing all", n)
	}
}

func TestStore_UnknownAnchor(t *testing.T) {
	s, _ := newTestStore()
	n, err := s.Load(bytes.NewBufferString(`{"surfaces":[{"id":"x","width":10,"height":10,"anchor":"diagonal"}]}`))
	if err != nil || n != 1 {
		t.Fatalf("Load = %d, %v", n, err)
	}
	if a := s.Anchor("x"); a != state.AnchorLeft {
		t.Errorf("Anchor = %q, want left", a)
	}
	if err := s.SetAnchor("x", "diagonal"); !errors.Is(err, ErrUnknownAnchor) {
		t.Errorf("SetAnchor(diagonal) = %v", err)
	}
	if a := s.Anchor("x"); a != state.AnchorLeft {
		t.Errorf("Anchor after rejected SetAnchor = %q", a)
	}
}
