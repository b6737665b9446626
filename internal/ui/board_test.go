package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	raster "PencilBoard/internal/canvas"
	"PencilBoard/internal/document"
	"PencilBoard/internal/state"
)

func press(x, y float32) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	}
}

func drag(x, y float32) *fyne.DragEvent {
	return &fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}}
}

func newTestWidget(t *testing.T) (*BoardWidget, string) {
	t.Helper()
	test.NewTempApp(t)
	store := document.NewStore(raster.Factory)
	b := NewBoardWidget(store)
	id := b.Insert(document.Config{Width: 200, Height: 100, Anchor: state.AnchorLeft})
	return b, id
}

func TestBoardWidget_DrawAndSave(t *testing.T) {
	b, id := newTestWidget(t)

	b.MouseDown(press(30, 30))
	for _, x := range []float32{40, 50, 60, 70} {
		b.Dragged(drag(x, 30))
	}
	b.MouseUp(press(70, 30))
	if active, ok := b.Board.Active(); !ok || active != id {
		t.Fatalf("active = %q, %v", active, ok)
	}

	ctx, err := b.Store.DrawingContext(id)
	if err != nil {
		t.Fatal(err)
	}
	// the stroke runs along y = 10 in surface coordinates
	if _, _, _, a := ctx.(*raster.Raster).Image().At(30, 10).RGBA(); a == 0 {
		t.Error("live stroke not drawn on the raster")
	}

	b.MouseDown(press(700, 500))
	raw, _ := b.Store.LoadHistory(id)
	h, err := state.Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(h) != 1 || len(h[0].Points) != 5 {
		t.Errorf("saved history = %+v", h)
	}
}

func TestBoardWidget_PanShiftsPagePositions(t *testing.T) {
	b, id := newTestWidget(t)
	secondary := press(0, 0)
	secondary.Button = desktop.MouseButtonSecondary
	b.MouseDown(secondary)
	b.Dragged(&fyne.DragEvent{Dragged: fyne.NewDelta(100, 0)})
	b.MouseUp(secondary)

	// the surface now starts at x = 120 on screen
	b.MouseDown(press(50, 30))
	if _, ok := b.Board.Active(); ok {
		t.Error("press left of the panned surface activated it")
	}
	b.MouseDown(press(130, 30))
	if active, ok := b.Board.Active(); !ok || active != id {
		t.Errorf("active = %q, %v", active, ok)
	}
}

func TestBoardWidget_RendererShowsHandlesOnActive(t *testing.T) {
	b, _ := newTestWidget(t)
	r := test.WidgetRenderer(b)
	idle := len(r.Objects())

	b.MouseDown(press(30, 30))
	b.MouseUp(press(30, 30))
	active := len(r.Objects())
	// the active frame and its two handles
	if active != idle+3 {
		t.Errorf("objects = %d, want %d", active, idle+3)
	}
}

func TestBoardWidget_SetActiveAnchor(t *testing.T) {
	b, id := newTestWidget(t)
	b.SetActiveAnchor(state.AnchorRight)
	if b.Store.Anchor(id) != state.AnchorLeft {
		t.Error("anchor changed without an active surface")
	}
	b.MouseDown(press(30, 30))
	b.MouseUp(press(30, 30))
	b.SetActiveAnchor(state.AnchorRight)
	if b.Store.Anchor(id) != state.AnchorRight {
		t.Errorf("anchor = %q", b.Store.Anchor(id))
	}
}
