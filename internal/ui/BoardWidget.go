package ui

import (
	"errors"
	"fmt"
	"image/color"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"PencilBoard/internal/board"
	raster "PencilBoard/internal/canvas"
	"PencilBoard/internal/document"
	"PencilBoard/internal/state"
	"PencilBoard/internal/surface"
)

var (
	borderColor  = color.NRGBA{R: 160, G: 160, B: 160, A: 255}
	activeColor  = color.NRGBA{R: 30, G: 120, B: 230, A: 255}
	previewColor = color.NRGBA{R: 30, G: 120, B: 230, A: 120}
	pageColor    = color.NRGBA{R: 245, G: 246, B: 248, A: 255}
)

// BoardWidget shows a document's surfaces and turns mouse input into
// pointer events for the board. The primary button draws and resizes; the
// secondary button and the scroll wheel pan.
type BoardWidget struct {
	widget.BaseWidget
	Board *board.Board
	Store *document.Store

	panX, panY float32
	panning    bool
	status     *widget.Label
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

// NewBoardWidget returns a widget over store. The store must draw on
// canvas rasters.
func NewBoardWidget(store *document.Store, opts ...board.Option) *BoardWidget {
	b := &BoardWidget{
		Board:  board.New(store, opts...),
		Store:  store,
		status: widget.NewLabel("Ready"),
	}
	b.ExtendBaseWidget(b)
	return b
}

// Status is the label the widget reports to.
func (b *BoardWidget) Status() *widget.Label { return b.status }

func (b *BoardWidget) SetStatus(text string) {
	b.status.SetText(text)
}

func (b *BoardWidget) pageEvent(pos fyne.Position) surface.Event {
	p := state.Point{X: float64(pos.X - b.panX), Y: float64(pos.Y - b.panY)}
	return surface.Event{Target: p, Pointer: surface.PointerMouse, Page: p}
}

// Insert adds a surface with the given configuration and shows it.
func (b *BoardWidget) Insert(cfg document.Config) string {
	id := b.Store.Insert(cfg)
	if err := b.Board.RenderFullHistory(id); err != nil {
		log.Printf("Could not draw new surface %s: %v", id, err)
	}
	b.SetStatus(fmt.Sprintf("Inserted surface %d", len(b.Store.IDs())))
	b.Refresh()
	return id
}

// SetActiveAnchor moves the active surface to the left, center or right.
func (b *BoardWidget) SetActiveAnchor(a state.Anchor) {
	id, ok := b.Board.Active()
	if !ok {
		b.SetStatus("Select a surface first")
		return
	}
	if err := b.Store.SetAnchor(id, a); err != nil {
		b.SetStatus(err.Error())
		return
	}
	b.Refresh()
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	switch e.Button {
	case desktop.MouseButtonPrimary:
		if err := b.Board.PointerDown(b.pageEvent(e.Position)); err != nil {
			if errors.Is(err, board.ErrBusy) {
				b.SetStatus("Busy, release the pointer first")
			}
			return
		}
	case desktop.MouseButtonSecondary:
		b.panning = true
	}
	b.Refresh()
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if b.panning {
		b.panning = false
		return
	}
	if e.Button == desktop.MouseButtonPrimary {
		b.Board.PointerUp(b.pageEvent(e.Position))
		b.Refresh()
	}
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if b.panning {
		b.panX += e.Dragged.DX
		b.panY += e.Dragged.DY
		b.Refresh()
		return
	}
	b.Board.PointerMove(b.pageEvent(e.Position))
	b.Refresh()
}

func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	b.panX += e.Scrolled.DX
	b.panY += e.Scrolled.DY
	b.Refresh()
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (b *BoardWidget) MouseOut()                      {}
func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}
func (b *BoardWidget) DragEnd()                       {}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: b}
	r.background = canvas.NewRectangle(pageColor)
	return r
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
}

func (r *boardWidgetRenderer) rect(box state.Rect, fill, stroke color.Color, width float32) *canvas.Rectangle {
	b := r.board
	rc := canvas.NewRectangle(fill)
	rc.StrokeColor = stroke
	rc.StrokeWidth = width
	rc.Move(fyne.NewPos(float32(box.X)+b.panX, float32(box.Y)+b.panY))
	rc.Resize(fyne.NewSize(float32(box.Width), float32(box.Height)))
	return rc
}

// Objects lays out one image per surface, with its border, and the resize
// handles and preview of the active surface.
func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	b := r.board
	objects := []fyne.CanvasObject{r.background}
	for _, sf := range b.Store.Surfaces() {
		box := sf.Box()
		objects = append(objects, r.rect(box, color.White, color.Transparent, 0))

		if ctx, err := b.Store.DrawingContext(sf.ID); err == nil {
			if rs, ok := ctx.(*raster.Raster); ok {
				img := canvas.NewImageFromImage(rs.Image())
				img.FillMode = canvas.ImageFillStretch
				img.Move(fyne.NewPos(float32(box.X)+b.panX, float32(box.Y)+b.panY))
				img.Resize(fyne.NewSize(float32(box.Width), float32(box.Height)))
				objects = append(objects, img)
			}
		}

		switch {
		case sf.Active:
			objects = append(objects, r.rect(box, color.Transparent, activeColor, 2))
			left, right := document.HandleBoxes(box)
			objects = append(objects,
				r.rect(left, activeColor, color.White, 1),
				r.rect(right, activeColor, color.White, 1))
		case sf.Border:
			objects = append(objects, r.rect(box, color.Transparent, borderColor, 1))
		}
		if p, ok := b.Store.Preview(sf.ID); ok {
			objects = append(objects, r.rect(p, color.Transparent, previewColor, 2))
		}
	}
	return objects
}

func (r *boardWidgetRenderer) Refresh() {
	canvas.Refresh(r.board)
}

func (r *boardWidgetRenderer) Destroy() {}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}
