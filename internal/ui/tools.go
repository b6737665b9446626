package ui

import (
	"fmt"
	"image/color"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"golang.org/x/image/colornames"

	"PencilBoard/internal/document"
	"PencilBoard/internal/export"
	"PencilBoard/internal/state"
)

// palette lists the swatches by the CSS name stored with each segment.
var palette = []string{"black", "red", "green", "blue", "gold"}

type colorSwatch struct {
	widget.BaseWidget
	Name     string
	Color    color.Color
	OnTapped func(name string)
}

func newColorSwatch(name string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Name: name, Color: colornames.Map[name], OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Name)
	}
}

// NewToolbar returns the tool, color, width and document controls of b.
func NewToolbar(b *BoardWidget, defaults document.Config, win fyne.Window) fyne.CanvasObject {
	setMode := func(name string) func() {
		return func() {
			if err := b.Board.OnModeChange(name); err != nil {
				b.SetStatus(err.Error())
				return
			}
			b.SetStatus("Tool: " + name)
		}
	}
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), setMode("freePen")),
		widget.NewToolbarAction(theme.ContentRemoveIcon(), setMode("straightLine")),
		widget.NewToolbarAction(theme.DeleteIcon(), setMode("erase")),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentAddIcon(), func() { b.Insert(defaults) }),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() { saveDialog(b, win) }),
		widget.NewToolbarAction(theme.FolderOpenIcon(), func() { openDialog(b, win) }),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), func() { exportDialog(b, win) }),
	)

	onColorTapped := func(name string) {
		if err := b.Board.OnColorChange(name); err != nil {
			b.SetStatus(err.Error())
		}
	}
	colorBox := container.NewHBox()
	for _, name := range palette {
		colorBox.Add(newColorSwatch(name, onColorTapped))
	}

	width := widget.NewSelect([]string{"thin", "medium", "thick", "xthick"}, func(name string) {
		if err := b.Board.OnStrokeWidthChange(name); err != nil {
			b.SetStatus(err.Error())
		}
	})
	width.SetSelected("medium")

	step := widget.NewRadioGroup([]string{"B", "L"}, func(name string) {
		if name == "" {
			return
		}
		if err := b.Board.OnStepTypeChange(name); err != nil {
			b.SetStatus(err.Error())
		}
	})
	step.Horizontal = true
	step.SetSelected("B")

	anchor := widget.NewSelect([]string{"left", "center", "right"}, func(name string) {
		if a, ok := state.ParseAnchor(name); ok {
			b.SetActiveAnchor(a)
		}
	})
	anchor.PlaceHolder = "Position"

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		container.New(layout.NewGridWrapLayout(fyne.NewSize(110, 35)), width),
		step,
		widget.NewSeparator(),
		container.New(layout.NewGridWrapLayout(fyne.NewSize(110, 35)), anchor),
		layout.NewSpacer(),
	)
}

func saveDialog(b *BoardWidget, win fyne.Window) {
	// the active surface is written back first so the file has its strokes
	b.Board.Close()
	dialog.ShowFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil || w == nil {
			return
		}
		defer func() {
			if err := w.Close(); err != nil {
				log.Printf("Error closing writer: %v", err)
			}
		}()
		if err := b.Store.Save(w); err != nil {
			log.Printf("Save failed: %v", err)
			b.SetStatus("Error saving file")
			return
		}
		b.SetStatus("Saved " + w.URI().Name())
	}, win)
	b.Refresh()
}

func openDialog(b *BoardWidget, win fyne.Window) {
	dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil || r == nil {
			return
		}
		defer func() {
			if err := r.Close(); err != nil {
				log.Printf("Error closing reader: %v", err)
			}
		}()
		n, err := b.Store.Load(r)
		if err != nil {
			log.Printf("Load failed: %v", err)
			b.SetStatus("Error parsing file - invalid format")
			return
		}
		if err := b.Board.RenderAll(); err != nil {
			log.Printf("Some surfaces could not be drawn: %v", err)
		}
		b.SetStatus(fmt.Sprintf("Loaded %d surfaces", n))
		b.Refresh()
	}, win)
}

func exportDialog(b *BoardWidget, win fyne.Window) {
	b.Board.Close()
	dialog.ShowFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil || w == nil {
			return
		}
		defer w.Close()
		opts := export.Options{Renderer: b.Board.Renderer(), Compress: true}
		if err := export.PDF(w, b.Store.Surfaces(), opts); err != nil {
			log.Printf("Export failed: %v", err)
			b.SetStatus("Error exporting PDF")
			return
		}
		b.SetStatus("Exported " + w.URI().Name())
	}, win)
	b.Refresh()
}
