package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"

	"PencilBoard/internal/document"
)

// RunApp opens the desktop editor on b and blocks until it is closed.
func RunApp(b *BoardWidget, defaults document.Config) {
	myApp := app.New()
	myWindow := myApp.NewWindow("PencilBoard")
	myWindow.Resize(fyne.NewSize(1024, 768))

	if err := b.Board.RenderAll(); err != nil {
		b.SetStatus("Some surfaces could not be drawn")
	}
	toolbar := NewToolbar(b, defaults, myWindow)
	content := container.NewBorder(toolbar, b.Status(), nil, nil, b)

	myWindow.SetContent(content)
	myWindow.SetOnClosed(b.Board.Close)
	myWindow.ShowAndRun()
}
