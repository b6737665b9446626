// Package pen captures pointer samples into stroke segments and draws them.
//
// Drawing goes through Context, a small canvas-like interface. The raster
// backend lives in internal/canvas, the PDF backend in internal/export and
// the network backend, which records operations for a remote canvas, in
// internal/net.
package pen

// Context is the 2D drawing context of one surface.
type Context interface {
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	CubicTo(c1x, c1y, c2x, c2y, x, y float64)
	Stroke() error
	SetStrokeColor(color string)
	SetLineWidth(width float64)
	ClearRect(x, y, width, height float64)
}
