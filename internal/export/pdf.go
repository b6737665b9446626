// Package export writes documents out as PDF pages or PNG images.
package export

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"

	"github.com/jung-kurt/gofpdf"

	"PencilBoard/internal/canvas"
	"PencilBoard/internal/pen"
	"PencilBoard/internal/state"
)

const (
	pageWidthMM  = 210.0
	pageHeightMM = 297.0
)

// Options control the PDF layout.
type Options struct {
	// PageWidth is the document width in pixels mapped onto the A4 width.
	PageWidth float64
	Renderer  *pen.Renderer
	// Compress enables stream compression.
	Compress bool
}

func (o Options) scale() float64 {
	if o.PageWidth <= 0 {
		return pageWidthMM / 800
	}
	return pageWidthMM / o.PageWidth
}

func (o Options) renderer() *pen.Renderer {
	if o.Renderer == nil {
		return pen.NewRenderer()
	}
	return o.Renderer
}

// pdfContext draws a surface onto a PDF page. Surface pixels are mapped to
// millimetres by scale and shifted to the surface's place on the page.
type pdfContext struct {
	pdf    *gofpdf.Fpdf
	ox, oy float64
	scale  float64
}

var _ pen.Context = (*pdfContext)(nil)

func (c *pdfContext) x(v float64) float64 { return c.ox + v*c.scale }
func (c *pdfContext) y(v float64) float64 { return c.oy + v*c.scale }

func (c *pdfContext) BeginPath() {}

func (c *pdfContext) MoveTo(x, y float64) { c.pdf.MoveTo(c.x(x), c.y(y)) }

func (c *pdfContext) LineTo(x, y float64) { c.pdf.LineTo(c.x(x), c.y(y)) }

func (c *pdfContext) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	c.pdf.CurveBezierCubicTo(c.x(c1x), c.y(c1y), c.x(c2x), c.y(c2y), c.x(x), c.y(y))
}

func (c *pdfContext) Stroke() error {
	c.pdf.DrawPath("D")
	return c.pdf.Error()
}

func (c *pdfContext) SetLineWidth(w float64) { c.pdf.SetLineWidth(w * c.scale) }

func (c *pdfContext) SetStrokeColor(name string) {
	col, err := canvas.ParseColor(name)
	if err != nil {
		state.Logger().Warn("export: drawing in black", slog.Any("error", err))
		col = color.Black
	}
	n := color.NRGBAModel.Convert(col).(color.NRGBA)
	c.pdf.SetDrawColor(int(n.R), int(n.G), int(n.B))
}

// ClearRect paints the rectangle white, the PDF page color.
func (c *pdfContext) ClearRect(x, y, w, h float64) {
	c.pdf.SetFillColor(255, 255, 255)
	c.pdf.Rect(c.x(x), c.y(y), w*c.scale, h*c.scale, "F")
}

// placement is where a surface lands in the PDF, in millimetres.
type placement struct {
	page int
	x, y float64
}

// place keeps the document layout and starts a new page for a surface that
// does not fit below the previous one.
func place(surfaces []state.Surface, scale float64) []placement {
	out := make([]placement, len(surfaces))
	page, pageTop := 0, 0.0
	for i, s := range surfaces {
		top := (s.Y - pageTop) * scale
		if i > 0 && top+s.Height*scale > pageHeightMM {
			page++
			pageTop = s.Y
			top = 0
		}
		out[i] = placement{page: page, x: s.X * scale, y: top}
	}
	return out
}

// PDF writes surfaces to w on A4 pages, laid out the way the document lays
// them out. A surface that does not fit below the previous one starts a new
// page.
func PDF(w io.Writer, surfaces []state.Surface, opts Options) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(opts.Compress)
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	pdf.AddPage()

	scale := opts.scale()
	r := opts.renderer()
	page := 0
	for i, pl := range place(surfaces, scale) {
		s := surfaces[i]
		if pl.page != page {
			pdf.AddPage()
			page = pl.page
		}
		ctx := &pdfContext{pdf: pdf, ox: pl.x, oy: pl.y, scale: scale}
		if s.Border {
			pdf.SetDrawColor(160, 160, 160)
			pdf.SetLineWidth(0.2)
			pdf.Rect(ctx.ox, ctx.oy, s.Width*scale, s.Height*scale, "D")
		}
		if err := r.RenderHistory(ctx, s.History); err != nil {
			state.Logger().Warn("export: surface partly drawn",
				slog.String("surface", s.ID), slog.Any("error", err))
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export pdf: %w", err)
	}
	return nil
}

// PDFFile writes the PDF to path.
func PDFFile(path string, surfaces []state.Surface, opts Options) error {
	return writeFile(path, func(w io.Writer) error {
		return PDF(w, surfaces, opts)
	})
}
