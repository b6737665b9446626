// Package canvas draws strokes into pixel buffers with gogpu/gg.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/colornames"

	"PencilBoard/internal/pen"
	"PencilBoard/internal/state"
)

var ErrUnknownColor = errors.New("unknown color")

// SetLogger forwards l to gg so rasterizer diagnostics end up in the same
// log as the drawing engine.
func SetLogger(l *slog.Logger) {
	gg.SetLogger(l)
}

// ParseColor understands CSS color names and #rgb, #rgba, #rrggbb and
// #rrggbbaa hex notation.
func ParseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		switch len(hex) {
		case 3, 4, 6, 8:
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownColor, s)
		}
		if strings.Trim(hex, "0123456789abcdef") != "" {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColor, s)
		}
		return gg.Hex(hex).Color(), nil
	}
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownColor, s)
}

// Raster is a pen.Context backed by a gg pixel buffer. It is the drawing
// target of one surface.
type Raster struct {
	dc *gg.Context
}

var _ pen.Context = (*Raster)(nil)

// NewRaster returns a transparent raster of the given size.
func NewRaster(width, height int) *Raster {
	dc := gg.NewContext(max(width, 1), max(height, 1))
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.SetColor(color.Black)
	return &Raster{dc: dc}
}

// Factory creates rasters for a document store.
func Factory(_ string, width, height int) pen.Context {
	return NewRaster(width, height)
}

func (r *Raster) BeginPath() { r.dc.ClearPath() }

func (r *Raster) MoveTo(x, y float64) { r.dc.MoveTo(x, y) }

func (r *Raster) LineTo(x, y float64) { r.dc.LineTo(x, y) }

func (r *Raster) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	r.dc.CubicTo(c1x, c1y, c2x, c2y, x, y)
}

func (r *Raster) Stroke() error { return r.dc.Stroke() }

func (r *Raster) SetLineWidth(w float64) { r.dc.SetLineWidth(w) }

// SetStrokeColor sets the stroke color by name. Unknown colors draw black.
func (r *Raster) SetStrokeColor(name string) {
	c, err := ParseColor(name)
	if err != nil {
		state.Logger().Warn("canvas: drawing in black", slog.Any("error", err))
		c = color.Black
	}
	r.dc.SetColor(c)
}

// ClearRect makes the pixels of a rectangle transparent.
func (r *Raster) ClearRect(x, y, w, h float64) {
	x0 := max(int(math.Floor(x)), 0)
	y0 := max(int(math.Floor(y)), 0)
	x1 := min(int(math.Ceil(x+w)), r.dc.Width())
	y1 := min(int(math.Ceil(y+h)), r.dc.Height())
	if x0 == 0 && y0 == 0 && x1 == r.dc.Width() && y1 == r.dc.Height() {
		r.dc.Clear()
		return
	}
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			r.dc.SetPixel(px, py, gg.Transparent)
		}
	}
}

// Resize changes the raster size. The content is lost.
func (r *Raster) Resize(width, height int) error {
	if err := r.dc.Resize(width, height); err != nil {
		return fmt.Errorf("canvas: %w", err)
	}
	return nil
}

func (r *Raster) Width() int { return r.dc.Width() }

func (r *Raster) Height() int { return r.dc.Height() }

// Image returns a snapshot of the pixels.
func (r *Raster) Image() image.Image { return r.dc.Image() }

// EncodePNG writes the pixels as PNG.
func (r *Raster) EncodePNG(w io.Writer) error { return r.dc.EncodePNG(w) }
