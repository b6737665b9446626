package pen

import (
	"errors"
	"fmt"
	"log/slog"

	"PencilBoard/internal/state"
)

// DefaultControlFraction is the share of the secant used to place Bezier
// control points.
const DefaultControlFraction = 0.3

// Curve is one cubic Bezier piece of a smoothed segment.
type Curve struct {
	C1, C2, To state.Point
}

// BezierCurves returns the interior curves of a smoothed polyline through
// pts. For every window p[i..i+3] the curve runs from p[i+1] to p[i+2]; its
// control points follow the secants p[i+2]-p[i] and p[i+1]-p[i+3], scaled by
// fraction. Fewer than four points give no curves.
func BezierCurves(pts []state.Point, fraction float64) []Curve {
	if len(pts) < 4 {
		return nil
	}
	curves := make([]Curve, 0, len(pts)-3)
	for i := 0; i < len(pts)-3; i++ {
		p1, p2, p3, p4 := pts[i], pts[i+1], pts[i+2], pts[i+3]
		v1 := state.Vector(p1, p3) // tangent at p2
		v2 := state.Vector(p4, p2) // tangent at p3
		curves = append(curves, Curve{
			C1: p2.Add(v1.Mul(fraction)),
			C2: p3.Add(v2.Mul(fraction)),
			To: p3,
		})
	}
	return curves
}

// Renderer draws segments onto a Context.
type Renderer struct {
	Interpolation   Interpolation
	ControlFraction float64
}

// NewRenderer returns a renderer smoothing with the default control fraction.
func NewRenderer() *Renderer {
	return &Renderer{
		Interpolation:   InterpolationBezier,
		ControlFraction: DefaultControlFraction,
	}
}

// DrawIncremental draws the straight piece between two consecutive samples.
// It is live feedback only; the stored segment is redrawn by RenderHistory.
func (r *Renderer) DrawIncremental(ctx Context, from, to state.Point, style Style) error {
	ctx.SetStrokeColor(style.Color)
	ctx.SetLineWidth(style.Width)
	ctx.BeginPath()
	ctx.MoveTo(from.X, from.Y)
	ctx.LineTo(to.X, to.Y)
	return ctx.Stroke()
}

// RenderSegmentLine draws seg as a polyline.
func (r *Renderer) RenderSegmentLine(ctx Context, seg state.Segment) error {
	if len(seg.Points) < 2 {
		return nil
	}
	ctx.SetStrokeColor(seg.Color)
	ctx.SetLineWidth(seg.Width)
	ctx.BeginPath()
	ctx.MoveTo(seg.Points[0].X, seg.Points[0].Y)
	for _, p := range seg.Points[1:] {
		ctx.LineTo(p.X, p.Y)
	}
	return ctx.Stroke()
}

// RenderSegmentBezier draws seg with straight first and last pieces and
// cubic curves in between.
func (r *Renderer) RenderSegmentBezier(ctx Context, seg state.Segment) error {
	pts := seg.Points
	if len(pts) < 2 {
		return nil
	}
	ctx.SetStrokeColor(seg.Color)
	ctx.SetLineWidth(seg.Width)
	ctx.BeginPath()
	ctx.MoveTo(pts[0].X, pts[0].Y)
	ctx.LineTo(pts[1].X, pts[1].Y)
	for _, c := range BezierCurves(pts, r.fraction()) {
		ctx.CubicTo(c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.To.X, c.To.Y)
	}
	last := pts[len(pts)-1]
	ctx.LineTo(last.X, last.Y)
	return ctx.Stroke()
}

func (r *Renderer) fraction() float64 {
	if r.ControlFraction == 0 {
		return DefaultControlFraction
	}
	return r.ControlFraction
}

// RenderSegment draws one segment the way the renderer's interpolation asks.
func (r *Renderer) RenderSegment(ctx Context, seg state.Segment) error {
	switch r.Interpolation {
	case InterpolationLine:
		return r.RenderSegmentLine(ctx, seg)
	case InterpolationMixed:
		switch seg.StepType {
		case state.StepLine:
			return r.RenderSegmentLine(ctx, seg)
		case state.StepBezier:
			return r.RenderSegmentBezier(ctx, seg)
		}
		return fmt.Errorf("%w %q", ErrInvalidStepType, seg.StepType)
	default:
		return r.RenderSegmentBezier(ctx, seg)
	}
}

// RenderHistory draws every segment of h in order. It does not clear the
// context. A segment that cannot be drawn is logged and skipped; the rest
// are still drawn and the collected errors are returned.
func (r *Renderer) RenderHistory(ctx Context, h state.StrokeHistory) error {
	var errs []error
	for i, seg := range h {
		if err := r.RenderSegment(ctx, seg); err != nil {
			state.Logger().Warn("pen: skipping segment",
				slog.Int("segment", i),
				slog.String("interpolation", r.Interpolation.String()),
				slog.Any("error", err))
			errs = append(errs, fmt.Errorf("segment %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
