package board

import (
	"log/slog"
	"time"

	"PencilBoard/internal/pen"
	"PencilBoard/internal/state"
)

// Option configures a Board.
type Option func(*Board)

// WithMinDistance sets the squared distance, in px², a pointer sample must
// move before it is recorded.
func WithMinDistance(d2 float64) Option {
	return func(b *Board) {
		b.minDist2 = d2
	}
}

// WithControlFraction sets the share of the secant used for Bezier control
// points.
func WithControlFraction(f float64) Option {
	return func(b *Board) {
		b.renderer.ControlFraction = f
	}
}

// WithInterpolation selects how full redraws join segment points.
func WithInterpolation(i pen.Interpolation) Option {
	return func(b *Board) {
		b.renderer.Interpolation = i
	}
}

// WithRedrawPeriod sets the minimum time between two full redraws.
func WithRedrawPeriod(d time.Duration) Option {
	return func(b *Board) {
		b.redrawPeriod = d
	}
}

// WithLogger sets the logger of the drawing engine.
func WithLogger(l *slog.Logger) Option {
	return func(b *Board) {
		state.SetLogger(l)
	}
}
