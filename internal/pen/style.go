package pen

import (
	"errors"
	"fmt"

	"PencilBoard/internal/state"
)

var (
	ErrInvalidStepType      = errors.New("invalid step type")
	ErrInvalidInterpolation = errors.New("invalid interpolation")
	ErrInvalidWidthName     = errors.New("invalid stroke width name")
)

// DefaultWidth is the line width used for unknown width names.
const DefaultWidth = 1

var widthByName = map[string]float64{
	"thin":   2,
	"medium": 5,
	"thick":  10,
	"xthick": 15,
}

// WidthByName returns the pixel width of a stroke width class. Unknown names
// give DefaultWidth and an error wrapping ErrInvalidWidthName.
func WidthByName(name string) (float64, error) {
	if w, ok := widthByName[name]; ok {
		return w, nil
	}
	return DefaultWidth, fmt.Errorf("%w: %q", ErrInvalidWidthName, name)
}

// Style is applied to newly created segments.
type Style struct {
	Color    string
	Width    float64
	StepType state.StepType
}

// DefaultStyle is black, medium, smoothed.
func DefaultStyle() Style {
	return Style{Color: "black", Width: 5, StepType: state.StepBezier}
}

// Interpolation selects how full redraws join the points of a segment.
type Interpolation int

const (
	// InterpolationBezier smooths every segment.
	InterpolationBezier Interpolation = iota
	// InterpolationLine draws every segment as a polyline.
	InterpolationLine
	// InterpolationMixed follows each segment's own step type.
	InterpolationMixed
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationLine:
		return "line"
	case InterpolationBezier:
		return "bezier"
	case InterpolationMixed:
		return "mixed"
	}
	return fmt.Sprintf("Interpolation(%d)", int(i))
}

// ParseInterpolation maps "line", "bezier" or "mixed" to an Interpolation.
// Anything else gives InterpolationBezier and an error wrapping
// ErrInvalidInterpolation.
func ParseInterpolation(name string) (Interpolation, error) {
	switch name {
	case "line":
		return InterpolationLine, nil
	case "bezier":
		return InterpolationBezier, nil
	case "mixed":
		return InterpolationMixed, nil
	}
	return InterpolationBezier, fmt.Errorf("%w: %q", ErrInvalidInterpolation, name)
}

// ParseStepType maps "L" or "B" to a step type.
func ParseStepType(name string) (state.StepType, error) {
	st := state.StepType(name)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStepType, name)
	}
	return st, nil
}
