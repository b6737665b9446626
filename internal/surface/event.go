package surface

import (
	"fmt"

	"PencilBoard/internal/state"
)

// PointerType is the kind of device that produced a pointer event.
type PointerType int

const (
	PointerMouse PointerType = iota
	PointerPen
	PointerTouch
)

func (p PointerType) String() string {
	switch p {
	case PointerMouse:
		return "mouse"
	case PointerPen:
		return "pen"
	case PointerTouch:
		return "touch"
	}
	return fmt.Sprintf("PointerType(%d)", int(p))
}

// ParsePointerType maps a DOM-style pointer type name to a PointerType.
func ParsePointerType(name string) (PointerType, bool) {
	switch name {
	case "mouse":
		return PointerMouse, true
	case "pen":
		return PointerPen, true
	case "touch":
		return PointerTouch, true
	}
	return PointerMouse, false
}

// canDraw reports whether the device may draw. Touch never does.
func (p PointerType) canDraw() bool {
	return p == PointerMouse || p == PointerPen
}

// Event is a pointer event as delivered by the host document.
type Event struct {
	// Target identifies what the pointer is over. Only the host can
	// interpret it.
	Target  any
	Pointer PointerType
	// Page is the pointer position in page coordinates.
	Page state.Point
}

// Mode is the drawing tool in use.
type Mode int

const (
	ModeFreePen Mode = iota
	ModeStraightLine
	ModeErase
)

func (m Mode) String() string {
	switch m {
	case ModeFreePen:
		return "freePen"
	case ModeStraightLine:
		return "straightLine"
	case ModeErase:
		return "erase"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps a mode name to a Mode.
func ParseMode(name string) (Mode, bool) {
	switch name {
	case "freePen":
		return ModeFreePen, true
	case "straightLine":
		return ModeStraightLine, true
	case "erase":
		return ModeErase, true
	}
	return ModeFreePen, false
}
