package state

// Point is a position in surface-local pixels, origin at the surface's
// top-left corner.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StepType selects how a segment's points are joined when it is redrawn.
type StepType string

const (
	StepLine   StepType = "L"
	StepBezier StepType = "B"
)

// Valid reports whether s is one of the known step types.
func (s StepType) Valid() bool {
	return s == StepLine || s == StepBezier
}

// Segment is one continuous stroke, from pointer-down to pointer-up.
type Segment struct {
	Width    float64  `json:"width"`
	Color    string   `json:"color"`
	StepType StepType `json:"stepType"`
	Points   []Point  `json:"pts"`
}

// StrokeHistory is the ordered list of segments of one surface.
// Later segments are drawn on top of earlier ones.
type StrokeHistory []Segment

// Clone returns a deep copy of h.
func (h StrokeHistory) Clone() StrokeHistory {
	if h == nil {
		return nil
	}
	out := make(StrokeHistory, len(h))
	for i, seg := range h {
		out[i] = seg
		out[i].Points = append([]Point(nil), seg.Points...)
	}
	return out
}

// Anchor is the horizontal placement of a surface in its document.
type Anchor string

const (
	AnchorLeft   Anchor = "left"
	AnchorCenter Anchor = "center"
	AnchorRight  Anchor = "right"
)

// ParseAnchor maps a position name to an Anchor. Unknown names give
// AnchorLeft and false.
func ParseAnchor(name string) (Anchor, bool) {
	switch Anchor(name) {
	case AnchorLeft, AnchorCenter, AnchorRight:
		return Anchor(name), true
	}
	return AnchorLeft, false
}

// Rect is a bounding box in page coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether the page point p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Surface is an independently drawable rectangle with its own history.
type Surface struct {
	ID      string
	History StrokeHistory
	X, Y    float64
	Width   float64
	Height  float64
	Anchor  Anchor
	Border  bool
	Active  bool
}

// Box returns the surface's bounding box.
func (s *Surface) Box() Rect {
	return Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}
