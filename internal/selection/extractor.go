package selection

import (
	"fmt"
	"math"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/geometry"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/surface"
)

// Candidate is a finished selection outline ready for content capture.
type Candidate struct {
	Box   geometry.Box
	Shape Shape
}

// Cursor is the pointer feedback shown while a selection is being built.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorValid
	CursorInvalid
	CursorClose
)

var cursorNames = [...]string{"default", "valid", "invalid", "close"}

func (c Cursor) String() string {
	if c < 0 || int(c) >= len(cursorNames) {
		return "unknown"
	}
	return cursorNames[c]
}

func (c Cursor) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Cursor) UnmarshalText(b []byte) error {
	for i, n := range cursorNames {
		if n == string(b) {
			*c = Cursor(i)
			return nil
		}
	}
	return fmt.Errorf("unknown cursor %q", b)
}

// Builder accumulates pointer input into a selection outline. Drag shapes and
// the lasso differ only in their builder.
type Builder interface {
	Press(p geometry.Vec2, shift bool)
	Move(p geometry.Vec2, shift bool)
	// Release reports a candidate once the outline is complete.
	Release(p geometry.Vec2, shift bool) (Candidate, bool)
	DoubleClick(p geometry.Vec2) (Candidate, bool)
	// Undo drops the most recent step.
	Undo()
	Cancel()
	Building() bool
	// Path is the outline in progress, for rubber-band drawing.
	Path() []geometry.Vec2
	Cursor() Cursor
}

// Extractor turns pointer input into selection candidates for one kind.
type Extractor struct {
	kind    Kind
	bounds  func() geometry.Box
	builder Builder
}

// NewExtractor returns the extractor for kind. bounds reports the canvas
// box, used to clamp the creation drag.
func NewExtractor(kind Kind, bounds func() geometry.Box, closeRadius float64) *Extractor {
	var b Builder
	switch kind {
	case KindFreeform:
		b = &polylineBuilder{bounds: bounds, radius: closeRadius}
	default:
		b = &dragBuilder{bounds: bounds, shape: NewShape(kind, nil, geometry.Vec2{})}
	}
	return &Extractor{kind: kind, bounds: bounds, builder: b}
}

func (x *Extractor) Kind() Kind { return x.kind }

func (x *Extractor) Builder() Builder { return x.builder }

// SelectAll synthesizes a candidate covering the whole canvas.
func (x *Extractor) SelectAll() Candidate {
	b := x.bounds().Normalize()
	if x.kind != KindFreeform {
		return Candidate{Box: b, Shape: NewShape(x.kind, nil, geometry.Vec2{})}
	}
	outline := Rectangle{}.Outline(geometry.Box{Dim: b.Dim}, surface.Flip{})
	return Candidate{Box: b, Shape: Freeform{Vertices: outline, Size: b.Dim}}
}

// NewShape returns the shape of kind k. Vertices and size are used by
// freeform shapes only.
func NewShape(k Kind, vertices []geometry.Vec2, size geometry.Vec2) Shape {
	switch k {
	case KindEllipse:
		return Ellipse{}
	case KindFreeform:
		return Freeform{Vertices: vertices, Size: size}
	default:
		return Rectangle{}
	}
}

// dragBuilder captures a box between press and release.
type dragBuilder struct {
	bounds     func() geometry.Box
	shape      Shape
	active     bool
	start, end geometry.Vec2
}

func (b *dragBuilder) Press(p geometry.Vec2, shift bool) {
	b.active = true
	b.start = b.bounds().Clamp(p)
	b.end = b.start
}

func (b *dragBuilder) Move(p geometry.Vec2, shift bool) {
	if !b.active {
		return
	}
	b.end = b.corner(p, shift)
}

func (b *dragBuilder) Release(p geometry.Vec2, shift bool) (Candidate, bool) {
	if !b.active {
		return Candidate{}, false
	}
	b.end = b.corner(p, shift)
	b.active = false
	box := geometry.BoxFromCorners(b.start, b.end)
	if box.Empty() {
		return Candidate{}, false
	}
	return Candidate{Box: box, Shape: b.shape}, true
}

// corner clamps the dragged corner to the canvas. With shift the box is
// squared on the shorter of the available extents.
func (b *dragBuilder) corner(p geometry.Vec2, shift bool) geometry.Vec2 {
	canvas := b.bounds().Normalize()
	p = canvas.Clamp(p)
	if !shift {
		return p
	}
	d := p.Sub(b.start)
	side := math.Max(math.Abs(d.X), math.Abs(d.Y))
	sx, sy := sign(d.X), sign(d.Y)
	side = math.Min(side, room(b.start.X, sx, canvas.Pos.X, canvas.Max().X))
	side = math.Min(side, room(b.start.Y, sy, canvas.Pos.Y, canvas.Max().Y))
	return b.start.Add(geometry.Vec2{X: sx * side, Y: sy * side})
}

func (b *dragBuilder) DoubleClick(geometry.Vec2) (Candidate, bool) { return Candidate{}, false }

func (b *dragBuilder) Undo()          {}
func (b *dragBuilder) Cancel()        { b.active = false }
func (b *dragBuilder) Building() bool { return b.active }
func (b *dragBuilder) Cursor() Cursor { return CursorDefault }

func (b *dragBuilder) Path() []geometry.Vec2 {
	if !b.active {
		return nil
	}
	return b.shape.Outline(geometry.BoxFromCorners(b.start, b.end), surface.Flip{})
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// room is the distance from v to the canvas edge in direction s.
func room(v, s, lo, hi float64) float64 {
	if s < 0 {
		return v - lo
	}
	return hi - v
}

// polylineBuilder builds a lasso one click at a time. A click near the first
// vertex closes the polygon when the closing segment crosses nothing.
type polylineBuilder struct {
	bounds   func() geometry.Box
	radius   float64
	vertices []geometry.Vec2
	cursor   geometry.Vec2
	shift    bool
}

func (b *polylineBuilder) Press(p geometry.Vec2, shift bool) {
	b.Move(p, shift)
}

func (b *polylineBuilder) Move(p geometry.Vec2, shift bool) {
	b.cursor, b.shift = p, shift
}

// Release adds a vertex at p, or closes the lasso when p is near the start.
// Clicks that would make the outline cross itself are ignored.
func (b *polylineBuilder) Release(p geometry.Vec2, shift bool) (Candidate, bool) {
	b.cursor, b.shift = p, shift
	target := b.target()
	n := len(b.vertices)
	switch {
	case n == 0:
		b.vertices = append(b.vertices, target)
	case b.nearStart(target):
		if geometry.CanClose(b.vertices) {
			return b.finish()
		}
	case target.Dist(b.vertices[n-1]) < geometry.Epsilon:
		// repeated click, as sent ahead of a double click
	case geometry.ValidatePolyline(b.vertices, target).Valid():
		b.vertices = append(b.vertices, target)
	}
	return Candidate{}, false
}

// DoubleClick closes the lasso from wherever the last vertex is.
func (b *polylineBuilder) DoubleClick(geometry.Vec2) (Candidate, bool) {
	if !geometry.CanClose(b.vertices) {
		return Candidate{}, false
	}
	return b.finish()
}

func (b *polylineBuilder) finish() (Candidate, bool) {
	closed := append(append([]geometry.Vec2(nil), b.vertices...), b.vertices[0])
	box := geometry.Bounds(closed)
	if box.Empty() {
		return Candidate{}, false
	}
	rel := make([]geometry.Vec2, len(closed))
	for i, v := range closed {
		rel[i] = v.Sub(box.Pos)
	}
	b.vertices = nil
	return Candidate{Box: box, Shape: Freeform{Vertices: rel, Size: box.Dim}}, true
}

// target is the cursor clamped to the canvas, snapped to 45 degrees with shift.
func (b *polylineBuilder) target() geometry.Vec2 {
	p := b.cursor
	if b.shift && len(b.vertices) > 0 {
		p = geometry.Snap45(b.vertices[len(b.vertices)-1], p)
	}
	return b.bounds().Clamp(p)
}

func (b *polylineBuilder) nearStart(p geometry.Vec2) bool {
	return len(b.vertices) >= 3 && p.Dist(b.vertices[0]) <= b.radius
}

func (b *polylineBuilder) Undo() {
	if n := len(b.vertices); n > 0 {
		b.vertices = b.vertices[:n-1]
	}
}

func (b *polylineBuilder) Cancel()        { b.vertices = nil }
func (b *polylineBuilder) Building() bool { return len(b.vertices) > 0 }

func (b *polylineBuilder) Path() []geometry.Vec2 {
	if len(b.vertices) == 0 {
		return nil
	}
	return append(append([]geometry.Vec2(nil), b.vertices...), b.target())
}

func (b *polylineBuilder) Cursor() Cursor {
	if len(b.vertices) == 0 {
		return CursorDefault
	}
	target := b.target()
	if b.nearStart(target) {
		if geometry.CanClose(b.vertices) {
			return CursorClose
		}
		return CursorInvalid
	}
	if geometry.ValidatePolyline(b.vertices, target).Valid() {
		return CursorValid
	}
	return CursorInvalid
}
