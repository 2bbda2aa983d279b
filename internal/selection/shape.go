package selection

import (
	"fmt"
	"image"
	"math"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/geometry"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/surface"
)

// Kind names a selection tool.
type Kind int

const (
	KindRectangle Kind = iota
	KindEllipse
	KindFreeform
)

var kindNames = [...]string{"rectangle", "ellipse", "freeform"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	for i, n := range kindNames {
		if n == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown selection kind %q", b)
}

// Shape is the outline of a selection relative to its bounding box. The set
// of implementations is closed: Rectangle, Ellipse and Freeform.
type Shape interface {
	Kind() Kind
	// Mask clips content rendered at size with flip applied. Nil keeps everything.
	Mask(size image.Point, flip surface.Flip) *image.Alpha
	// Outline returns the closed path of the shape laid out on b.
	Outline(b geometry.Box, flip surface.Flip) []geometry.Vec2
	// Reshape bakes a new size and flip into the shape.
	Reshape(size geometry.Vec2, flip surface.Flip) Shape
	isShape()
}

type Rectangle struct{}

func (Rectangle) Kind() Kind                                  { return KindRectangle }
func (Rectangle) Mask(image.Point, surface.Flip) *image.Alpha { return nil }
func (Rectangle) Reshape(geometry.Vec2, surface.Flip) Shape   { return Rectangle{} }
func (Rectangle) isShape()                                    {}

func (Rectangle) Outline(b geometry.Box, _ surface.Flip) []geometry.Vec2 {
	n := b.Normalize()
	m := n.Max()
	return []geometry.Vec2{n.Pos, {X: m.X, Y: n.Pos.Y}, m, {X: n.Pos.X, Y: m.Y}, n.Pos}
}

type Ellipse struct{}

func (Ellipse) Kind() Kind                                { return KindEllipse }
func (Ellipse) Reshape(geometry.Vec2, surface.Flip) Shape { return Ellipse{} }
func (Ellipse) isShape()                                  {}

func (Ellipse) Mask(size image.Point, _ surface.Flip) *image.Alpha {
	return surface.EllipseMask(size.X, size.Y)
}

// ellipseSegments is the number of segments approximating an ellipse outline.
const ellipseSegments = 64

func (Ellipse) Outline(b geometry.Box, _ surface.Flip) []geometry.Vec2 {
	n := b.Normalize()
	c := n.Point(geometry.Center)
	r := n.Dim.Scale(0.5)
	pts := make([]geometry.Vec2, 0, ellipseSegments+1)
	for i := 0; i <= ellipseSegments; i++ {
		a := 2 * math.Pi * float64(i%ellipseSegments) / ellipseSegments
		pts = append(pts, geometry.Vec2{X: c.X + r.X*math.Cos(a), Y: c.Y + r.Y*math.Sin(a)})
	}
	return pts
}

// Freeform is a lasso polygon. Vertices are closed (the last repeats the
// first) and relative to a box of Size.
type Freeform struct {
	Vertices []geometry.Vec2 `json:"vertices"`
	Size     geometry.Vec2   `json:"size"`
}

func (Freeform) Kind() Kind { return KindFreeform }
func (Freeform) isShape()   {}

// place maps the vertices onto a box of the given size, mirrored by flip.
func (f Freeform) place(origin, size geometry.Vec2, flip surface.Flip) []geometry.Vec2 {
	sx, sy := 1.0, 1.0
	if f.Size.X > 0 {
		sx = size.X / f.Size.X
	}
	if f.Size.Y > 0 {
		sy = size.Y / f.Size.Y
	}
	out := make([]geometry.Vec2, len(f.Vertices))
	for i, v := range f.Vertices {
		p := geometry.Vec2{X: v.X * sx, Y: v.Y * sy}
		if flip.Horizontal {
			p.X = size.X - p.X
		}
		if flip.Vertical {
			p.Y = size.Y - p.Y
		}
		out[i] = origin.Add(p)
	}
	return out
}

func (f Freeform) Mask(size image.Point, flip surface.Flip) *image.Alpha {
	poly := f.place(geometry.Vec2{}, geometry.FromPoint(size), flip)
	return surface.PolygonMask(size.X, size.Y, poly)
}

func (f Freeform) Outline(b geometry.Box, flip surface.Flip) []geometry.Vec2 {
	n := b.Normalize()
	return f.place(n.Pos, n.Dim, flip)
}

// rebase re-expresses the vertices, given relative to from, relative to to.
func (f Freeform) rebase(from, to geometry.Box) Freeform {
	shift := from.Pos.Sub(to.Pos)
	out := make([]geometry.Vec2, len(f.Vertices))
	for i, v := range f.Vertices {
		out[i] = v.Add(shift)
	}
	return Freeform{Vertices: out, Size: to.Dim}
}

func (f Freeform) Reshape(size geometry.Vec2, flip surface.Flip) Shape {
	return Freeform{Vertices: f.place(geometry.Vec2{}, size, flip), Size: size}
}
