// Package geometry holds the vector, box and segment math used by the selection tools.
package geometry

import (
	"image"
	"math"
)

// Vec2 is a point or a displacement in canvas pixels.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// FromPoint converts an integer pixel coordinate.
func FromPoint(p image.Point) Vec2 { return Vec2{X: float64(p.X), Y: float64(p.Y)} }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) Abs() Vec2            { return Vec2{math.Abs(v.X), math.Abs(v.Y)} }
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64  { return v.Sub(o).Len() }
func (v Vec2) IsZero() bool         { return v.X == 0 && v.Y == 0 }
func (v Vec2) Mul(o Vec2) Vec2      { return Vec2{v.X * o.X, v.Y * o.Y} }
func (v Vec2) Min(o Vec2) Vec2      { return Vec2{math.Min(v.X, o.X), math.Min(v.Y, o.Y)} }
func (v Vec2) Max(o Vec2) Vec2      { return Vec2{math.Max(v.X, o.X), math.Max(v.Y, o.Y)} }
func (v Vec2) Point() image.Point   { return image.Pt(int(math.Round(v.X)), int(math.Round(v.Y))) }
func (v Vec2) Eq(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// Box is an axis-aligned rectangle given by its top-left corner and its size.
// A raw drag may produce negative sizes; Normalize folds them back.
type Box struct {
	Pos Vec2 `json:"pos"`
	Dim Vec2 `json:"dim"`
}

// BoxFromCorners builds the normalized box spanned by two opposite corners.
func BoxFromCorners(a, b Vec2) Box {
	return Box{Pos: a.Min(b), Dim: b.Sub(a).Abs()}
}

// Normalize returns the same region with non-negative dimensions.
func (b Box) Normalize() Box {
	if b.Dim.X < 0 {
		b.Pos.X += b.Dim.X
		b.Dim.X = -b.Dim.X
	}
	if b.Dim.Y < 0 {
		b.Pos.Y += b.Dim.Y
		b.Dim.Y = -b.Dim.Y
	}
	return b
}

func (b Box) Max() Vec2 { return b.Pos.Add(b.Dim) }

func (b Box) Empty() bool { return b.Dim.X <= 0 || b.Dim.Y <= 0 }

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p Vec2) bool {
	n := b.Normalize()
	m := n.Max()
	return p.X >= n.Pos.X && p.X <= m.X && p.Y >= n.Pos.Y && p.Y <= m.Y
}

// Rect rounds the box to pixels.
func (b Box) Rect() image.Rectangle {
	n := b.Normalize()
	return image.Rectangle{Min: n.Pos.Point(), Max: n.Max().Point()}
}

// Clamp restricts p to the box.
func (b Box) Clamp(p Vec2) Vec2 {
	n := b.Normalize()
	return p.Max(n.Pos).Min(n.Max())
}

// Anchor9 names one of the nine reference points of a box.
type Anchor9 int

const (
	TopLeft Anchor9 = iota
	Top
	TopRight
	Left
	Center
	Right
	BottomLeft
	Bottom
	BottomRight
)

var anchorNames = [...]string{
	"top-left", "top", "top-right",
	"left", "center", "right",
	"bottom-left", "bottom", "bottom-right",
}

func (a Anchor9) String() string {
	if a < 0 || int(a) >= len(anchorNames) {
		return "unknown"
	}
	return anchorNames[a]
}

// ParseAnchor9 maps a config name back onto an anchor. Unknown names yield TopLeft.
func ParseAnchor9(s string) Anchor9 {
	for i, n := range anchorNames {
		if n == s {
			return Anchor9(i)
		}
	}
	return TopLeft
}

// Fraction is the relative position of the anchor inside a unit box.
func (a Anchor9) Fraction() Vec2 {
	return Vec2{X: float64(a%3) / 2, Y: float64(a/3) / 2}
}

// Point returns the anchor's absolute position on the box.
func (b Box) Point(a Anchor9) Vec2 {
	n := b.Normalize()
	return n.Pos.Add(n.Dim.Mul(a.Fraction()))
}
