package geometry

import "math"

// Epsilon absorbs rounding error in orientation tests.
const Epsilon = 1e-9

// Segment is a closed line segment from A to B.
type Segment struct {
	A, B Vec2
}

// orientation returns +1 when c is left of a->b, -1 when right, 0 when collinear.
func orientation(a, b, c Vec2) int {
	cross := b.Sub(a).Cross(c.Sub(a))
	switch {
	case cross > Epsilon:
		return 1
	case cross < -Epsilon:
		return -1
	default:
		return 0
	}
}

// onSegment reports whether the collinear point p lies within the bounding box of s.
func onSegment(s Segment, p Vec2) bool {
	return p.X >= math.Min(s.A.X, s.B.X)-Epsilon && p.X <= math.Max(s.A.X, s.B.X)+Epsilon &&
		p.Y >= math.Min(s.A.Y, s.B.Y)-Epsilon && p.Y <= math.Max(s.A.Y, s.B.Y)+Epsilon
}

// Intersects reports whether two segments share at least one point.
// Touching endpoints and collinear overlap both count.
func Intersects(s, t Segment) bool {
	o1 := orientation(s.A, s.B, t.A)
	o2 := orientation(s.A, s.B, t.B)
	o3 := orientation(t.A, t.B, s.A)
	o4 := orientation(t.A, t.B, s.B)

	if o1 != o2 && o3 != o4 {
		return true
	}
	switch {
	case o1 == 0 && onSegment(s, t.A):
		return true
	case o2 == 0 && onSegment(s, t.B):
		return true
	case o3 == 0 && onSegment(t, s.A):
		return true
	case o4 == 0 && onSegment(t, s.B):
		return true
	}
	return false
}

// Validation is the outcome of testing a candidate polyline segment.
type Validation struct {
	// CrossesFirst is set when the candidate meets the polyline's first segment.
	CrossesFirst bool
	// CrossesOther is set when the candidate meets any other earlier segment.
	CrossesOther bool
}

// Valid reports whether the candidate may be appended as an ordinary vertex.
func (v Validation) Valid() bool { return !v.CrossesFirst && !v.CrossesOther }

// ValidatePolyline tests the segment from the last vertex to next against every
// earlier segment except the one ending at the last vertex, which always shares it.
func ValidatePolyline(vertices []Vec2, next Vec2) Validation {
	var res Validation
	n := len(vertices)
	if n < 3 {
		return res
	}
	cand := Segment{A: vertices[n-1], B: next}
	for i := 0; i < n-2; i++ {
		if !Intersects(cand, Segment{A: vertices[i], B: vertices[i+1]}) {
			continue
		}
		if i == 0 {
			res.CrossesFirst = true
		} else {
			res.CrossesOther = true
		}
	}
	return res
}

// CanClose reports whether the segment from the last vertex back to the first can
// be added without crossing the polyline. The first segment touches the closing
// one at the start vertex and the last segment at the end vertex; both are
// excluded from the test.
func CanClose(vertices []Vec2) bool {
	n := len(vertices)
	if n < 3 {
		return false
	}
	return !ValidatePolyline(vertices, vertices[0]).CrossesOther
}

// Snap45 projects target onto the nearest of the eight principal directions
// around anchor. Horizontal and vertical snaps keep the matching component;
// diagonal snaps use the dominant component's magnitude on both axes.
func Snap45(anchor, target Vec2) Vec2 {
	d := target.Sub(anchor)
	if d.IsZero() {
		return target
	}
	angle := math.Atan2(d.Y, d.X)
	step := math.Round(angle / (math.Pi / 4))
	snapped := step * math.Pi / 4
	cos, sin := math.Round(math.Cos(snapped)), math.Round(math.Sin(snapped))

	switch {
	case sin == 0:
		return Vec2{X: anchor.X + d.X, Y: anchor.Y}
	case cos == 0:
		return Vec2{X: anchor.X, Y: anchor.Y + d.Y}
	default:
		m := math.Max(math.Abs(d.X), math.Abs(d.Y))
		return Vec2{X: anchor.X + cos*m, Y: anchor.Y + sin*m}
	}
}

// PointInPolygon is an even-odd test that treats points on an edge as inside.
func PointInPolygon(p Vec2, poly []Vec2) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[j], poly[i]
		if orientation(a, b, p) == 0 && onSegment(Segment{A: a, B: b}, p) {
			return true
		}
		if (b.Y > p.Y) != (a.Y > p.Y) {
			x := (a.X-b.X)*(p.Y-b.Y)/(a.Y-b.Y) + b.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Bounds returns the box enclosing all points.
func Bounds(points []Vec2) Box {
	if len(points) == 0 {
		return Box{}
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return Box{Pos: lo, Dim: hi.Sub(lo)}
}
