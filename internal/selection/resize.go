package selection

import (
	"math"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/geometry"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/surface"
)

// Resizer drags one handle of a selection. The edges opposite the handle stay
// fixed; when the cursor crosses them the box folds over and the matching flip
// flag toggles instead of the dimension going negative.
//
// Edge handles follow the same folding rule on their single axis.
type Resizer struct {
	handle Handle
	start  geometry.Box
	flip   surface.Flip
	ratio  geometry.Vec2
}

// Start captures the box and flip at the moment the handle is grabbed.
func (r *Resizer) Start(g Geometry, h Handle) {
	r.handle = h
	r.start = geometry.Box{Pos: g.Anchors.TopLeft, Dim: g.Anchors.BottomRight.Sub(g.Anchors.TopLeft)}
	r.flip = g.Flip
	r.ratio = g.Ratio
}

// Resize returns g updated for the cursor position. With lock set, corner
// handles keep the Ratio aspect.
func (r *Resizer) Resize(g Geometry, cursor geometry.Vec2, lock bool) Geometry {
	h := r.handle
	fixed := geometry.Vec2{
		X: fixedEdge(h.X, r.start.Pos.X, r.start.Dim.X),
		Y: fixedEdge(h.Y, r.start.Pos.Y, r.start.Dim.Y),
	}
	d := cursor.Sub(fixed)
	if lock && h.Corner() {
		d = r.lockAspect(d)
	}

	if h.X != sideNone {
		pos, dim, crossed := fold(h.X, fixed.X, d.X)
		g.Position.X, g.Dimension.X = pos, dim
		g.Flip.Horizontal = r.flip.Horizontal != crossed
	}
	if h.Y != sideNone {
		pos, dim, crossed := fold(h.Y, fixed.Y, d.Y)
		g.Position.Y, g.Dimension.Y = pos, dim
		g.Flip.Vertical = r.flip.Vertical != crossed
	}
	return g
}

// lockAspect rescales the offset from the anchor so it lies on the ratio
// diagonal. The cross product of the ratio against the offset tells which side
// of the diagonal the cursor is on; that axis drives the other.
func (r *Resizer) lockAspect(d geometry.Vec2) geometry.Vec2 {
	rw, rh := r.ratio.X, r.ratio.Y
	if rw <= 0 || rh <= 0 {
		return d
	}
	sx := direction(d.X, r.handle.X)
	sy := direction(d.Y, r.handle.Y)
	ax, ay := math.Abs(d.X), math.Abs(d.Y)
	if geometry.V(rw, rh).Cross(geometry.V(ax, ay)) > 0 {
		ax = ay * rw / rh
	} else {
		ay = ax * rh / rw
	}
	return geometry.Vec2{X: sx * ax, Y: sy * ay}
}

// fixedEdge is the coordinate of the anchor edge on one axis.
func fixedEdge(s side, pos, dim float64) float64 {
	if s == sideMin {
		return pos + dim
	}
	return pos
}

// direction is the sign of an offset, falling back to the handle's outward
// direction when the offset is zero.
func direction(v float64, s side) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	case s == sideMin:
		return -1
	default:
		return 1
	}
}

// fold turns a signed offset from the anchor into a position and a
// non-negative dimension, reporting whether the cursor crossed the anchor.
func fold(s side, fixed, offset float64) (pos, dim float64, crossed bool) {
	crossed = s == sideMax && offset < 0 || s == sideMin && offset > 0
	return math.Min(fixed, fixed+offset), math.Abs(offset), crossed
}
