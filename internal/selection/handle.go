package selection

import (
	"github.com/AndrewDAP/PolyDessin-sub000/internal/geometry"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/surface"
)

// side says which edge of the box a handle drags along one axis.
type side int8

const (
	sideNone side = iota // axis not affected
	sideMin              // left or top edge
	sideMax              // right or bottom edge
)

// Handle describes one resize direction as data: the box edges it drags on
// each axis. The anchor is always the opposite edge.
type Handle struct {
	State State
	X, Y  side
}

var handles = [...]Handle{
	{State: N, X: sideNone, Y: sideMin},
	{State: S, X: sideNone, Y: sideMax},
	{State: E, X: sideMax, Y: sideNone},
	{State: W, X: sideMin, Y: sideNone},
	{State: NE, X: sideMax, Y: sideMin},
	{State: NW, X: sideMin, Y: sideMin},
	{State: SE, X: sideMax, Y: sideMax},
	{State: SW, X: sideMin, Y: sideMax},
}

// HandleRadius is how close, in pixels, a press must land to grab a handle.
const HandleRadius = 5.0

func handleFor(s State) (Handle, bool) {
	for _, h := range handles {
		if h.State == s {
			return h, true
		}
	}
	return Handle{}, false
}

// Corner reports whether the handle drags both axes.
func (h Handle) Corner() bool { return h.X != sideNone && h.Y != sideNone }

// Point is the handle's position on b.
func (h Handle) Point(b geometry.Box) geometry.Vec2 {
	n := b.Normalize()
	return geometry.Vec2{X: axisPoint(h.X, n.Pos.X, n.Dim.X), Y: axisPoint(h.Y, n.Pos.Y, n.Dim.Y)}
}

func axisPoint(s side, pos, dim float64) float64 {
	switch s {
	case sideMin:
		return pos
	case sideMax:
		return pos + dim
	default:
		return pos + dim/2
	}
}

// HandleAt returns the handle under p, corners taking precedence over edges.
func HandleAt(b geometry.Box, p geometry.Vec2) (Handle, bool) {
	var best Handle
	found := false
	for _, h := range handles {
		if h.Point(b).Dist(p) > HandleRadius {
			continue
		}
		if !found || h.Corner() && !best.Corner() {
			best, found = h, true
		}
	}
	return best, found
}

// Handles lists the eight handle positions on b for overlay drawing.
func Handles(b geometry.Box) []geometry.Vec2 {
	pts := make([]geometry.Vec2, len(handles))
	for i, h := range handles {
		pts[i] = h.Point(b)
	}
	return pts
}

// Anchors are the box corners held fixed while a resize is in progress.
type Anchors struct {
	TopLeft     geometry.Vec2 `json:"topLeft"`
	BottomRight geometry.Vec2 `json:"bottomRight"`
}

// Geometry is the placement of the active selection.
type Geometry struct {
	OriginalPosition  geometry.Vec2 `json:"originalPosition"`
	Position          geometry.Vec2 `json:"position"`
	OriginalDimension geometry.Vec2 `json:"originalDimension"`
	Dimension         geometry.Vec2 `json:"dimension"`
	// Ratio is the aspect kept by a locked corner resize.
	Ratio   geometry.Vec2 `json:"ratio"`
	Anchors Anchors       `json:"anchors"`
	Flip    surface.Flip  `json:"flip"`
}

func newGeometry(b geometry.Box) Geometry {
	b = b.Normalize()
	return Geometry{
		OriginalPosition:  b.Pos,
		Position:          b.Pos,
		OriginalDimension: b.Dim,
		Dimension:         b.Dim,
		Ratio:             b.Dim,
		Anchors:           Anchors{TopLeft: b.Pos, BottomRight: b.Max()},
	}
}

// Box is the current bounding box.
func (g Geometry) Box() geometry.Box { return geometry.Box{Pos: g.Position, Dim: g.Dimension} }

// settle refreshes the anchors and ratio after a move or resize.
func (g *Geometry) settle() {
	g.Anchors = Anchors{TopLeft: g.Position, BottomRight: g.Position.Add(g.Dimension)}
	if g.Dimension.X > 0 && g.Dimension.Y > 0 {
		g.Ratio = g.Dimension
	}
}

// Changed reports whether the selection differs from where it was captured.
func (g Geometry) Changed() bool {
	return g.Position != g.OriginalPosition ||
		g.Dimension != g.OriginalDimension ||
		g.Flip.Horizontal || g.Flip.Vertical
}
