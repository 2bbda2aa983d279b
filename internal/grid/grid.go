// Package grid snaps coordinates onto the lines of a square grid.
package grid

import "math"

// Grid is a square grid of Cell pixels. A Cell <= 0 disables snapping.
type Grid struct {
	Cell float64
}

func New(cell float64) Grid { return Grid{Cell: cell} }

func (g Grid) Enabled() bool { return g.Cell > 0 }

// Below returns the largest grid line strictly smaller than v.
func (g Grid) Below(v float64) float64 {
	if !g.Enabled() {
		return v
	}
	m := math.Floor(v/g.Cell) * g.Cell
	if m >= v {
		m -= g.Cell
	}
	return m
}

// Above returns the smallest grid line strictly greater than v.
func (g Grid) Above(v float64) float64 {
	if !g.Enabled() {
		return v
	}
	m := math.Ceil(v/g.Cell) * g.Cell
	if m <= v {
		m += g.Cell
	}
	return m
}

// Nearest returns the closest grid line, v itself when it already lies on one.
func (g Grid) Nearest(v float64) float64 {
	if !g.Enabled() {
		return v
	}
	return math.Round(v/g.Cell) * g.Cell
}

// Step moves v to the next grid line in the direction of dir's sign.
func (g Grid) Step(v, dir float64) float64 {
	switch {
	case dir < 0:
		return g.Below(v)
	case dir > 0:
		return g.Above(v)
	default:
		return v
	}
}
