package selection

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/geometry"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/surface"
)

func mustHandle(t *testing.T, s State) Handle {
	t.Helper()
	h, ok := handleFor(s)
	require.True(t, ok, "no handle for %s", s)
	return h
}

func box(x, y, w, h float64) geometry.Box {
	return geometry.Box{Pos: geometry.V(x, y), Dim: geometry.V(w, h)}
}

func TestResizePastAnchorFlipsBothAxes(t *testing.T) {
	g := newGeometry(box(50, 50, 10, 10))
	var r Resizer
	r.Start(g, mustHandle(t, SE))

	g = r.Resize(g, geometry.V(40, 40), false)
	assert.Equal(t, geometry.V(10, 10), g.Dimension)
	assert.Equal(t, geometry.V(40, 40), g.Position)
	assert.Equal(t, surface.Flip{Horizontal: true, Vertical: true}, g.Flip)

	g = r.Resize(g, geometry.V(65, 65), false)
	assert.Equal(t, geometry.V(15, 15), g.Dimension)
	assert.Equal(t, geometry.V(50, 50), g.Position)
	assert.Equal(t, surface.Flip{}, g.Flip, "crossing back restores the flags")
}

func TestResizeFlipAccumulatesAcrossDrags(t *testing.T) {
	g := newGeometry(box(0, 0, 10, 10))
	var r Resizer
	r.Start(g, mustHandle(t, E))
	g = r.Resize(g, geometry.V(-5, 3), false)
	g.settle()
	require.True(t, g.Flip.Horizontal)

	r.Start(g, mustHandle(t, W))
	g = r.Resize(g, geometry.V(20, 3), false)
	assert.False(t, g.Flip.Horizontal, "flipping twice restores the flag")
	assert.Equal(t, geometry.V(0, 0), g.Position)
	assert.Equal(t, geometry.V(20, 10), g.Dimension)
}

func TestEdgeHandleFlipsItsAxisOnly(t *testing.T) {
	g := newGeometry(box(10, 10, 20, 20))
	var r Resizer
	r.Start(g, mustHandle(t, E))

	for _, lock := range []bool{false, true} {
		got := r.Resize(g, geometry.V(0, 999), lock)
		assert.Equal(t, geometry.V(0, 10), got.Position)
		assert.Equal(t, geometry.V(10, 20), got.Dimension)
		assert.True(t, got.Flip.Horizontal)
		assert.False(t, got.Flip.Vertical)
	}

	r.Start(g, mustHandle(t, N))
	got := r.Resize(g, geometry.V(500, 35), false)
	assert.Equal(t, geometry.V(10, 30), got.Position)
	assert.Equal(t, geometry.V(20, 5), got.Dimension)
	assert.True(t, got.Flip.Vertical)
}

func TestAspectLockPicksDominantAxis(t *testing.T) {
	g := newGeometry(box(0, 0, 20, 10))
	var r Resizer
	r.Start(g, mustHandle(t, SE))

	got := r.Resize(g, geometry.V(30, 5), true)
	assert.Equal(t, geometry.V(30, 15), got.Dimension, "x drives y below the diagonal")

	got = r.Resize(g, geometry.V(10, 30), true)
	assert.Equal(t, geometry.V(60, 30), got.Dimension, "y drives x above the diagonal")
}

func TestAspectLockAcrossAnchor(t *testing.T) {
	g := newGeometry(box(0, 0, 20, 10))
	var r Resizer
	r.Start(g, mustHandle(t, NW))

	got := r.Resize(g, geometry.V(30, 20), true)
	assert.Equal(t, geometry.V(20, 10), got.Position)
	assert.Equal(t, geometry.V(20, 10), got.Dimension)
	assert.Equal(t, surface.Flip{Horizontal: true, Vertical: true}, got.Flip)
}

func TestResizeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		g := newGeometry(box(100, 100, 1+rng.Float64()*80, 1+rng.Float64()*80))
		h := handles[rng.Intn(len(handles))]
		lock := rng.Intn(2) == 0
		var r Resizer
		r.Start(g, h)

		for j := 0; j < 5; j++ {
			cursor := geometry.V(rng.Float64()*300-50, rng.Float64()*300-50)
			g = r.Resize(g, cursor, lock)
			require.GreaterOrEqual(t, g.Dimension.X, 0.0)
			require.GreaterOrEqual(t, g.Dimension.Y, 0.0)
			if lock && h.Corner() && g.Dimension.X > 0 && g.Dimension.Y > 0 {
				assert.InDelta(t, g.Ratio.X/g.Ratio.Y, g.Dimension.X/g.Dimension.Y, 1e-9)
			}
		}
	}
}

func TestHandleAtPrefersCorners(t *testing.T) {
	b := box(50, 50, 10, 10)
	h, ok := HandleAt(b, geometry.V(60, 60))
	require.True(t, ok)
	assert.Equal(t, SE, h.State)

	h, ok = HandleAt(b, geometry.V(55, 49))
	require.True(t, ok)
	assert.Equal(t, N, h.State)

	_, ok = HandleAt(box(0, 0, 100, 100), geometry.V(50, 50))
	assert.False(t, ok)
	assert.Len(t, Handles(b), 8)
}
