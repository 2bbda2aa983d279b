package selection

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/geometry"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/grid"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/history"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/surface"
)

var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	red   = color.NRGBA{R: 255, A: 255}
)

type fixture struct {
	base    *surface.Raster
	history *history.Stack
	sched   *fakeScheduler
	c       *Controller
	active  []bool
}

func newFixture(t *testing.T, kind Kind, move MoveOptions) *fixture {
	t.Helper()
	f := &fixture{
		base:    surface.NewRaster(100, 100, white),
		history: history.NewStack(0),
		sched:   &fakeScheduler{},
	}
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			f.base.Image().SetNRGBA(x, y, red)
		}
	}
	f.c = New(kind, f.base, f.history, Options{Move: move, CloseRadius: 10, Scheduler: f.sched})
	f.c.OnActive(func(on bool) { f.active = append(f.active, on) })
	return f
}

func (f *fixture) mouse(dir mouse.Direction, x, y float32, mods key.Modifiers) {
	f.c.HandleMouse(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: dir, Modifiers: mods})
}

func (f *fixture) drag(x0, y0, x1, y1 float32) {
	f.mouse(mouse.DirPress, x0, y0, 0)
	f.mouse(mouse.DirNone, (x0+x1)/2, (y0+y1)/2, 0)
	f.mouse(mouse.DirNone, x1, y1, 0)
	f.mouse(mouse.DirRelease, x1, y1, 0)
}

func (f *fixture) key(code key.Code, dir key.Direction) bool {
	return f.c.HandleKey(key.Event{Code: code, Direction: dir})
}

func (f *fixture) pixels() []uint8 {
	return append([]uint8(nil), f.base.Image().Pix...)
}

func TestCreateSelectionCapturesContent(t *testing.T) {
	f := newFixture(t, KindRectangle, repeat)
	assert.Nil(t, f.c.Content())

	f.mouse(mouse.DirPress, 10, 10, 0)
	assert.True(t, f.history.Locked(), "creation drag holds the history")
	f.mouse(mouse.DirNone, 20, 20, 0)
	f.mouse(mouse.DirRelease, 20, 20, 0)

	assert.Equal(t, Idle, f.c.State())
	assert.False(t, f.history.Locked())
	assert.Equal(t, geometry.V(10, 10), f.c.Geometry().Dimension)
	require.NotNil(t, f.c.Content())
	assert.Equal(t, red, f.c.Content().NRGBAAt(0, 0))
	assert.Equal(t, []bool{true}, f.active)
}

func TestMoveHoldsHistoryUntilRelease(t *testing.T) {
	f := newFixture(t, KindRectangle, repeat)
	f.drag(10, 10, 30, 30)

	f.mouse(mouse.DirPress, 20, 20, 0)
	assert.Equal(t, Move, f.c.State())
	assert.True(t, f.history.Locked())
	assert.False(t, f.history.Undo())

	f.mouse(mouse.DirNone, 30, 30, 0)
	f.mouse(mouse.DirRelease, 35, 35, 0)
	assert.Equal(t, Idle, f.c.State())
	assert.False(t, f.history.Locked())
	assert.Equal(t, geometry.V(25, 25), f.c.Geometry().Position)
	assert.Equal(t, f.c.Geometry().Position, f.c.Geometry().Anchors.TopLeft)
}

func TestCommitUndoRedoExact(t *testing.T) {
	f := newFixture(t, KindRectangle, repeat)
	before := f.pixels()

	f.drag(10, 10, 30, 30)
	f.drag(20, 20, 50, 50)
	assert.Equal(t, before, f.pixels(), "a lifted selection leaves the base untouched")

	require.True(t, f.key(key.CodeEscape, key.DirPress))
	assert.Equal(t, Off, f.c.State())
	assert.Nil(t, f.c.Content())
	assert.Equal(t, red, f.base.Image().NRGBAAt(40, 40))
	assert.Equal(t, white, f.base.Image().NRGBAAt(10, 10))
	after := f.pixels()

	require.True(t, f.history.Undo())
	assert.Equal(t, before, f.pixels())
	require.True(t, f.history.Redo())
	assert.Equal(t, after, f.pixels())
	assert.Equal(t, []bool{true, false}, f.active)
}

func TestCommitWithoutChangeRecordsNothing(t *testing.T) {
	f := newFixture(t, KindRectangle, repeat)
	f.drag(10, 10, 20, 20)
	f.key(key.CodeEscape, key.DirPress)
	assert.Equal(t, 0, f.history.Stats().Total)
}

func TestResizeSouthEastPastAnchor(t *testing.T) {
	f := newFixture(t, KindRectangle, repeat)
	f.drag(50, 50, 60, 60)

	f.mouse(mouse.DirPress, 60, 60, 0)
	assert.Equal(t, SE, f.c.State())
	f.mouse(mouse.DirNone, 45, 45, 0)
	f.mouse(mouse.DirRelease, 40, 40, 0)

	g := f.c.Geometry()
	assert.Equal(t, Idle, f.c.State())
	assert.Equal(t, geometry.V(40, 40), g.Position)
	assert.Equal(t, geometry.V(10, 10), g.Dimension)
	assert.Equal(t, surface.Flip{Horizontal: true, Vertical: true}, g.Flip)
	assert.False(t, f.history.Locked())
}

func TestPressOutsideCommitsAndStartsOver(t *testing.T) {
	f := newFixture(t, KindRectangle, repeat)
	f.drag(10, 10, 30, 30)
	f.drag(20, 20, 40, 20)

	f.mouse(mouse.DirPress, 80, 80, 0)
	assert.Equal(t, Off, f.c.State())
	assert.True(t, f.c.Building())
	assert.Equal(t, 1, f.history.Stats().Total)
	assert.Equal(t, red, f.base.Image().NRGBAAt(30, 10))

	f.mouse(mouse.DirNone, 90, 90, 0)
	f.mouse(mouse.DirRelease, 90, 90, 0)
	assert.Equal(t, Idle, f.c.State())
	assert.Equal(t, geometry.V(80, 80), f.c.Geometry().Position)
}

func TestOnlyPrimaryButton(t *testing.T) {
	f := newFixture(t, KindRectangle, repeat)
	f.c.HandleMouse(mouse.Event{X: 10, Y: 10, Button: mouse.ButtonRight, Direction: mouse.DirPress})
	f.c.HandleMouse(mouse.Event{X: 30, Y: 30, Direction: mouse.DirNone})
	f.c.HandleMouse(mouse.Event{X: 30, Y: 30, Button: mouse.ButtonRight, Direction: mouse.DirRelease})
	assert.Equal(t, Off, f.c.State())
	assert.False(t, f.c.Building())
	assert.False(t, f.history.Locked())
}

func TestDeleteClearsSourceAndUndoes(t *testing.T) {
	f := newFixture(t, KindRectangle, repeat)
	before := f.pixels()
	f.drag(10, 10, 20, 20)

	require.True(t, f.key(key.CodeDeleteForward, key.DirPress))
	assert.Equal(t, Off, f.c.State())
	assert.Equal(t, white, f.base.Image().NRGBAAt(15, 15))

	require.True(t, f.history.Undo())
	assert.Equal(t, before, f.pixels())
}

func TestArrowKeysMoveWhileHeld(t *testing.T) {
	f := newFixture(t, KindRectangle, repeat)
	f.drag(10, 10, 20, 20)

	require.True(t, f.key(key.CodeRightArrow, key.DirPress))
	assert.Equal(t, Move, f.c.State())
	assert.True(t, f.history.Locked())
	assert.Equal(t, geometry.V(13, 10), f.c.Geometry().Position)

	f.sched.Advance(600 * time.Millisecond)
	assert.Equal(t, geometry.V(19, 10), f.c.Geometry().Position)

	require.True(t, f.key(key.CodeRightArrow, key.DirRelease))
	assert.Equal(t, Idle, f.c.State())
	assert.False(t, f.history.Locked())

	f.sched.Advance(time.Second)
	assert.Equal(t, geometry.V(19, 10), f.c.Geometry().Position)
}

func TestEscapeDuringKeyMoveCancelsRepeat(t *testing.T) {
	f := newFixture(t, KindRectangle, repeat)
	f.drag(10, 10, 20, 20)
	f.key(key.CodeDownArrow, key.DirPress)
	f.key(key.CodeEscape, key.DirPress)
	assert.Equal(t, Off, f.c.State())
	assert.False(t, f.history.Locked())
	assert.Equal(t, 1, f.history.Stats().Total)

	snapshot := f.pixels()
	f.sched.Advance(time.Second)
	assert.Equal(t, snapshot, f.pixels())
}

func TestMagnetUpLandsOnGridRow(t *testing.T) {
	opts := repeat
	opts.Grid, opts.Magnet = grid.New(50), true
	f := newFixture(t, KindRectangle, opts)
	f.drag(52, 52, 62, 62)

	f.key(key.CodeUpArrow, key.DirPress)
	assert.Equal(t, geometry.V(52, 50), f.c.Geometry().Position)
	f.key(key.CodeUpArrow, key.DirRelease)
}

func TestLassoSelectionMasksContent(t *testing.T) {
	f := newFixture(t, KindFreeform, repeat)
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			f.base.Image().SetNRGBA(x, y, red)
		}
	}
	pts := [][2]float32{{0, 0}, {40, 0}, {0, 40}}
	for _, p := range pts {
		f.mouse(mouse.DirPress, p[0], p[1], 0)
		f.mouse(mouse.DirRelease, p[0], p[1], 0)
		assert.True(t, f.history.Locked(), "lasso construction holds the history")
	}
	require.True(t, f.c.DoubleClick(geometry.V(0, 40)))
	assert.Equal(t, Idle, f.c.State())
	assert.False(t, f.history.Locked())

	content := f.c.Content()
	assert.Equal(t, image.Rect(0, 0, 40, 40), content.Bounds())
	assert.Equal(t, red, content.NRGBAAt(5, 5))
	assert.Equal(t, color.NRGBA{}, content.NRGBAAt(35, 35), "outside the triangle")
	assert.Len(t, f.c.Outline(), 4)

	f.key(key.CodeDeleteForward, key.DirPress)
	assert.Equal(t, white, f.base.Image().NRGBAAt(5, 5))
	assert.Equal(t, red, f.base.Image().NRGBAAt(35, 35))
}

func TestEscapeDiscardsLasso(t *testing.T) {
	f := newFixture(t, KindFreeform, repeat)
	f.mouse(mouse.DirPress, 10, 10, 0)
	f.mouse(mouse.DirRelease, 10, 10, 0)
	f.mouse(mouse.DirNone, 30, 30, 0)
	require.Len(t, f.c.Outline(), 2)

	assert.True(t, f.key(key.CodeEscape, key.DirPress))
	assert.False(t, f.c.Building())
	assert.False(t, f.history.Locked())
	assert.Empty(t, f.c.Outline())
}

func TestBackspaceRemovesLassoVertex(t *testing.T) {
	f := newFixture(t, KindFreeform, repeat)
	f.mouse(mouse.DirPress, 10, 10, 0)
	f.mouse(mouse.DirRelease, 10, 10, 0)
	assert.True(t, f.key(key.CodeDeleteBackspace, key.DirPress))
	assert.False(t, f.c.Building())
	assert.False(t, f.history.Locked())
}

func TestSelectAllAndSnapshot(t *testing.T) {
	f := newFixture(t, KindRectangle, repeat)
	require.True(t, f.c.SelectAll())
	assert.Equal(t, geometry.V(100, 100), f.c.Geometry().Dimension)

	snap, ok := f.c.Snapshot()
	require.True(t, ok)
	assert.Equal(t, f.base.Image().Pix, snap.Content.Pix)
	assert.Equal(t, geometry.V(0, 0), snap.Position)
	assert.Equal(t, KindRectangle, snap.Shape.Kind())
}

func TestLoadIsPastedSelection(t *testing.T) {
	f := newFixture(t, KindRectangle, repeat)
	content := f.base.ReadPixels(image.Rect(10, 10, 20, 20))

	require.True(t, f.c.Load(Rectangle{}, content, geometry.V(0, 0)))
	assert.Equal(t, Idle, f.c.State())
	assert.Nil(t, f.c.Source())
	assert.False(t, f.c.Load(Rectangle{}, content, geometry.V(0, 0)), "one selection at a time")

	f.key(key.CodeEscape, key.DirPress)
	assert.Equal(t, red, f.base.Image().NRGBAAt(0, 0))
	assert.Equal(t, red, f.base.Image().NRGBAAt(15, 15), "paste does not clear anything")
	assert.Equal(t, 1, f.history.Stats().Total)
}

func TestRenderShowsLiftedSelection(t *testing.T) {
	f := newFixture(t, KindRectangle, repeat)
	f.drag(10, 10, 30, 30)
	f.drag(20, 20, 60, 60)

	view := surface.FromImage(f.base.Image(), f.base.Background())
	f.c.Render(view)
	assert.Equal(t, white, view.Image().NRGBAAt(10, 10))
	assert.Equal(t, red, view.Image().NRGBAAt(50, 50))
	assert.Equal(t, red, f.base.Image().NRGBAAt(10, 10))
}

func TestTransitionTable(t *testing.T) {
	assert.True(t, allowed(Off, Idle, onExtract))
	assert.True(t, allowed(Idle, NE, onPressHandle))
	assert.True(t, allowed(SW, Idle, onRelease))
	assert.False(t, allowed(Off, Move, onPressInside))
	assert.False(t, allowed(N, S, onPressHandle))
	assert.False(t, allowed(Move, NE, onPressHandle))
	for _, h := range handles {
		assert.True(t, h.State.Resizing())
		assert.True(t, allowed(h.State, Off, onCommit), h.State.String())
	}
	assert.Equal(t, "se", SE.String())
}

func TestNamesOutOfRange(t *testing.T) {
	assert.Equal(t, "unknown", State(42).String())
	assert.Equal(t, "unknown", trigger(-1).String())
	assert.Equal(t, "unknown", trigger(42).String())
	assert.Equal(t, "unknown", Cursor(-1).String())
	assert.Equal(t, "unknown", Cursor(42).String())
	assert.Equal(t, "press-handle", onPressHandle.String())
	assert.Equal(t, "close", CursorClose.String())
}

func TestStampRefusedWhileHistoryLocked(t *testing.T) {
	f := newFixture(t, KindRectangle, repeat)
	f.drag(10, 10, 30, 30)
	clip := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			clip.SetNRGBA(x, y, red)
		}
	}

	tx := f.history.Begin()
	before := f.pixels()
	assert.False(t, f.c.Stamp(Rectangle{}, clip, geometry.V(50, 50)))
	assert.Equal(t, before, f.pixels())
	tx.Abort()

	assert.True(t, f.c.Stamp(Rectangle{}, clip, geometry.V(50, 50)))
	assert.Equal(t, 1, f.history.Stats().Total)
	assert.Equal(t, red, f.base.Image().NRGBAAt(51, 51))
}
