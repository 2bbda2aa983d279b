package clipboard

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/geometry"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/history"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/selection"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/surface"
)

var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	red   = color.NRGBA{R: 255, A: 255}
)

// queue is a Poster the test drains by hand.
type queue chan func()

func (q queue) Post(fn func()) { q <- fn }

type tools struct {
	byKind    map[selection.Kind]*selection.Controller
	activated []selection.Kind
}

func (t *tools) Selection(k selection.Kind) Target { return t.byKind[k] }
func (t *tools) Activate(k selection.Kind)         { t.activated = append(t.activated, k) }

type env struct {
	base    *surface.Raster
	history *history.Stack
	rect    *selection.Controller
	tools   *tools
	posts   queue
	m       *Manager
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		base:    surface.NewRaster(60, 60, white),
		history: history.NewStack(0),
		posts:   make(queue, 1),
	}
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			e.base.Image().SetNRGBA(x, y, red)
		}
	}
	e.base.Image().SetNRGBA(11, 12, color.NRGBA{G: 90, A: 200})
	e.rect = selection.New(selection.KindRectangle, e.base, e.history, selection.Options{})
	e.tools = &tools{byKind: map[selection.Kind]*selection.Controller{selection.KindRectangle: e.rect}}
	e.m = NewManager(e.tools, e.posts, geometry.V(0, 0))
	return e
}

func (e *env) selectRect(x0, y0, x1, y1 float32) {
	e.rect.HandleMouse(mouse.Event{X: x0, Y: y0, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	e.rect.HandleMouse(mouse.Event{X: x1, Y: y1, Direction: mouse.DirNone})
	e.rect.HandleMouse(mouse.Event{X: x1, Y: y1, Button: mouse.ButtonLeft, Direction: mouse.DirRelease})
}

func (e *env) escape() {
	e.rect.HandleKey(key.Event{Code: key.CodeEscape, Direction: key.DirPress})
}

// paste runs a paste to completion and returns its outcome.
func (e *env) paste(t *testing.T) error {
	t.Helper()
	var got error
	called := false
	require.NoError(t, e.m.Paste(context.Background(), func(err error) { got, called = err, true }))
	(<-e.posts)()
	require.True(t, called)
	return got
}

func TestCopyPasteReproducesPixels(t *testing.T) {
	e := newEnv(t)
	src := e.base.ReadPixels(image.Rect(10, 10, 20, 20))
	var data []bool
	e.m.OnData(func(on bool) { data = append(data, on) })

	e.selectRect(10, 10, 20, 20)
	ok, err := e.m.Copy(e.rect)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, e.m.HasData())
	assert.Equal(t, []bool{true}, data)
	e.escape()

	require.NoError(t, e.paste(t))
	assert.Equal(t, selection.Idle, e.rect.State())
	assert.Equal(t, []selection.Kind{selection.KindRectangle}, e.tools.activated)
	assert.Equal(t, geometry.V(0, 0), e.rect.Geometry().Position)
	assert.Equal(t, src.Pix, e.rect.Content().Pix)

	e.escape()
	assert.Equal(t, red, e.base.Image().NRGBAAt(5, 5))
	assert.Equal(t, 1, e.history.Stats().Total)
}

func TestCutPasteRestoresContent(t *testing.T) {
	e := newEnv(t)
	src := e.base.ReadPixels(image.Rect(10, 10, 20, 20))

	e.selectRect(10, 10, 20, 20)
	ok, err := e.m.Cut(e.rect)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, selection.Off, e.rect.State())
	assert.Equal(t, white, e.base.Image().NRGBAAt(15, 15), "cut clears the source")

	require.NoError(t, e.paste(t))
	assert.Equal(t, src.Pix, e.rect.Content().Pix)
}

func TestPasteOverActiveSelectionStamps(t *testing.T) {
	e := newEnv(t)
	e.selectRect(10, 10, 30, 30)
	_, err := e.m.Copy(e.rect)
	require.NoError(t, err)

	// Move the live selection away, then paste: the clip lands where it was copied.
	e.rect.HandleMouse(mouse.Event{X: 20, Y: 20, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	e.rect.HandleMouse(mouse.Event{X: 50, Y: 50, Direction: mouse.DirNone})
	e.rect.HandleMouse(mouse.Event{X: 50, Y: 50, Button: mouse.ButtonLeft, Direction: mouse.DirRelease})
	require.Equal(t, geometry.V(40, 40), e.rect.Geometry().Position)

	require.NoError(t, e.paste(t))
	assert.Empty(t, e.tools.activated)
	assert.Equal(t, selection.Idle, e.rect.State())
	assert.Equal(t, geometry.V(40, 40), e.rect.Geometry().Position, "the live selection is untouched")
	assert.Equal(t, 1, e.history.Stats().Total)
	e.history.Undo()
	assert.Equal(t, "paste", e.history.Stats().Next)
}

func TestPasteDuringMoveWaitsForRelease(t *testing.T) {
	e := newEnv(t)
	e.selectRect(10, 10, 30, 30)
	_, err := e.m.Copy(e.rect)
	require.NoError(t, err)

	e.rect.HandleMouse(mouse.Event{X: 20, Y: 20, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	e.rect.HandleMouse(mouse.Event{X: 50, Y: 50, Direction: mouse.DirNone})
	require.True(t, e.history.Locked())

	require.NoError(t, e.paste(t))
	assert.True(t, e.history.Locked(), "the move is still in progress")
	assert.Equal(t, 0, e.history.Stats().Total)

	e.rect.HandleMouse(mouse.Event{X: 50, Y: 50, Button: mouse.ButtonLeft, Direction: mouse.DirRelease})
	assert.False(t, e.history.Locked())
	assert.Equal(t, 1, e.history.Stats().Total)
	require.True(t, e.history.Undo())
	assert.Equal(t, "paste", e.history.Stats().Next)
}

func TestPasteErrors(t *testing.T) {
	e := newEnv(t)
	assert.ErrorIs(t, e.m.Paste(context.Background(), nil), ErrEmpty)

	e.selectRect(10, 10, 20, 20)
	_, err := e.m.Copy(e.rect)
	require.NoError(t, err)
	e.escape()

	require.NoError(t, e.m.Paste(context.Background(), nil))
	assert.ErrorIs(t, e.m.Paste(context.Background(), nil), ErrBusy)
	(<-e.posts)()
	assert.False(t, e.m.Pending())
}

func TestDecodeFailureLeavesStateUnchanged(t *testing.T) {
	e := newEnv(t)
	e.selectRect(10, 10, 20, 20)
	_, err := e.m.Copy(e.rect)
	require.NoError(t, err)
	e.escape()
	e.m.Clip().Data = []byte("not a png")

	err = e.paste(t)
	assert.ErrorIs(t, err, ErrDecode)
	assert.Equal(t, selection.Off, e.rect.State())
	assert.Empty(t, e.tools.activated)
}

func TestCancelDiscardsPaste(t *testing.T) {
	e := newEnv(t)
	e.selectRect(10, 10, 20, 20)
	_, err := e.m.Copy(e.rect)
	require.NoError(t, err)
	e.escape()

	called := false
	require.NoError(t, e.m.Paste(context.Background(), func(error) { called = true }))
	e.m.Cancel()
	(<-e.posts)()
	assert.False(t, called)
	assert.Equal(t, selection.Off, e.rect.State())
}

func TestCopyNeedsIdleSelection(t *testing.T) {
	e := newEnv(t)
	ok, err := e.m.Copy(e.rect)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, e.m.HasData())
}
