// Package editor is the bitmap editor a session drives: a base surface, the
// undo history, the clipboard and one selection controller per selection
// tool.
//
// An Engine is not safe for concurrent use. Every call, including the
// callbacks handed to its Runtime, must happen on the goroutine that owns it.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/clipboard"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/command"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/geometry"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/history"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/selection"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/surface"
)

var (
	ErrInvalidSize = errors.New("invalid canvas size")
	ErrLocked      = errors.New("an interaction is in progress")
	ErrNoImage     = errors.New("no image")
)

// Runtime delivers deferred work back onto the engine's goroutine: key repeat
// timers and decoded clipboard content.
type Runtime interface {
	selection.Scheduler
	clipboard.Poster
}

// Engine owns the drawing and processes input from the frontend.
type Engine struct {
	opts Options

	base       *surface.Raster
	history    *history.Stack
	clipboard  *clipboard.Manager
	selections map[selection.Kind]*selection.Controller

	tool   Tool
	magnet bool

	listeners []func()
}

// New creates an engine with a blank canvas.
func New(opts Options, rt Runtime) *Engine {
	e := &Engine{
		opts:       opts,
		base:       surface.NewRaster(opts.Width, opts.Height, opts.Background),
		history:    history.NewStack(opts.UndoCapacity),
		selections: make(map[selection.Kind]*selection.Controller),
		magnet:     opts.Magnet,
	}
	for _, k := range []selection.Kind{selection.KindRectangle, selection.KindEllipse, selection.KindFreeform} {
		e.selections[k] = selection.New(k, e.base, e.history, opts.selection(notifier{rt, e}))
	}
	e.clipboard = clipboard.NewManager(e, rt, opts.PasteAt)
	return e
}

// notifier reports a change after every timer callback, since key repeat
// moves the selection outside any engine command.
type notifier struct {
	selection.Scheduler
	e *Engine
}

func (n notifier) AfterFunc(d time.Duration, f func()) selection.Timer {
	return n.Scheduler.AfterFunc(d, func() {
		f()
		n.e.changed()
	})
}

// OnChange registers an observer called after any command that may have
// changed the view.
func (e *Engine) OnChange(fn func()) { e.listeners = append(e.listeners, fn) }

func (e *Engine) changed() {
	for _, fn := range e.listeners {
		fn()
	}
}

// current is the controller of the active tool, nil for non-selection tools.
func (e *Engine) current() *selection.Controller {
	k, ok := e.tool.Kind()
	if !ok {
		return nil
	}
	return e.selections[k]
}

// Selection implements clipboard.Tools.
func (e *Engine) Selection(k selection.Kind) clipboard.Target { return e.selections[k] }

// Activate implements clipboard.Tools.
func (e *Engine) Activate(k selection.Kind) { e.SelectTool(toolFor(k)) }

// --- Commands ---

// SelectTool switches tools. The previous selection tool is deactivated,
// committing its selection.
func (e *Engine) SelectTool(t Tool) bool {
	if t == e.tool {
		return false
	}
	if c := e.current(); c != nil {
		c.Deactivate()
	}
	slog.Debug("tool selected", "from", e.tool, "to", t)
	e.tool = t
	e.changed()
	return true
}

// HandleMouse forwards a pointer event to the active selection tool.
func (e *Engine) HandleMouse(ev mouse.Event) {
	c := e.current()
	if c == nil {
		return
	}
	c.HandleMouse(ev)
	e.changed()
}

// DoubleClick closes a lasso under construction.
func (e *Engine) DoubleClick(p geometry.Vec2) bool {
	c := e.current()
	if c == nil || !c.DoubleClick(p) {
		return false
	}
	e.changed()
	return true
}

// HandleKey handles editor shortcuts and forwards the rest to the active
// selection tool. It reports whether the event was consumed.
func (e *Engine) HandleKey(ev key.Event) bool {
	if ev.Direction == key.DirPress && ev.Modifiers&key.ModControl != 0 {
		return e.shortcut(ev)
	}
	if ev.Direction == key.DirPress && ev.Code == key.CodeG && ev.Modifiers == 0 {
		e.SetMagnet(!e.magnet)
		return true
	}

	cancelled := false
	if ev.Direction == key.DirPress && ev.Code == key.CodeEscape && e.clipboard.Pending() {
		e.clipboard.Cancel()
		cancelled = true
	}
	c := e.current()
	if c == nil || !c.HandleKey(ev) {
		if cancelled {
			e.changed()
		}
		return cancelled
	}
	e.changed()
	return true
}

func (e *Engine) shortcut(ev key.Event) bool {
	switch ev.Code {
	case key.CodeZ:
		if ev.Modifiers&key.ModShift != 0 {
			return e.Redo()
		}
		return e.Undo()
	case key.CodeC:
		ok, err := e.Copy()
		if err != nil {
			slog.Error("copy failed", "error", err)
		}
		return ok
	case key.CodeX:
		ok, err := e.Cut()
		if err != nil {
			slog.Error("cut failed", "error", err)
		}
		return ok
	case key.CodeV:
		return e.Paste(context.Background()) == nil
	case key.CodeA:
		return e.SelectAll()
	}
	return false
}

// Undo reverts the last command. It is refused during an interaction.
func (e *Engine) Undo() bool {
	if !e.history.Undo() {
		slog.Debug("undo refused", "locked", e.history.Locked())
		return false
	}
	e.changed()
	return true
}

// Redo reapplies the next command. It is refused during an interaction.
func (e *Engine) Redo() bool {
	if !e.history.Redo() {
		slog.Debug("redo refused", "locked", e.history.Locked())
		return false
	}
	e.changed()
	return true
}

// Copy copies the active Idle selection.
func (e *Engine) Copy() (bool, error) {
	c := e.current()
	if c == nil {
		return false, nil
	}
	ok, err := e.clipboard.Copy(c)
	if ok {
		e.changed()
	}
	return ok, err
}

// Cut copies the active Idle selection and deletes it.
func (e *Engine) Cut() (bool, error) {
	c := e.current()
	if c == nil {
		return false, nil
	}
	ok, err := e.clipboard.Cut(c)
	if ok {
		e.changed()
	}
	return ok, err
}

// Paste starts pasting the clipboard. The content shows up once the Runtime
// delivers the decoded image.
func (e *Engine) Paste(ctx context.Context) error {
	err := e.clipboard.Paste(ctx, func(err error) {
		if err != nil {
			slog.Warn("paste failed", "error", err)
		}
		e.changed()
	})
	if err != nil {
		slog.Debug("paste refused", "error", err)
		return err
	}
	e.changed()
	return nil
}

// SelectAll selects the whole canvas with the active selection tool.
func (e *Engine) SelectAll() bool {
	c := e.current()
	if c == nil || !c.SelectAll() {
		return false
	}
	e.changed()
	return true
}

// Delete discards the active selection, clearing where it was lifted from.
func (e *Engine) Delete() bool {
	c := e.current()
	if c == nil || !c.Delete() {
		return false
	}
	e.changed()
	return true
}

// SetMagnet turns grid snapping of selection moves on or off.
func (e *Engine) SetMagnet(on bool) {
	e.magnet = on
	for _, c := range e.selections {
		c.Mover().SetMagnet(on)
	}
	e.changed()
}

// SetMagnetAnchor picks the point of the selection box that snaps to the grid.
func (e *Engine) SetMagnetAnchor(a geometry.Anchor9) {
	for _, c := range e.selections {
		c.Mover().SetAnchor(a)
	}
}

// ResizeCanvas commits the active selection and resizes the canvas as an
// undoable command.
func (e *Engine) ResizeCanvas(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize canvas to %dx%d: %w", width, height, ErrInvalidSize)
	}
	if err := e.settle(); err != nil {
		return fmt.Errorf("resize canvas: %w", err)
	}
	e.history.Execute(command.NewResizeCanvas(e.base, width, height))
	e.changed()
	return nil
}

// LoadImage replaces the drawing with img, resizing the canvas to fit.
func (e *Engine) LoadImage(img image.Image) error {
	if img == nil {
		return ErrNoImage
	}
	if img.Bounds().Empty() {
		return fmt.Errorf("load image: %w", ErrInvalidSize)
	}
	if err := e.settle(); err != nil {
		return fmt.Errorf("load image: %w", err)
	}
	e.history.Execute(command.NewImport(e.base, imaging.Clone(img)))
	e.changed()
	return nil
}

// settle commits the active selection and fails if an interaction is still
// holding the history.
func (e *Engine) settle() error {
	if c := e.current(); c != nil {
		c.Deactivate()
	}
	if e.history.Locked() {
		return ErrLocked
	}
	return nil
}

// --- Queries ---

// View is the engine state sent to the frontend after every event.
type View struct {
	Tool         Tool           `json:"tool"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	Magnet       bool           `json:"magnet"`
	HasClipboard bool           `json:"hasClipboard"`
	Pasting      bool           `json:"pasting"`
	History      history.Stats  `json:"history"`
	Selection    *SelectionView `json:"selection,omitempty"`
}

// SelectionView describes the active tool's selection or construction.
type SelectionView struct {
	Kind     selection.Kind     `json:"kind"`
	State    selection.State    `json:"state"`
	Geometry selection.Geometry `json:"geometry"`
	Cursor   selection.Cursor   `json:"cursor"`
	Building bool               `json:"building"`
}

// State returns the current view.
func (e *Engine) State() View {
	size := e.base.Bounds().Size()
	v := View{
		Tool:         e.tool,
		Width:        size.X,
		Height:       size.Y,
		Magnet:       e.magnet,
		HasClipboard: e.clipboard.HasData(),
		Pasting:      e.clipboard.Pending(),
		History:      e.history.Stats(),
	}
	if c := e.current(); c != nil && (c.Active() || c.Building()) {
		v.Selection = &SelectionView{
			Kind:     c.Kind(),
			State:    c.State(),
			Geometry: c.Geometry(),
			Cursor:   c.Cursor(),
			Building: c.Building(),
		}
	}
	return v
}

// Composite renders the canvas as the user sees it, lifted selection
// included.
func (e *Engine) Composite() *image.NRGBA {
	dst := surface.FromImage(e.base.Image(), e.base.Background())
	if c := e.current(); c != nil {
		c.Render(dst)
	}
	return dst.Image()
}

// Base exposes the committed drawing.
func (e *Engine) Base() *surface.Raster { return e.base }

// Tool returns the active tool.
func (e *Engine) Tool() Tool { return e.tool }
