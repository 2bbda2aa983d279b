package selection

import (
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/command"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/geometry"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/history"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/surface"
)

// Options configures a Controller.
type Options struct {
	Move        MoveOptions
	CloseRadius float64
	Scheduler   Scheduler
}

// Controller is the interaction state machine of one selection tool. It owns
// the active selection's geometry and content until they are committed onto
// the base surface or discarded.
//
// While an interaction spans several events (a creation drag, a lasso under
// construction, a move or a resize) the controller holds a history
// transaction, so undo and redo are refused until it settles.
type Controller struct {
	kind    Kind
	base    surface.Surface
	history *history.Stack
	extract *Extractor
	resizer Resizer
	mover   *Mover

	state   State
	geom    Geometry
	shape   Shape
	content *image.NRGBA
	source  *command.Region // nil when the content did not come from base
	tx      *history.Tx
	pressed bool
	stamps  []history.Command // held until tx closes

	listeners []func(bool)
}

// New creates the controller for one selection kind.
func New(kind Kind, base surface.Surface, h *history.Stack, opts Options) *Controller {
	c := &Controller{kind: kind, base: base, history: h}
	bounds := func() geometry.Box {
		r := base.Bounds()
		return geometry.Box{Pos: geometry.FromPoint(r.Min), Dim: geometry.FromPoint(r.Size())}
	}
	c.extract = NewExtractor(kind, bounds, opts.CloseRadius)
	c.mover = NewMover(opts.Move, opts.Scheduler, func() geometry.Box { return c.geom.Box() }, c.translate)
	return c
}

func (c *Controller) Kind() Kind                { return c.kind }
func (c *Controller) State() State              { return c.state }
func (c *Controller) Active() bool              { return c.state != Off }
func (c *Controller) Geometry() Geometry        { return c.geom }
func (c *Controller) Shape() Shape              { return c.shape }
func (c *Controller) Content() *image.NRGBA     { return c.content }
func (c *Controller) Building() bool            { return c.extract.Builder().Building() }
func (c *Controller) Cursor() Cursor            { return c.extract.Builder().Cursor() }
func (c *Controller) Mover() *Mover             { return c.mover }
func (c *Controller) Source() *command.Region   { return c.source }
func (c *Controller) OnActive(fn func(bool))    { c.listeners = append(c.listeners, fn) }
func (c *Controller) translate(d geometry.Vec2) { c.geom.Position = c.geom.Position.Add(d) }

// HandleMouse feeds one pointer event. Only the primary button drives the
// state machine; moves are ignored unless it is held, except to update lasso
// feedback.
func (c *Controller) HandleMouse(e mouse.Event) {
	p := geometry.V(float64(e.X), float64(e.Y))
	shift := e.Modifiers&key.ModShift != 0

	switch e.Direction {
	case mouse.DirPress:
		if e.Button != mouse.ButtonLeft {
			return
		}
		c.pressed = true
		c.press(p, shift)
	case mouse.DirRelease:
		if e.Button != mouse.ButtonLeft || !c.pressed {
			return
		}
		c.pressed = false
		c.release(p, shift)
	case mouse.DirNone:
		if c.pressed {
			c.drag(p, shift)
		} else if c.state == Off {
			c.extract.Builder().Move(p, shift)
		}
	}
}

func (c *Controller) press(p geometry.Vec2, shift bool) {
	switch c.state {
	case Off:
		c.beginCreate(p, shift)
	case Idle:
		box := c.geom.Box()
		if h, ok := HandleAt(box, p); ok {
			c.beginTx()
			c.resizer.Start(c.geom, h)
			c.transition(h.State, onPressHandle)
			return
		}
		if box.Contains(p) {
			c.beginTx()
			c.mover.StartDrag(box, p)
			c.transition(Move, onPressInside)
			return
		}
		c.commit(onPressOutside)
		c.beginCreate(p, shift)
	}
}

func (c *Controller) beginCreate(p geometry.Vec2, shift bool) {
	c.beginTx()
	c.extract.Builder().Press(p, shift)
}

func (c *Controller) drag(p geometry.Vec2, shift bool) {
	switch {
	case c.state == Off:
		c.extract.Builder().Move(p, shift)
	case c.state == Move && c.mover.Dragging():
		c.geom.Position = c.mover.Drag(p)
	case c.state.Resizing():
		c.geom = c.resizer.Resize(c.geom, p, shift)
	}
}

func (c *Controller) release(p geometry.Vec2, shift bool) {
	switch {
	case c.state == Off:
		b := c.extract.Builder()
		if cand, ok := b.Release(p, shift); ok {
			c.finishCreate(cand)
		} else if !b.Building() {
			c.abortTx()
		}
	case c.state == Move && c.mover.Dragging():
		c.geom.Position = c.mover.Drag(p)
		c.mover.EndDrag()
		c.settle()
	case c.state.Resizing():
		c.geom = c.resizer.Resize(c.geom, p, shift)
		c.settle()
	}
}

func (c *Controller) settle() {
	c.geom.settle()
	c.transition(Idle, onRelease)
	c.finishTx()
}

// DoubleClick closes a lasso under construction.
func (c *Controller) DoubleClick(p geometry.Vec2) bool {
	if c.state != Off {
		return false
	}
	cand, ok := c.extract.Builder().DoubleClick(p)
	if !ok {
		return false
	}
	c.pressed = false
	c.finishCreate(cand)
	return true
}

func (c *Controller) finishCreate(cand Candidate) {
	if !c.lift(cand, onExtract) {
		c.abortTx()
		return
	}
	c.finishTx()
}

// HandleKey feeds one keyboard event and reports whether it was consumed.
func (c *Controller) HandleKey(e key.Event) bool {
	if d, ok := arrow(e.Code); ok {
		switch e.Direction {
		case key.DirPress:
			return c.arrowDown(d)
		case key.DirRelease:
			return c.arrowUp(d)
		}
		// OS auto-repeat is replaced by the mover's own timer.
		return c.state == Move
	}
	if e.Direction != key.DirPress {
		return false
	}
	switch e.Code {
	case key.CodeEscape:
		return c.Escape()
	case key.CodeDeleteBackspace:
		if c.Building() {
			c.extract.Builder().Undo()
			if !c.Building() {
				c.abortTx()
			}
			return true
		}
		return c.Delete()
	case key.CodeDeleteForward:
		return c.Delete()
	}
	return false
}

func arrow(code key.Code) (Direction, bool) {
	switch code {
	case key.CodeUpArrow:
		return Up, true
	case key.CodeDownArrow:
		return Down, true
	case key.CodeLeftArrow:
		return Left, true
	case key.CodeRightArrow:
		return Right, true
	}
	return 0, false
}

func (c *Controller) arrowDown(d Direction) bool {
	switch {
	case c.state == Idle:
		c.beginTx()
		c.transition(Move, onKeyMove)
		c.mover.KeyDown(d)
	case c.state == Move && !c.mover.Dragging():
		c.mover.KeyDown(d)
	default:
		return false
	}
	return true
}

func (c *Controller) arrowUp(d Direction) bool {
	if c.state != Move || c.mover.Dragging() {
		return false
	}
	if c.mover.KeyUp(d) {
		c.geom.settle()
		c.transition(Idle, onKeysReleased)
		c.finishTx()
	}
	return true
}

// Escape drops a lasso or creation drag in progress, or commits the active
// selection.
func (c *Controller) Escape() bool {
	if c.state == Off {
		if !c.Building() {
			return false
		}
		c.extract.Builder().Cancel()
		c.pressed = false
		c.abortTx()
		return true
	}
	return c.Commit()
}

// Deactivate ends any interaction, as when another tool is selected.
func (c *Controller) Deactivate() {
	c.Escape()
}

// SelectAll commits any active selection and selects the whole canvas.
func (c *Controller) SelectAll() bool {
	c.Escape()
	return c.lift(c.extract.SelectAll(), onSelectAll)
}

// Commit places the selection onto the base surface and returns to Off.
// A selection that never moved is released without recording a command.
func (c *Controller) Commit() bool {
	return c.commit(onCommit)
}

func (c *Controller) commit(on trigger) bool {
	if c.state == Off {
		return false
	}
	c.mover.Stop()
	var cmds []history.Command
	if c.source == nil || c.geom.Changed() {
		cmd := command.NewPlace(c.base, c.source, c.Placement())
		cmd.Apply()
		cmds = append(cmds, cmd)
	}
	c.transition(Off, on)
	c.clear()
	c.finishTx(cmds...)
	return true
}

// Delete discards the selection and clears where it came from.
func (c *Controller) Delete() bool {
	if c.state == Off {
		return false
	}
	c.mover.Stop()
	var cmds []history.Command
	if c.source != nil {
		cmd := command.NewDelete(c.base, *c.source)
		cmd.Apply()
		cmds = append(cmds, cmd)
	}
	c.transition(Off, onDelete)
	c.clear()
	c.finishTx(cmds...)
	return true
}

// Load makes content an Idle selection at pos, as pasted from the clipboard.
// It refuses while a selection is active.
func (c *Controller) Load(shape Shape, content *image.NRGBA, pos geometry.Vec2) bool {
	if c.state != Off || c.Building() || content == nil {
		return false
	}
	size := geometry.FromPoint(content.Bounds().Size())
	c.geom = newGeometry(geometry.Box{Pos: pos, Dim: size})
	c.shape = shape
	c.content = imaging.Clone(content)
	c.source = nil
	return c.transition(Idle, onLoad)
}

// Stamp draws content straight onto the base surface at pos and records it.
// During an interaction the stamp waits until the interaction ends. It
// reports false when another transaction holds the history.
func (c *Controller) Stamp(shape Shape, content *image.NRGBA, pos geometry.Vec2) bool {
	size := content.Bounds().Size()
	at := pos.Point()
	cmd := command.NewPlace(c.base, nil, command.Placement{
		Content: content,
		Dest:    image.Rectangle{Min: at, Max: at.Add(size)},
		Mask:    shape.Mask(size, surface.Flip{}),
	})
	switch {
	case c.tx.Open():
		c.stamps = append(c.stamps, cmd)
	case c.history.Locked():
		return false
	default:
		c.history.Execute(cmd)
	}
	return true
}

// Snapshot is selection content as it currently appears, detached from the
// controller.
type Snapshot struct {
	Shape    Shape
	Content  *image.NRGBA
	Position geometry.Vec2
}

// Snapshot captures the Idle selection with its resize and flip baked in.
func (c *Controller) Snapshot() (Snapshot, bool) {
	if c.state != Idle {
		return Snapshot{}, false
	}
	p := c.Placement()
	size := geometry.FromPoint(p.Dest.Size())
	return Snapshot{
		Shape:    c.shape.Reshape(size, c.geom.Flip),
		Content:  p.Render(),
		Position: geometry.FromPoint(p.Dest.Min),
	}, true
}

// Placement describes how the content lands on the surface right now.
func (c *Controller) Placement() command.Placement {
	dest := c.geom.Box().Rect()
	return command.Placement{
		Content: c.content,
		Dest:    dest,
		Flip:    c.geom.Flip,
		Mask:    c.shape.Mask(dest.Size(), c.geom.Flip),
	}
}

// Preview renders the content at its current size and flip.
func (c *Controller) Preview() *image.NRGBA {
	if c.state == Off {
		return nil
	}
	return c.Placement().Render()
}

// Outline is the path to draw over the canvas: the lasso or drag box in
// progress, or the active selection's shape.
func (c *Controller) Outline() []geometry.Vec2 {
	if c.state == Off {
		return c.extract.Builder().Path()
	}
	return c.shape.Outline(c.geom.Box(), c.geom.Flip)
}

// Render paints the lifted selection onto dst, a copy of the base surface.
func (c *Controller) Render(dst surface.Surface) {
	if c.state == Off {
		return
	}
	if c.source != nil {
		var mask image.Image
		if c.source.Mask != nil {
			mask = c.source.Mask
		}
		dst.ClearMask(c.source.Rect, mask)
	}
	p := c.Placement()
	dst.DrawPixels(p.Render(), p.Dest.Min)
}

// lift captures the candidate's pixels from base and makes it the Idle
// selection.
func (c *Controller) lift(cand Candidate, on trigger) bool {
	rect := cand.Box.Rect().Intersect(c.base.Bounds())
	if rect.Empty() {
		return false
	}
	box := geometry.Box{Pos: geometry.FromPoint(rect.Min), Dim: geometry.FromPoint(rect.Size())}
	shape := cand.Shape
	if f, ok := shape.(Freeform); ok {
		shape = f.rebase(cand.Box.Normalize(), box)
	}
	mask := shape.Mask(rect.Size(), surface.Flip{})
	content := c.base.ReadPixels(rect)
	surface.ApplyMask(content, mask)

	c.geom = newGeometry(box)
	c.shape = shape
	c.content = content
	c.source = &command.Region{Rect: rect, Mask: mask}
	return c.transition(Idle, on)
}

func (c *Controller) clear() {
	c.geom = Geometry{}
	c.shape = nil
	c.content = nil
	c.source = nil
	c.pressed = false
}

func (c *Controller) transition(to State, on trigger) bool {
	from := c.state
	if !allowed(from, to, on) {
		slog.Warn("selection transition refused", "kind", c.kind, "from", from, "to", to, "trigger", on)
		return false
	}
	c.state = to
	slog.Debug("selection transition", "kind", c.kind, "from", from, "to", to, "trigger", on)
	if (from == Off) != (to == Off) {
		for _, fn := range c.listeners {
			fn(to != Off)
		}
	}
	return true
}

func (c *Controller) beginTx() {
	if !c.tx.Open() {
		c.tx = c.history.Begin()
	}
}

// finishTx closes the interaction's transaction, recording cmds. Commands
// produced outside an interaction go straight onto the stack.
func (c *Controller) finishTx(cmds ...history.Command) {
	if c.tx.Open() {
		c.tx.Commit(cmds...)
		c.tx = nil
	} else {
		for _, cmd := range cmds {
			c.history.Push(cmd)
		}
	}
	c.flushStamps()
}

func (c *Controller) abortTx() {
	if c.tx.Open() {
		c.tx.Abort()
	}
	c.tx = nil
	c.flushStamps()
}

func (c *Controller) flushStamps() {
	stamps := c.stamps
	c.stamps = nil
	for _, cmd := range stamps {
		c.history.Execute(cmd)
	}
}
