package selection

import (
	"time"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/geometry"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/grid"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. Callbacks must be delivered on the goroutine
// that owns the selection.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Direction is a set of held arrow keys.
type Direction uint8

const (
	Up Direction = 1 << iota
	Down
	Left
	Right
)

// Vector is the unit offset of all held directions combined.
func (d Direction) Vector() geometry.Vec2 {
	var v geometry.Vec2
	if d&Up != 0 {
		v.Y--
	}
	if d&Down != 0 {
		v.Y++
	}
	if d&Left != 0 {
		v.X--
	}
	if d&Right != 0 {
		v.X++
	}
	return v
}

// MoveOptions configures the move engine.
type MoveOptions struct {
	Grid     grid.Grid
	Magnet   bool
	Anchor   geometry.Anchor9
	Step     float64
	Delay    time.Duration
	Interval time.Duration
}

// Mover translates a selection box from pointer drags and held arrow keys.
type Mover struct {
	opts  MoveOptions
	sched Scheduler

	// drag
	dragging    bool
	startCursor geometry.Vec2
	startPos    geometry.Vec2
	startRef    geometry.Vec2

	// keys
	held  Direction
	timer Timer
	gen   int
	box   func() geometry.Box
	apply func(delta geometry.Vec2)
}

// NewMover creates a mover. box reports the current selection box and apply
// translates it; both are used by repeating key moves.
func NewMover(opts MoveOptions, sched Scheduler, box func() geometry.Box, apply func(geometry.Vec2)) *Mover {
	return &Mover{opts: opts, sched: sched, box: box, apply: apply}
}

func (m *Mover) SetMagnet(on bool) { m.opts.Magnet = on }

func (m *Mover) Magnet() bool { return m.opts.Magnet }

func (m *Mover) SetAnchor(a geometry.Anchor9) { m.opts.Anchor = a }

// StartDrag records the cursor and box at the start of a pointer move.
func (m *Mover) StartDrag(b geometry.Box, cursor geometry.Vec2) {
	m.dragging = true
	m.startCursor = cursor
	m.startPos = b.Pos
	m.startRef = b.Point(m.opts.Anchor)
}

// Drag returns the box position for the cursor. In magnet mode the reference
// point snaps to the nearest grid intersection.
func (m *Mover) Drag(cursor geometry.Vec2) geometry.Vec2 {
	if !m.dragging {
		return m.startPos
	}
	delta := cursor.Sub(m.startCursor)
	if m.magnetic() {
		ref := m.startRef.Add(delta)
		snapped := geometry.Vec2{X: m.opts.Grid.Nearest(ref.X), Y: m.opts.Grid.Nearest(ref.Y)}
		delta = snapped.Sub(m.startRef)
	}
	return m.startPos.Add(delta)
}

func (m *Mover) EndDrag() { m.dragging = false }

func (m *Mover) Dragging() bool { return m.dragging }

// Held returns the arrow keys currently down.
func (m *Mover) Held() Direction { return m.held }

// KeyDown adds d to the held set and moves one quantum in d at once. The first
// key down arms the repeat timer.
func (m *Mover) KeyDown(d Direction) {
	if m.held&d != 0 {
		return
	}
	first := m.held == 0
	m.held |= d
	m.apply(m.keyDelta(d))
	if first {
		m.arm(m.opts.Delay)
	}
}

// KeyUp removes d from the held set. It reports true once no key is held.
func (m *Mover) KeyUp(d Direction) bool {
	m.held &^= d
	if m.held != 0 {
		return false
	}
	m.Stop()
	return true
}

// Stop cancels key repeat and forgets held keys.
func (m *Mover) Stop() {
	m.held = 0
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.dragging = false
}

func (m *Mover) arm(d time.Duration) {
	if m.sched == nil {
		return
	}
	gen := m.gen
	m.timer = m.sched.AfterFunc(d, func() {
		// A stopped timer may still deliver a callback that was already queued.
		if gen != m.gen || m.held == 0 {
			return
		}
		m.apply(m.keyDelta(m.held))
		m.arm(m.opts.Interval)
	})
}

// keyDelta is the translation for one repeat tick of the held directions.
func (m *Mover) keyDelta(d Direction) geometry.Vec2 {
	v := d.Vector()
	if !m.magnetic() {
		return v.Scale(m.opts.Step)
	}
	ref := m.box().Point(m.opts.Anchor)
	target := geometry.Vec2{X: m.opts.Grid.Step(ref.X, v.X), Y: m.opts.Grid.Step(ref.Y, v.Y)}
	return target.Sub(ref)
}

func (m *Mover) magnetic() bool { return m.opts.Magnet && m.opts.Grid.Enabled() }

// ClockScheduler schedules on the runtime timer. Its callbacks run on their own
// goroutine, so it suits only callers that serialize access themselves.
type ClockScheduler struct{}

func (ClockScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
