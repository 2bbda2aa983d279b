// Package selection implements the interactive selection tools: creating a
// rectangle, ellipse or lasso selection, then moving, resizing, flipping and
// committing it onto the drawing surface.
package selection

import "fmt"

// State is the interaction state of one selection tool.
type State int

const (
	Off State = iota
	Idle
	Move
	N
	S
	E
	W
	NE
	NW
	SE
	SW
)

var stateNames = [...]string{"off", "idle", "move", "n", "s", "e", "w", "ne", "nw", "se", "sw"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Resizing reports whether s is one of the eight handle drag states.
func (s State) Resizing() bool { return s >= N && s <= SW }

// MarshalText encodes the state by name for JSON views.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	for i, n := range stateNames {
		if n == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown selection state %q", b)
}

type trigger int

// Triggers are the input events that may change the state. onExtract fires
// when a creation drag or lasso finishes with a non-empty area; onCommit covers
// escape and tool switches.
const (
	onExtract trigger = iota
	onSelectAll
	onLoad
	onPressInside
	onPressHandle
	onPressOutside
	onRelease
	onKeyMove
	onKeysReleased
	onCommit
	onDelete
)

var triggerNames = [...]string{
	"extract", "select-all", "load", "press-inside", "press-handle",
	"press-outside", "release", "key-move", "keys-released", "commit", "delete",
}

func (t trigger) String() string {
	if t < 0 || int(t) >= len(triggerNames) {
		return "unknown"
	}
	return triggerNames[t]
}

type edge struct {
	on trigger
	to State
}

var transitions = func() map[State][]edge {
	t := map[State][]edge{
		Off: {
			{onExtract, Idle},
			{onSelectAll, Idle},
			{onLoad, Idle},
		},
		Idle: {
			{onPressInside, Move},
			{onKeyMove, Move},
			{onPressOutside, Off},
			{onCommit, Off},
			{onDelete, Off},
		},
		Move: {
			{onRelease, Idle},
			{onKeysReleased, Idle},
			{onCommit, Off},
			{onDelete, Off},
		},
	}
	for _, h := range handles {
		t[Idle] = append(t[Idle], edge{onPressHandle, h.State})
		t[h.State] = []edge{
			{onRelease, Idle},
			{onCommit, Off},
			{onDelete, Off},
		}
	}
	return t
}()

func allowed(from, to State, on trigger) bool {
	for _, e := range transitions[from] {
		if e.on == on && e.to == to {
			return true
		}
	}
	return false
}
