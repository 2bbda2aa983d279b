package editor

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
)

var ErrBadInput = errors.New("unsupported input")

// MouseInput is a browser pointer event.
type MouseInput struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button string  `json:"button,omitempty"` // "left", "middle", "right"
	Action string  `json:"action"`           // "down", "up", "move"
	Shift  bool    `json:"shift,omitempty"`
	Ctrl   bool    `json:"ctrl,omitempty"`
}

// KeyInput is a browser keyboard event. Key holds KeyboardEvent.key.
type KeyInput struct {
	Key    string `json:"key"`
	Action string `json:"action"` // "down", "up"
	Repeat bool   `json:"repeat,omitempty"`
	Shift  bool   `json:"shift,omitempty"`
	Ctrl   bool   `json:"ctrl,omitempty"`
}

func modifiers(shift, ctrl bool) key.Modifiers {
	var m key.Modifiers
	if shift {
		m |= key.ModShift
	}
	if ctrl {
		m |= key.ModControl
	}
	return m
}

// Event converts the input into the editor's pointer event.
func (p MouseInput) Event() (mouse.Event, error) {
	e := mouse.Event{X: float32(p.X), Y: float32(p.Y), Modifiers: modifiers(p.Shift, p.Ctrl)}
	switch p.Action {
	case "down":
		e.Direction = mouse.DirPress
	case "up":
		e.Direction = mouse.DirRelease
	case "move":
		e.Direction = mouse.DirNone
	default:
		return mouse.Event{}, fmt.Errorf("%w: mouse action %q", ErrBadInput, p.Action)
	}
	switch p.Button {
	case "left":
		e.Button = mouse.ButtonLeft
	case "middle":
		e.Button = mouse.ButtonMiddle
	case "right":
		e.Button = mouse.ButtonRight
	case "":
		if e.Direction != mouse.DirNone {
			return mouse.Event{}, fmt.Errorf("%w: %s without a button", ErrBadInput, p.Action)
		}
	default:
		return mouse.Event{}, fmt.Errorf("%w: mouse button %q", ErrBadInput, p.Button)
	}
	return e, nil
}

var namedKeys = map[string]key.Code{
	"ArrowUp":    key.CodeUpArrow,
	"ArrowDown":  key.CodeDownArrow,
	"ArrowLeft":  key.CodeLeftArrow,
	"ArrowRight": key.CodeRightArrow,
	"Escape":     key.CodeEscape,
	"Backspace":  key.CodeDeleteBackspace,
	"Delete":     key.CodeDeleteForward,
	"Shift":      key.CodeLeftShift,
	"Control":    key.CodeLeftControl,
}

// Event converts the input into the editor's keyboard event. Browser
// auto-repeat arrives as DirNone.
func (p KeyInput) Event() (key.Event, error) {
	e := key.Event{Rune: -1, Modifiers: modifiers(p.Shift, p.Ctrl)}
	switch {
	case p.Action == "up":
		e.Direction = key.DirRelease
	case p.Action == "down" && p.Repeat:
		e.Direction = key.DirNone
	case p.Action == "down":
		e.Direction = key.DirPress
	default:
		return key.Event{}, fmt.Errorf("%w: key action %q", ErrBadInput, p.Action)
	}

	if code, ok := namedKeys[p.Key]; ok {
		e.Code = code
		return e, nil
	}
	r, size := utf8.DecodeRuneInString(strings.ToLower(p.Key))
	if size == len(p.Key) && r >= 'a' && r <= 'z' {
		e.Code = key.CodeA + key.Code(r-'a')
		e.Rune = r
		return e, nil
	}
	return key.Event{}, fmt.Errorf("%w: key %q", ErrBadInput, p.Key)
}
