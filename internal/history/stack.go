// Package history is the editor's undo/redo stack.
//
// Commands are pushed after they have been applied. The stack is linear: pushing
// after an undo discards the redo tail. While a transaction is open, undo and
// redo requests are refused so a multi-step interaction cannot interleave with
// history replay.
package history

import "log/slog"

// Command is a reversible mutation. Apply and Invert must each be idempotent.
type Command interface {
	Apply()
	Invert()
}

// Named commands report a label for toolbar display.
type Named interface {
	Name() string
}

// Stats describes the stack for observers.
type Stats struct {
	Position int    `json:"position"`
	Total    int    `json:"total"`
	CanUndo  bool   `json:"canUndo"`
	CanRedo  bool   `json:"canRedo"`
	Locked   bool   `json:"locked"`
	Next     string `json:"next,omitempty"`
}

type Stack struct {
	commands []Command
	cursor   int // commands[:cursor] are applied
	capacity int // 0 means unbounded
	open     int // open transactions

	listeners []func(Stats)
}

// NewStack creates a stack keeping at most capacity commands; 0 keeps all.
func NewStack(capacity int) *Stack {
	if capacity < 0 {
		capacity = 0
	}
	return &Stack{capacity: capacity}
}

// OnChange registers an observer called after every change of Stats.
func (s *Stack) OnChange(fn func(Stats)) {
	s.listeners = append(s.listeners, fn)
}

// Push records an already applied command and drops any redo tail.
func (s *Stack) Push(c Command) {
	if c == nil {
		return
	}
	s.commands = append(s.commands[:s.cursor], c)
	s.cursor++
	if s.capacity > 0 && len(s.commands) > s.capacity {
		drop := len(s.commands) - s.capacity
		s.commands = append(s.commands[:0], s.commands[drop:]...)
		s.cursor -= drop
	}
	s.notify()
}

// Execute applies c and pushes it.
func (s *Stack) Execute(c Command) {
	c.Apply()
	s.Push(c)
}

// Locked reports whether a transaction is open.
func (s *Stack) Locked() bool { return s.open > 0 }

func (s *Stack) CanUndo() bool { return !s.Locked() && s.cursor > 0 }

func (s *Stack) CanRedo() bool { return !s.Locked() && s.cursor < len(s.commands) }

// Undo inverts the last applied command. It reports false when refused.
func (s *Stack) Undo() bool {
	if !s.CanUndo() {
		if s.Locked() {
			slog.Debug("undo refused during interaction")
		}
		return false
	}
	s.cursor--
	s.commands[s.cursor].Invert()
	s.notify()
	return true
}

// Redo reapplies the next command. It reports false when refused.
func (s *Stack) Redo() bool {
	if !s.CanRedo() {
		if s.Locked() {
			slog.Debug("redo refused during interaction")
		}
		return false
	}
	s.commands[s.cursor].Apply()
	s.cursor++
	s.notify()
	return true
}

// Clear forgets every command. Open transactions stay open.
func (s *Stack) Clear() {
	s.commands = nil
	s.cursor = 0
	s.notify()
}

func (s *Stack) Stats() Stats {
	st := Stats{
		Position: s.cursor,
		Total:    len(s.commands),
		CanUndo:  s.CanUndo(),
		CanRedo:  s.CanRedo(),
		Locked:   s.Locked(),
	}
	if s.cursor < len(s.commands) {
		if n, ok := s.commands[s.cursor].(Named); ok {
			st.Next = n.Name()
		}
	}
	return st
}

func (s *Stack) notify() {
	if len(s.listeners) == 0 {
		return
	}
	st := s.Stats()
	for _, fn := range s.listeners {
		fn(st)
	}
}

// Tx brackets a multi-step interaction. Undo and redo are refused until every
// open Tx is committed or aborted.
type Tx struct {
	s    *Stack
	done bool
}

// Begin opens a transaction.
func (s *Stack) Begin() *Tx {
	s.open++
	if s.open == 1 {
		s.notify()
	}
	return &Tx{s: s}
}

// Open reports whether the transaction still holds the stack.
func (t *Tx) Open() bool { return t != nil && !t.done }

// Commit pushes the given already applied commands and releases the stack.
func (t *Tx) Commit(cmds ...Command) {
	if !t.Open() {
		return
	}
	t.release()
	for _, c := range cmds {
		t.s.Push(c)
	}
}

// Abort releases the stack without recording anything.
func (t *Tx) Abort() {
	if !t.Open() {
		return
	}
	t.release()
}

func (t *Tx) release() {
	t.done = true
	t.s.open--
	if t.s.open == 0 {
		t.s.notify()
	}
}
