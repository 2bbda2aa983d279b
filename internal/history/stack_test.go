package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// setCmd writes a value into a shared cell; Invert restores the previous one.
type setCmd struct {
	cell     *int
	from, to int
	label    string
}

func (c *setCmd) Apply()       { *c.cell = c.to }
func (c *setCmd) Invert()      { *c.cell = c.from }
func (c *setCmd) Name() string { return c.label }

func set(s *Stack, cell *int, v int) {
	s.Execute(&setCmd{cell: cell, from: *cell, to: v, label: "set"})
}

func TestUndoRedo(t *testing.T) {
	var cell int
	s := NewStack(0)
	set(s, &cell, 1)
	set(s, &cell, 2)
	set(s, &cell, 3)

	st := s.Stats()
	assert.Equal(t, 3, st.Position)
	assert.Equal(t, 3, st.Total)

	assert.True(t, s.Undo())
	assert.Equal(t, 2, cell)
	assert.True(t, s.Undo())
	assert.Equal(t, 1, cell)
	assert.True(t, s.Redo())
	assert.Equal(t, 2, cell)
	assert.Equal(t, "set", s.Stats().Next)
}

func TestPushAfterUndoTruncatesRedoTail(t *testing.T) {
	var cell int
	s := NewStack(0)
	set(s, &cell, 1)
	set(s, &cell, 2)
	s.Undo()
	set(s, &cell, 5)

	assert.False(t, s.CanRedo())
	assert.False(t, s.Redo())
	assert.Equal(t, 2, s.Stats().Total)

	s.Undo()
	assert.Equal(t, 1, cell)
}

func TestUndoOnEmptyStack(t *testing.T) {
	s := NewStack(0)
	assert.False(t, s.Undo())
	assert.False(t, s.Redo())
}

func TestCapacityDropsOldest(t *testing.T) {
	var cell int
	s := NewStack(3)
	for i := 1; i <= 5; i++ {
		set(s, &cell, i)
	}
	assert.Equal(t, 3, s.Stats().Total)

	s.Undo()
	s.Undo()
	s.Undo()
	assert.Equal(t, 2, cell)
	assert.False(t, s.CanUndo(), "cannot undo past the oldest kept command")
}

func TestTransactionRefusesUndoRedo(t *testing.T) {
	var cell int
	s := NewStack(0)
	set(s, &cell, 1)
	set(s, &cell, 2)
	s.Undo()

	tx := s.Begin()
	assert.True(t, s.Locked())
	assert.False(t, s.Undo())
	assert.False(t, s.Redo())
	assert.Equal(t, 1, cell)

	tx.Commit()
	assert.False(t, s.Locked())
	assert.True(t, s.Redo())
	assert.Equal(t, 2, cell)
}

func TestTransactionCommitPushes(t *testing.T) {
	var cell int
	s := NewStack(0)
	tx := s.Begin()
	c := &setCmd{cell: &cell, from: 0, to: 7}
	c.Apply()
	tx.Commit(c)

	assert.Equal(t, 1, s.Stats().Total)
	assert.True(t, s.Undo())
	assert.Equal(t, 0, cell)
}

func TestNestedTransactions(t *testing.T) {
	s := NewStack(0)
	outer := s.Begin()
	inner := s.Begin()
	inner.Abort()
	assert.True(t, s.Locked())
	inner.Abort()
	assert.True(t, s.Locked(), "aborting twice must not release the outer transaction")
	outer.Commit()
	assert.False(t, s.Locked())
	assert.False(t, outer.Open())
}

func TestOnChangeNotifies(t *testing.T) {
	var cell int
	var seen []Stats
	s := NewStack(0)
	s.OnChange(func(st Stats) { seen = append(seen, st) })

	set(s, &cell, 1)
	tx := s.Begin()
	tx.Abort()

	if assert.Len(t, seen, 3) {
		assert.True(t, seen[0].CanUndo)
		assert.True(t, seen[1].Locked)
		assert.False(t, seen[1].CanUndo)
		assert.False(t, seen[2].Locked)
	}
}
