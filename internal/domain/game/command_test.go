package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kifudb/internal/domain/board"
)

func TestUndoRedoCapture(t *testing.T) {
	e := koPosition(t)
	ctl := NewController()

	// break the ko, then retake
	require.True(t, ctl.Do(NewDropCommand(e, board.NewStone(15, 15, board.Black))))
	require.True(t, ctl.Do(NewPassCommand(e)))
	retake := NewDropCommand(e, board.NewStone(4, 3, board.Black))
	require.True(t, ctl.Do(retake))
	require.Len(t, retake.Captured(), 1)
	white := retake.Captured()[0]
	assert.False(t, white.Alive)

	undone := ctl.Undo()
	require.NotNil(t, undone)
	assert.Same(t, retake, undone)
	assert.Same(t, white, e.Grid().At(board.Coordinate{X: 3, Y: 3}))
	assert.True(t, white.Alive)
	assert.True(t, e.Grid().Empty(board.Coordinate{X: 4, Y: 3}))
	assert.Equal(t, 10, e.MoveCount())
	assert.True(t, ctl.CanRedo())

	require.NotNil(t, ctl.Redo())
	assert.True(t, e.Grid().Empty(board.Coordinate{X: 3, Y: 3}))
	assert.Equal(t, board.Black, e.Grid().At(board.Coordinate{X: 4, Y: 3}).Side)
	assert.Equal(t, 11, e.MoveCount())
	assert.False(t, ctl.CanRedo())
}

func TestUndoAll(t *testing.T) {
	e := newEngine(t, 9)
	ctl := NewController()
	for i := 0; i < 4; i++ {
		require.True(t, ctl.Do(NewDropCommand(e, board.NewStone(i, i, e.NextSide()))))
	}
	for ctl.CanUndo() {
		require.NotNil(t, ctl.Undo())
	}
	assert.Nil(t, ctl.Undo())
	assert.Equal(t, 0, e.MoveCount())
	assert.Empty(t, e.Grid().Stones())
	assert.Equal(t, Empty, e.State())
}

func TestDoClearsRedo(t *testing.T) {
	e := newEngine(t, 9)
	ctl := NewController()
	require.True(t, ctl.Do(NewDropCommand(e, board.NewStone(0, 0, board.Black))))
	require.NotNil(t, ctl.Undo())
	require.True(t, ctl.CanRedo())

	require.True(t, ctl.Do(NewDropCommand(e, board.NewStone(1, 1, board.Black))))
	assert.False(t, ctl.CanRedo())
	assert.Nil(t, ctl.Redo())
}

func TestIllegalCommandNotRecorded(t *testing.T) {
	e := newEngine(t, 9)
	ctl := NewController()
	require.True(t, ctl.Do(NewDropCommand(e, board.NewStone(0, 0, board.Black))))
	assert.False(t, ctl.Do(NewDropCommand(e, board.NewStone(0, 0, board.White))))
	require.NotNil(t, ctl.Undo())
	assert.False(t, ctl.CanUndo())
}
