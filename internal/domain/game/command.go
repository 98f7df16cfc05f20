package game

import "kifudb/internal/domain/board"

// Command is a reversible engine operation.
type Command interface {
	Do() bool
	Undo() bool
}

// DropCommand plays one stone and remembers what it captured.
type DropCommand struct {
	engine   *Engine
	stone    *board.Stone
	captured []*board.Stone
}

func NewDropCommand(e *Engine, s *board.Stone) *DropCommand {
	return &DropCommand{engine: e, stone: s}
}

func (c *DropCommand) Do() bool {
	captured, ok := c.engine.Drop(c.stone)
	if !ok {
		return false
	}
	c.captured = captured
	return true
}

// Undo puts the captured stones back, then lifts the dropped stone.
func (c *DropCommand) Undo() bool {
	if !c.engine.Revert(c.stone, c.captured) {
		return false
	}
	c.captured = nil
	return true
}

func (c *DropCommand) Stone() *board.Stone      { return c.stone }
func (c *DropCommand) Captured() []*board.Stone { return c.captured }

// PassCommand records a pass.
type PassCommand struct {
	engine *Engine
}

func NewPassCommand(e *Engine) *PassCommand { return &PassCommand{engine: e} }

func (c *PassCommand) Do() bool   { return c.engine.Pass() }
func (c *PassCommand) Undo() bool { return c.engine.RevertPass() }

// Controller keeps the undo and redo stacks. Executing a new command drops
// whatever could have been redone.
type Controller struct {
	done   []Command
	undone []Command
}

func NewController() *Controller { return &Controller{} }

// Do executes cmd and records it if it succeeded.
func (c *Controller) Do(cmd Command) bool {
	if !cmd.Do() {
		return false
	}
	c.done = append(c.done, cmd)
	c.undone = c.undone[:0]
	return true
}

// Undo reverses the most recent command. It returns the command, or nil if
// there was nothing to undo or the engine refused.
func (c *Controller) Undo() Command {
	if len(c.done) == 0 {
		return nil
	}
	cmd := c.done[len(c.done)-1]
	if !cmd.Undo() {
		return nil
	}
	c.done = c.done[:len(c.done)-1]
	c.undone = append(c.undone, cmd)
	return cmd
}

// Redo executes the most recently undone command again.
func (c *Controller) Redo() Command {
	if len(c.undone) == 0 {
		return nil
	}
	cmd := c.undone[len(c.undone)-1]
	if !cmd.Do() {
		return nil
	}
	c.undone = c.undone[:len(c.undone)-1]
	c.done = append(c.done, cmd)
	return cmd
}

func (c *Controller) CanUndo() bool { return len(c.done) > 0 }
func (c *Controller) CanRedo() bool { return len(c.undone) > 0 }
