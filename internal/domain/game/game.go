// Package game implements the go rules on top of a board.Grid: capture,
// suicide, the single-stone ko check and move alternation. Illegal moves are
// reported, never raised as errors.
package game

import (
	"time"

	"kifudb/internal/domain/board"
)

// State is the game level state of an engine.
type State int8

const (
	Empty State = iota
	InProgress
	Finished
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Finished:
		return "finished"
	}
	return "empty"
}

// Policy is consulted synchronously before a stone is dropped or removed.
// Returning false vetoes the operation and leaves the engine untouched.
type Policy func(s *board.Stone) bool

// Option configures an Engine.
type Option func(*Engine)

// WithDropPolicy installs a veto check that runs after the rules accepted a move
// and before it is committed.
func WithDropPolicy(p Policy) Option {
	return func(e *Engine) { e.dropPolicy = p }
}

// WithRemovePolicy installs a veto check for every stone removal, captures included.
func WithRemovePolicy(p Policy) Option {
	return func(e *Engine) { e.removePolicy = p }
}

// WithClock overrides the time source used to stamp placed stones.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}
