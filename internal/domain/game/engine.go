package game

import (
	"time"

	"kifudb/internal/domain/board"
)

// Engine owns a grid and the ordered list of live stones on it.
//
// An Engine is single-writer: it is the only thing that mutates its grid. Use
// Clone to branch off an independent copy.
type Engine struct {
	grid *board.Grid

	// moves holds the stones currently on the board in the order they arrived,
	// setup stones included. Captures and rollbacks remove entries.
	moves []*board.Stone
	// history holds every executed move, passes as nil. Its length is the move count.
	history []*board.Stone

	state State

	dropPolicy   Policy
	removePolicy Policy
	now          func() time.Time
}

// NewEngine returns an engine with an empty board of the given size.
func NewEngine(size int, opts ...Option) (*Engine, error) {
	g, err := board.NewGrid(size)
	if err != nil {
		return nil, err
	}
	e := &Engine{grid: g, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

func (e *Engine) Size() int         { return e.grid.Size() }
func (e *Engine) Grid() *board.Grid { return e.grid }
func (e *Engine) State() State      { return e.state }

// MoveCount is the number of executed moves, passes included.
func (e *Engine) MoveCount() int { return len(e.history) }

// Moves returns the live stones in arrival order.
func (e *Engine) Moves() []*board.Stone {
	return append([]*board.Stone(nil), e.moves...)
}

// LastMove returns the stone placed by the most recent move, or nil if there
// was none or it was a pass.
func (e *Engine) LastMove() *board.Stone {
	if len(e.history) == 0 {
		return nil
	}
	return e.history[len(e.history)-1]
}

// NextSide alternates strictly by move count parity. It does not look at the
// side of the stones actually played.
func (e *Engine) NextSide() board.Side {
	if len(e.history)%2 == 0 {
		return board.Black
	}
	return board.White
}

// DeadBlocks returns the opponent groups that dropping s would capture: the
// groups next to s whose only outside liberty is s's own point. It does not
// modify the board.
func (e *Engine) DeadBlocks(s *board.Stone) []*board.Group {
	var groups []*board.Group
	for _, n := range e.grid.Neighbors(s.Coordinate) {
		if n.Side == s.Side || !n.Alive {
			continue
		}
		groups = append(groups, e.grid.GroupOf(n))
	}

	var retVal []*board.Group
	for _, g := range board.MergeGroups(groups) {
		libs := g.OutsideLiberties()
		if len(libs) == 1 && libs[0] == s.Coordinate {
			retVal = append(retVal, g)
		}
	}
	return retVal
}

// CanDrop reports whether s is a legal move in the current position.
func (e *Engine) CanDrop(s *board.Stone) bool {
	if e.state == Finished || !s.Side.Valid() || !e.grid.Empty(s.Coordinate) {
		return false
	}

	dead := e.DeadBlocks(s)
	own := e.grid.GroupOf(s)

	// ko: retaking a single stone that was just played, with a lone stone
	// that would itself be in atari
	if own.Len() == 1 && len(e.grid.Liberties(s.Coordinate)) == 0 {
		last := e.LastMove()
		for _, d := range dead {
			if d.Len() == 1 && last != nil && d.Stones[0] == last {
				return false
			}
		}
	}

	// suicide
	if len(dead) == 0 {
		libs := own.OutsideLiberties()
		if len(libs) == 0 || len(libs) == 1 && libs[0] == s.Coordinate {
			return false
		}
	}
	return true
}

// Drop plays s. It returns the captured stones and whether the move was
// committed. An illegal or vetoed move leaves the engine unchanged.
func (e *Engine) Drop(s *board.Stone) ([]*board.Stone, bool) {
	if !e.CanDrop(s) {
		return nil, false
	}
	if e.dropPolicy != nil && !e.dropPolicy(s) {
		return nil, false
	}

	dead := e.DeadBlocks(s)

	s.Step = len(e.history)
	if s.PlacedAt.IsZero() {
		s.PlacedAt = e.now()
	}
	e.grid.Place(s)
	e.moves = append(e.moves, s)
	e.history = append(e.history, s)
	e.state = InProgress

	captured := []*board.Stone{}
	for _, d := range dead {
		for _, st := range d.Stones {
			if e.RemoveStone(st) {
				st.Alive = false
				captured = append(captured, st)
			}
		}
	}
	return captured, true
}

// Pass records a move that places nothing.
func (e *Engine) Pass() bool {
	if e.state == Finished {
		return false
	}
	e.history = append(e.history, nil)
	e.state = InProgress
	return true
}

// RemoveStone takes s off the board and out of the live stone list. Stones the
// engine does not own are ignored.
func (e *Engine) RemoveStone(s *board.Stone) bool {
	i := e.indexOf(s)
	if i < 0 {
		return false
	}
	if e.removePolicy != nil && !e.removePolicy(s) {
		return false
	}
	e.moves = append(e.moves[:i], e.moves[i+1:]...)
	e.grid.Remove(s.Coordinate)
	return true
}

// Setup puts stones on the board outside the rules (handicap and AB/AW
// positions). They do not count as moves. Stones whose point is taken are
// skipped and returned.
func (e *Engine) Setup(stones ...*board.Stone) []*board.Stone {
	var skipped []*board.Stone
	for _, s := range stones {
		if !e.grid.Place(s) {
			skipped = append(skipped, s)
			continue
		}
		s.Step = -1
		e.moves = append(e.moves, s)
	}
	return skipped
}

// Revert reverses a committed Drop: the captured stones go back on the board,
// then the dropped stone is removed and the move count rewinds. dropped must be
// the last move.
func (e *Engine) Revert(dropped *board.Stone, captured []*board.Stone) bool {
	if dropped == nil || e.LastMove() != dropped {
		return false
	}
	for _, s := range captured {
		if e.grid.Place(s) {
			e.moves = append(e.moves, s)
		}
	}
	if !e.RemoveStone(dropped) {
		for _, s := range captured {
			e.RemoveStone(s)
			s.Alive = false
		}
		return false
	}
	dropped.Alive = false
	e.history = e.history[:len(e.history)-1]
	if len(e.history) == 0 && len(e.moves) == 0 {
		e.state = Empty
	}
	return true
}

// RevertPass undoes a trailing pass.
func (e *Engine) RevertPass() bool {
	if len(e.history) == 0 || e.LastMove() != nil {
		return false
	}
	e.history = e.history[:len(e.history)-1]
	if len(e.history) == 0 && len(e.moves) == 0 {
		e.state = Empty
	}
	return true
}

// Finish marks the game as over. No further moves are accepted.
func (e *Engine) Finish() { e.state = Finished }

// Clone returns an independent engine with copies of every stone, so that
// variations can be played out without touching the original.
func (e *Engine) Clone() *Engine {
	g, _ := board.NewGrid(e.grid.Size())
	cp := &Engine{
		grid:         g,
		state:        e.state,
		dropPolicy:   e.dropPolicy,
		removePolicy: e.removePolicy,
		now:          e.now,
	}
	copies := make(map[*board.Stone]*board.Stone, len(e.moves))
	for _, s := range e.moves {
		c := *s
		copies[s] = &c
		g.Place(&c)
		cp.moves = append(cp.moves, &c)
	}
	cp.history = make([]*board.Stone, len(e.history))
	for i, s := range e.history {
		if s == nil {
			continue
		}
		if c, ok := copies[s]; ok {
			cp.history[i] = c
		} else {
			// captured since; keep a detached copy so LastMove identity stays per engine
			c := *s
			cp.history[i] = &c
		}
	}
	return cp
}

func (e *Engine) indexOf(s *board.Stone) int {
	for i, m := range e.moves {
		if m == s {
			return i
		}
	}
	return -1
}
