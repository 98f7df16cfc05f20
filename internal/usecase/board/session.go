package board

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"kifudb/internal/domain/board"
	"kifudb/internal/domain/game"
	"kifudb/internal/domain/kifu"
)

// Step is the outcome of one session action.
type Step struct {
	Legal     bool               `json:"legal"`
	Captured  []board.Coordinate `json:"captured"`
	Next      string             `json:"next"`
	MoveCount int                `json:"move_count"`
	CanUndo   bool               `json:"can_undo"`
	CanRedo   bool               `json:"can_redo"`
}

// Session is one board being played on interactively. Every action goes
// through the undo controller so the record and the engine stay in step.
type Session struct {
	ID string

	mu     sync.Mutex
	engine *game.Engine
	ctrl   *game.Controller
	record *kifu.GameRecord
	// moves taken back by Undo, most recent last
	undone []*kifu.Move
}

func NewSession(size int, komi float64) (*Session, error) {
	e, err := game.NewEngine(size)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:     uuid.New().String(),
		engine: e,
		ctrl:   game.NewController(),
		record: &kifu.GameRecord{
			Info: kifu.GameInfo{BoardSize: size, Komi: komi, Application: "kifudb"},
			Root: &kifu.MoveHistory{},
		},
	}, nil
}

func (s *Session) step(legal bool, captured []board.Coordinate) Step {
	if captured == nil {
		captured = []board.Coordinate{}
	}
	return Step{
		Legal:     legal,
		Captured:  captured,
		Next:      s.engine.NextSide().String(),
		MoveCount: s.engine.MoveCount(),
		CanUndo:   s.ctrl.CanUndo(),
		CanRedo:   s.ctrl.CanRedo(),
	}
}

func coordinates(stones []*board.Stone) []board.Coordinate {
	var retVal []board.Coordinate
	for _, st := range stones {
		retVal = append(retVal, st.Coordinate)
	}
	return retVal
}

func (s *Session) push(m *kifu.Move) {
	m.Number = s.engine.MoveCount()
	s.record.Root.Moves = append(s.record.Root.Moves, m)
}

// Play drops a stone of the side to move.
func (s *Session) Play(x, y int) Step {
	s.mu.Lock()
	defer s.mu.Unlock()

	side := s.engine.NextSide()
	cmd := game.NewDropCommand(s.engine, board.NewStone(x, y, side))
	if !s.ctrl.Do(cmd) {
		return s.step(false, nil)
	}
	s.undone = nil
	m := &kifu.Move{
		Kind:     kifu.KindPlay,
		Side:     side,
		Point:    board.Coordinate{X: x, Y: y},
		Stone:    cmd.Stone(),
		Captured: coordinates(cmd.Captured()),
	}
	s.push(m)
	return s.step(true, m.Captured)
}

func (s *Session) Pass() Step {
	s.mu.Lock()
	defer s.mu.Unlock()

	side := s.engine.NextSide()
	if !s.ctrl.Do(game.NewPassCommand(s.engine)) {
		return s.step(false, nil)
	}
	s.undone = nil
	s.push(&kifu.Move{Kind: kifu.KindPass, Side: side})
	return s.step(true, nil)
}

// Undo takes back the last move. Captured lists the stones that came back.
func (s *Session) Undo() Step {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl.Undo() == nil {
		return s.step(false, nil)
	}
	moves := s.record.Root.Moves
	m := moves[len(moves)-1]
	s.undone = append(s.undone, m)
	s.record.Root.Moves = moves[:len(moves)-1]
	return s.step(true, m.Captured)
}

func (s *Session) Redo() Step {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd := s.ctrl.Redo()
	if cmd == nil {
		return s.step(false, nil)
	}
	m := s.undone[len(s.undone)-1]
	s.undone = s.undone[:len(s.undone)-1]

	if drop, ok := cmd.(*game.DropCommand); ok {
		m.Captured = coordinates(drop.Captured())
	}
	s.push(m)
	return s.step(true, m.Captured)
}

// SGF returns the session so far as a record.
func (s *Session) SGF() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return kifu.Encode(s.record)
}

// Board draws the current position.
func (s *Session) Board() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("%s", s.engine.Grid())
}
