// Package board holds the go board: stone occupancy, coordinates and the
// connected groups ("blocks") computed from it. It has no knowledge of the rules.
package board

import (
	"fmt"
	"time"
)

// Side is the colour of a stone or of a player.
type Side int8

const (
	None Side = iota
	Black
	White
)

// Opponent returns the other side. None has no opponent.
func (s Side) Opponent() Side {
	switch s {
	case Black:
		return White
	case White:
		return Black
	}
	return None
}

// Valid reports whether s is Black or White.
func (s Side) Valid() bool { return s == Black || s == White }

func (s Side) String() string {
	switch s {
	case Black:
		return "Black"
	case White:
		return "White"
	}
	return "None"
}

// Format implements fmt.Formatter. %s prints the board glyph, %v the name.
func (s Side) Format(f fmt.State, c rune) {
	switch c {
	case 's':
		switch s {
		case Black:
			fmt.Fprint(f, "X")
		case White:
			fmt.Fprint(f, "O")
		default:
			fmt.Fprint(f, "·")
		}
	default:
		fmt.Fprint(f, s.String())
	}
}

// Coordinate is a (column, row) pair, 0-based from the top left corner.
type Coordinate struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

func (c Coordinate) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// adjacent returns the four orthogonal neighbours in the fixed order
// west, east, north(-y), south(+y). Callers filter out off-board points.
func (c Coordinate) adjacent() [4]Coordinate {
	return [4]Coordinate{
		{c.X - 1, c.Y},
		{c.X + 1, c.Y},
		{c.X, c.Y - 1},
		{c.X, c.Y + 1},
	}
}

// Touches reports whether the two coordinates are orthogonally adjacent.
func (c Coordinate) Touches(o Coordinate) bool {
	dx, dy := c.X-o.X, c.Y-o.Y
	return (dx == 1 || dx == -1) && dy == 0 || (dy == 1 || dy == -1) && dx == 0
}

// Stone is a single placed stone.
//
// Everything except Alive is fixed once the stone is placed. Alive flips to
// false when the stone is captured or rolled back.
type Stone struct {
	Coordinate `bson:",inline"`
	Side     Side      `json:"side" bson:"side"`
	Step     int       `json:"step" bson:"step"` // 0-based index of the move that placed it
	Alive    bool      `json:"alive" bson:"alive"`
	PlacedAt time.Time `json:"placed_at" bson:"placed_at"`
}

// NewStone returns an unplaced stone.
func NewStone(x, y int, side Side) *Stone {
	return &Stone{Coordinate: Coordinate{X: x, Y: y}, Side: side}
}

// SamePoint reports whether both stones sit on the same point with the same colour.
func (s *Stone) SamePoint(o *Stone) bool {
	return s.Coordinate == o.Coordinate && s.Side == o.Side
}

func (s *Stone) String() string { return fmt.Sprintf("%v@%v", s.Side, s.Coordinate) }
