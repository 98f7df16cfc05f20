package board

import (
	"fmt"

	"github.com/pkg/errors"

	errs "kifudb/internal/errors"
)

const (
	MinSize     = 1
	MaxSize     = 51
	DefaultSize = 19
)

// ValidSize reports whether n is a legal board size: odd and within [MinSize, MaxSize].
func ValidSize(n int) bool { return n >= MinSize && n <= MaxSize && n%2 == 1 }

// Grid is a size×size array of cells, each owning at most one stone.
//
// Cells are a flat slice in row major order: a stone at (x, y) lives in
// cells[y*size+x].
type Grid struct {
	size  int
	cells []*Stone
}

// NewGrid creates an empty grid.
func NewGrid(size int) (*Grid, error) {
	g := &Grid{}
	if err := g.Resize(size); err != nil {
		return nil, err
	}
	return g, nil
}

// Resize clears the grid and changes its size.
func (g *Grid) Resize(n int) error {
	if !ValidSize(n) {
		return errors.Wrapf(errs.ErrInvalidSize, "size %d", n)
	}
	g.size = n
	g.cells = make([]*Stone, n*n)
	return nil
}

func (g *Grid) Size() int { return g.size }

// Contains reports whether c lies on the board.
func (g *Grid) Contains(c Coordinate) bool {
	return c.X >= 0 && c.X < g.size && c.Y >= 0 && c.Y < g.size
}

func (g *Grid) index(c Coordinate) int { return c.Y*g.size + c.X }

// At returns the stone at c, or nil if the point is empty or off the board.
func (g *Grid) At(c Coordinate) *Stone {
	if !g.Contains(c) {
		return nil
	}
	return g.cells[g.index(c)]
}

// Empty reports whether c is on the board and unoccupied.
func (g *Grid) Empty(c Coordinate) bool {
	return g.Contains(c) && g.cells[g.index(c)] == nil
}

// Place stores the stone in its cell and marks it alive. The cell must be empty.
func (g *Grid) Place(s *Stone) bool {
	if !g.Empty(s.Coordinate) {
		return false
	}
	g.cells[g.index(s.Coordinate)] = s
	s.Alive = true
	return true
}

// Remove clears a cell unconditionally and returns the stone that was there.
func (g *Grid) Remove(c Coordinate) *Stone {
	if !g.Contains(c) {
		return nil
	}
	i := g.index(c)
	s := g.cells[i]
	g.cells[i] = nil
	return s
}

// Liberties returns the empty points next to c, in west, east, north, south order.
// c itself does not need to be occupied.
func (g *Grid) Liberties(c Coordinate) []Coordinate {
	var retVal []Coordinate
	for _, a := range c.adjacent() {
		if g.Empty(a) {
			retVal = append(retVal, a)
		}
	}
	return retVal
}

// Neighbors returns the stones next to c, in the same order as Liberties.
func (g *Grid) Neighbors(c Coordinate) []*Stone {
	var retVal []*Stone
	for _, a := range c.adjacent() {
		if s := g.At(a); s != nil {
			retVal = append(retVal, s)
		}
	}
	return retVal
}

// Stones returns every stone on the board in row major order.
func (g *Grid) Stones() []*Stone {
	var retVal []*Stone
	for _, s := range g.cells {
		if s != nil {
			retVal = append(retVal, s)
		}
	}
	return retVal
}

// Clear removes every stone.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = nil
	}
}

// Format implements fmt.Formatter. %s draws the board.
func (g *Grid) Format(s fmt.State, c rune) {
	switch c {
	case 's':
		for y := 0; y < g.size; y++ {
			fmt.Fprint(s, "⎢ ")
			for x := 0; x < g.size; x++ {
				side := None
				if st := g.cells[y*g.size+x]; st != nil {
					side = st.Side
				}
				fmt.Fprintf(s, "%s ", side)
			}
			fmt.Fprint(s, "⎥\n")
		}
	default:
		fmt.Fprintf(s, "Grid(%d)", g.size)
	}
}
