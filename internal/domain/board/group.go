package board

// Group is a maximal set of connected same-side stones (a "block").
//
// Groups are computed on demand from the grid and never cached: any mutation of
// the grid invalidates them.
type Group struct {
	Side   Side
	Stones []*Stone

	grid *Grid
}

// GroupOf builds the group containing seed by walking same-side neighbours.
//
// The seed does not need to be on the grid: the rule engine asks for the group a
// candidate stone would join before placing it. In that case the seed's own
// point is empty and counts as a liberty of the neighbours that touch it.
func (g *Grid) GroupOf(seed *Stone) *Group {
	group := &Group{Side: seed.Side, Stones: []*Stone{seed}, grid: g}
	visited := map[Coordinate]bool{seed.Coordinate: true}
	stack := []*Stone{seed}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range g.Neighbors(s.Coordinate) {
			if n.Side != seed.Side || visited[n.Coordinate] {
				continue
			}
			visited[n.Coordinate] = true
			group.Stones = append(group.Stones, n)
			stack = append(stack, n)
		}
	}
	return group
}

// Len returns the number of stones in the group.
func (gr *Group) Len() int { return len(gr.Stones) }

// Contains reports whether a stone at the same point belongs to the group.
func (gr *Group) Contains(s *Stone) bool {
	for _, m := range gr.Stones {
		if m.Coordinate == s.Coordinate {
			return true
		}
	}
	return false
}

// OutsideLiberties returns the deduplicated empty points touching the group,
// in member order then west, east, north, south.
func (gr *Group) OutsideLiberties() []Coordinate {
	seen := make(map[Coordinate]bool)
	var retVal []Coordinate
	for _, s := range gr.Stones {
		for _, l := range gr.grid.Liberties(s.Coordinate) {
			if !seen[l] {
				seen[l] = true
				retVal = append(retVal, l)
			}
		}
	}
	return retVal
}

// HasLiberty reports whether the group has at least one outside liberty.
func (gr *Group) HasLiberty() bool {
	for _, s := range gr.Stones {
		if len(gr.grid.Liberties(s.Coordinate)) > 0 {
			return true
		}
	}
	return false
}

// CanMerge reports whether exactly one stone of the group is orthogonally
// adjacent to s, with the same colour.
func (gr *Group) CanMerge(s *Stone) bool {
	n := 0
	for _, m := range gr.Stones {
		if m.Side == s.Side && m.Coordinate.Touches(s.Coordinate) {
			n++
		}
	}
	return n == 1
}

// Merge adds the stones of other that gr does not hold yet.
func (gr *Group) Merge(other *Group) {
	for _, s := range other.Stones {
		if !gr.Contains(s) {
			gr.Stones = append(gr.Stones, s)
		}
	}
}

// overlaps reports whether the groups share a stone or are joined by a
// mergeable stone.
func (gr *Group) overlaps(other *Group) bool {
	for _, s := range other.Stones {
		if gr.Contains(s) || gr.CanMerge(s) {
			return true
		}
	}
	return false
}

// Coordinates lists the points of the group's stones.
func (gr *Group) Coordinates() []Coordinate {
	retVal := make([]Coordinate, len(gr.Stones))
	for i, s := range gr.Stones {
		retVal[i] = s.Coordinate
	}
	return retVal
}

// MergeGroups folds together groups that are really the same block. Two
// groups seeded from different neighbours of one point may describe the same
// stones; the result keeps the first occurrence of each block in input order.
func MergeGroups(groups []*Group) []*Group {
	var retVal []*Group
outer:
	for _, g := range groups {
		for _, r := range retVal {
			if r.Side == g.Side && r.overlaps(g) {
				r.Merge(g)
				continue outer
			}
		}
		cp := &Group{Side: g.Side, Stones: append([]*Stone(nil), g.Stones...), grid: g.grid}
		retVal = append(retVal, cp)
	}
	return retVal
}
