package kifu

import (
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"kifudb/internal/domain/board"
	"kifudb/internal/domain/game"
	"kifudb/internal/domain/sgf"
	errs "kifudb/internal/errors"
)

// Decode parses text and maps its first game tree to a record.
func Decode(text string) (*GameRecord, error) {
	c, err := sgf.Parse(text)
	if err != nil {
		return nil, errors.WithMessage(err, "kifu: decode")
	}
	return decodeTree(c.Trees[0])
}

// DecodeAll maps every game tree of a collection. It stops at the first
// game that fails.
func DecodeAll(text string) ([]*GameRecord, error) {
	c, err := sgf.Parse(text)
	if err != nil {
		return nil, errors.WithMessage(err, "kifu: decode")
	}
	retVal := make([]*GameRecord, 0, len(c.Trees))
	for i, t := range c.Trees {
		r, err := decodeTree(t)
		if err != nil {
			return nil, errors.WithMessagef(err, "game %d", i+1)
		}
		retVal = append(retVal, r)
	}
	return retVal, nil
}

// DecodeHeader reads only the root node of text.
func DecodeHeader(text string) (GameInfo, error) {
	return ReadHeader(strings.NewReader(text))
}

// ReadHeader reads r up to the end of the root node and returns its metadata.
// The rest of the stream is not consumed beyond the reader's buffer.
func ReadHeader(r io.Reader) (GameInfo, error) {
	n, err := sgf.ReadRootNode(r)
	if err != nil {
		return GameInfo{}, errors.WithMessage(err, "kifu: read header")
	}
	if len(n.Properties) == 0 {
		return GameInfo{}, errors.Wrap(errs.ErrEmptyRecord, "kifu: root node has no properties")
	}
	info, _, err := decodeInfo(n)
	return info, err
}

func decodeTree(t *sgf.GameTree) (*GameRecord, error) {
	root := t.Root()
	if root == nil {
		return nil, errors.Wrap(errs.ErrMalformedRecord, "kifu: game tree has no root node")
	}
	info, setup, err := decodeInfo(root)
	if err != nil {
		return nil, err
	}

	e, err := game.NewEngine(info.BoardSize, game.WithClock(func() time.Time { return time.Time{} }))
	if err != nil {
		return nil, errors.WithMessage(err, "kifu: decode")
	}
	e.Setup(placements(setup)...)

	d := &decoder{size: info.BoardSize}
	h := &MoveHistory{}
	if len(root.Branches) > 0 {
		ph := &Move{Kind: KindVariations}
		h.Moves = append(h.Moves, ph)
		d.branch(ph, root.Branches, e, 0)
	}
	rest := &sgf.GameTree{Nodes: t.Nodes[1:], Branches: unattached(t)}
	d.tree(h, rest, e, 0)

	return &GameRecord{Info: info, Setup: setup, Root: h}, nil
}

// decodeInfo maps the root node. Values that cannot be read are skipped; a
// wrong game type or board size fails the whole record.
func decodeInfo(n *sgf.Node) (GameInfo, []Placement, error) {
	info := GameInfo{BoardSize: board.DefaultSize}
	var black, white []string
	var comments []string

	for _, p := range n.Properties {
		v := strings.TrimSpace(p.Value())
		switch strings.ToUpper(p.Ident) {
		case "GM":
			if gm, err := strconv.Atoi(v); err == nil && gm != 1 {
				return GameInfo{}, nil, errors.Wrapf(errs.ErrUnsupportedGameType, "GM[%d]", gm)
			}
		case "SZ":
			if sz, err := strconv.Atoi(v); err == nil {
				info.BoardSize = sz
			}
		case "GC", "C":
			comments = append(comments, p.Value())
		case "GN":
			info.Name = p.Value()
		case "AP":
			info.Application = p.Value()
		case "US":
			info.Author = p.Value()
		case "SO":
			info.Source = p.Value()
		case "CP":
			info.Copyright = p.Value()
		case "AN":
			info.Annotator = p.Value()
		case "EV":
			info.Event = p.Value()
		case "RO":
			info.Round = p.Value()
		case "DT":
			info.Date = p.Value()
		case "PC":
			info.Place = p.Value()
		case "RU":
			info.Rules = p.Value()
		case "TM":
			if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
				info.TimeLimit.MainSeconds = int(math.Round(f))
			}
		case "OT":
			info.OverTime = p.Value()
		case "PB":
			info.Black.Name = p.Value()
		case "BR":
			info.Black.Rank = ParseRank(v)
		case "BT":
			info.Black.Team = p.Value()
		case "PW":
			info.White.Name = p.Value()
		case "WR":
			info.White.Rank = ParseRank(v)
		case "WT":
			info.White.Team = p.Value()
		case "KM":
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				info.Komi = f
			}
		case "HA":
			if ha, err := strconv.Atoi(v); err == nil && ha > 0 {
				info.Handicap = ha
			}
		case "RE":
			info.ResultText = p.Value()
			info.Result = ParseResult(v)
		case "AB":
			black = append(black, p.Values...)
		case "AW":
			white = append(white, p.Values...)
		}
	}
	if !board.ValidSize(info.BoardSize) {
		return GameInfo{}, nil, errors.Wrapf(errs.ErrInvalidSize, "SZ[%d]", info.BoardSize)
	}
	// SZ may follow the setup stones
	setup := append(decodePlacements(black, board.Black, info.BoardSize),
		decodePlacements(white, board.White, info.BoardSize)...)
	info.Comment = strings.Join(comments, "")
	return info, setup, nil
}

// decoder replays moves into engines, one per variation. It is used by a
// single decode and never shared.
type decoder struct {
	size int
}

// tree maps the nodes of t onto h. Branches hanging off a node become
// variations of that node's move; branches hanging off the tree itself are
// collected on a trailing placeholder move.
func (d *decoder) tree(h *MoveHistory, t *sgf.GameTree, e *game.Engine, number int) {
	for _, n := range t.Nodes {
		m := d.move(n, e, &number)
		h.Moves = append(h.Moves, m)
		if len(n.Branches) > 0 {
			d.branch(m, n.Branches, e, number)
		}
	}
	if free := unattached(t); len(free) > 0 {
		ph := &Move{Kind: KindVariations}
		h.Moves = append(h.Moves, ph)
		d.branch(ph, free, e, number)
	}
}

// branch maps every tree onto a new variation of m. The first variation
// continues on e; the others run on clones taken before it moves on.
func (d *decoder) branch(m *Move, trees []*sgf.GameTree, e *game.Engine, number int) {
	engines := make([]*game.Engine, len(trees))
	engines[0] = e
	for i := 1; i < len(trees); i++ {
		engines[i] = e.Clone()
	}
	for i, t := range trees {
		v := &MoveHistory{}
		m.Variations = append(m.Variations, v)
		d.tree(v, t, engines[i], number)
	}
}

func (d *decoder) move(n *sgf.Node, e *game.Engine, number *int) *Move {
	m := &Move{}
	var comments []string
	for _, p := range n.Properties {
		ident := strings.ToUpper(p.Ident)
		switch ident {
		case "B", "W":
			m.Side = board.Black
			if ident == "W" {
				m.Side = board.White
			}
			v := strings.TrimSpace(p.Value())
			if isPass(v, d.size) {
				m.Kind = KindPass
				continue
			}
			c, ok := decodePoint(v, d.size)
			if !ok {
				// unreadable coordinates count as a pass
				m.Kind = KindPass
				continue
			}
			m.Kind = KindPlay
			m.Point = c
		case "N":
			m.Name = p.Value()
		case "C":
			comments = append(comments, p.Value())
		case "MN":
			if mn, err := strconv.Atoi(strings.TrimSpace(p.Value())); err == nil && mn > 0 {
				m.ForcedNumber = mn
			}
		case "TE":
			m.Assessment = AssessGood
		case "BM":
			m.Assessment = AssessBad
		case "DO":
			m.Assessment = AssessDoubtful
		case "IT":
			m.Assessment = AssessInteresting
		case "AB":
			m.Setup = append(m.Setup, decodePlacements(p.Values, board.Black, d.size)...)
		case "AW":
			m.Setup = append(m.Setup, decodePlacements(p.Values, board.White, d.size)...)
		case "LB":
			m.Labels = append(m.Labels, decodeLabels(p.Values, d.size)...)
		}
	}
	m.Comment = strings.Join(comments, "")

	if len(m.Setup) > 0 {
		e.Setup(placements(m.Setup)...)
	}

	switch m.Kind {
	case KindPlay:
		m.Stone = board.NewStone(m.Point.X, m.Point.Y, m.Side)
		captured, ok := e.Drop(m.Stone)
		if !ok {
			m.Rejected = true
		}
		for _, s := range captured {
			m.Captured = append(m.Captured, s.Coordinate)
		}
	case KindPass:
		e.Pass()
	}

	if m.IsPlayed() {
		*number++
		if m.ForcedNumber > 0 {
			*number = m.ForcedNumber
		}
		m.Number = *number
	}
	return m
}

func decodePlacements(values []string, side board.Side, size int) []Placement {
	var retVal []Placement
	for _, v := range values {
		if c, ok := decodePoint(strings.TrimSpace(v), size); ok {
			retVal = append(retVal, Placement{Coordinate: c, Side: side})
		}
	}
	return retVal
}

func decodeLabels(values []string, size int) []Label {
	var retVal []Label
	for _, v := range values {
		i := strings.IndexByte(v, ':')
		if i < 0 {
			continue
		}
		if c, ok := decodePoint(v[:i], size); ok {
			retVal = append(retVal, Label{Coordinate: c, Text: v[i+1:]})
		}
	}
	return retVal
}

func placements(ps []Placement) []*board.Stone {
	retVal := make([]*board.Stone, len(ps))
	for i, p := range ps {
		retVal[i] = board.NewStone(p.X, p.Y, p.Side)
	}
	return retVal
}

// unattached returns the branches of t that no node of t carries.
func unattached(t *sgf.GameTree) []*sgf.GameTree {
	if len(t.Branches) == 0 {
		return nil
	}
	attached := make(map[*sgf.GameTree]bool)
	for _, n := range t.Nodes {
		for _, b := range n.Branches {
			attached[b] = true
		}
	}
	var retVal []*sgf.GameTree
	for _, b := range t.Branches {
		if !attached[b] {
			retVal = append(retVal, b)
		}
	}
	return retVal
}
