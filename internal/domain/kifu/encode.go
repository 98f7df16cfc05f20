package kifu

import (
	"strconv"

	"github.com/pkg/errors"

	"kifudb/internal/domain/board"
	"kifudb/internal/domain/sgf"
	errs "kifudb/internal/errors"
)

// Encode writes the record as SGF text. Only fields that differ from their
// zero value are emitted. The output is always UTF-8 and says so in CA.
func Encode(r *GameRecord) (string, error) {
	if r == nil {
		return "", errors.Wrap(errs.ErrEmptyRecord, "kifu: encode nil record")
	}
	if !board.ValidSize(r.Info.BoardSize) {
		return "", errors.Wrapf(errs.ErrInvalidSize, "kifu: encode size %d", r.Info.BoardSize)
	}

	enc := &encoder{size: r.Info.BoardSize}
	t := &sgf.GameTree{}
	root := enc.info(r.Info, r.Setup)
	t.Nodes = append(t.Nodes, root)
	if r.Root != nil {
		enc.history(t, r.Root.Moves, root)
	}
	if enc.err != nil {
		return "", enc.err
	}
	return sgf.Write(&sgf.Collection{Trees: []*sgf.GameTree{t}}), nil
}

type encoder struct {
	size int
	// first point found outside the board
	err error
}

func (enc *encoder) point(c board.Coordinate) string {
	if c.X < 0 || c.Y < 0 || c.X >= enc.size || c.Y >= enc.size {
		if enc.err == nil {
			enc.err = errors.Wrapf(errs.ErrMalformedRecord, "kifu: point %v outside a %dx%d board", c, enc.size, enc.size)
		}
		return ""
	}
	return encodePoint(c)
}

func (enc *encoder) info(i GameInfo, setup []Placement) *sgf.Node {
	n := &sgf.Node{}
	n.Add("GM", "1")
	n.Add("FF", "4")
	n.Add("CA", "UTF-8")
	addText(n, "AP", i.Application)
	n.Add("SZ", strconv.Itoa(i.BoardSize))
	addText(n, "GN", i.Name)
	addPlayer(n, "PB", "BR", "BT", i.Black)
	addPlayer(n, "PW", "WR", "WT", i.White)
	if i.Komi != 0 {
		n.Add("KM", formatScore(i.Komi))
	}
	if i.Handicap > 0 {
		n.Add("HA", strconv.Itoa(i.Handicap))
	}
	switch {
	case i.ResultText != "" && ParseResult(i.ResultText) == i.Result:
		n.Add("RE", i.ResultText)
	case i.Result.Type != ResultUnknown:
		n.Add("RE", i.Result.String())
	}
	addText(n, "DT", i.Date)
	addText(n, "EV", i.Event)
	addText(n, "RO", i.Round)
	addText(n, "PC", i.Place)
	addText(n, "RU", i.Rules)
	if i.TimeLimit.MainSeconds > 0 {
		n.Add("TM", strconv.Itoa(i.TimeLimit.MainSeconds))
	}
	addText(n, "OT", i.OverTime)
	addText(n, "GC", i.Comment)
	addText(n, "AN", i.Annotator)
	addText(n, "SO", i.Source)
	addText(n, "US", i.Author)
	addText(n, "CP", i.Copyright)
	enc.placements(n, setup)
	return n
}

// history appends the moves of one line to t. prev is the node that
// variations opening the line hang off, nil when there is none.
func (enc *encoder) history(t *sgf.GameTree, moves []*Move, prev *sgf.Node) {
	for _, m := range moves {
		if m.Kind == KindVariations {
			branches := enc.variations(m.Variations)
			if prev != nil {
				prev.Branches = append(prev.Branches, branches...)
			}
			t.Branches = append(t.Branches, branches...)
			continue
		}
		n := enc.move(m)
		t.Nodes = append(t.Nodes, n)
		prev = n
		if len(m.Variations) > 0 {
			branches := enc.variations(m.Variations)
			n.Branches = append(n.Branches, branches...)
			t.Branches = append(t.Branches, branches...)
		}
	}
}

func (enc *encoder) variations(vs []*MoveHistory) []*sgf.GameTree {
	retVal := make([]*sgf.GameTree, 0, len(vs))
	for _, v := range vs {
		sub := &sgf.GameTree{}
		enc.history(sub, v.Moves, nil)
		retVal = append(retVal, sub)
	}
	return retVal
}

func (enc *encoder) move(m *Move) *sgf.Node {
	n := &sgf.Node{}
	addText(n, "N", m.Name)
	ident := "B"
	if m.Side == board.White {
		ident = "W"
	}
	switch m.Kind {
	case KindPlay:
		n.Add(ident, enc.point(m.Point))
	case KindPass:
		n.Add(ident, encodePass(enc.size))
	}
	enc.placements(n, m.Setup)
	if len(m.Labels) > 0 {
		values := make([]string, len(m.Labels))
		for i, l := range m.Labels {
			values[i] = enc.point(l.Coordinate) + ":" + l.Text
		}
		n.Add("LB", values...)
	}
	addText(n, "C", m.Comment)
	if m.ForcedNumber > 0 {
		n.Add("MN", strconv.Itoa(m.ForcedNumber))
	}
	switch m.Assessment {
	case AssessGood:
		n.Add("TE", "1")
	case AssessBad:
		n.Add("BM", "1")
	case AssessDoubtful:
		n.Add("DO")
	case AssessInteresting:
		n.Add("IT")
	}
	return n
}

func addText(n *sgf.Node, ident, v string) {
	if v != "" {
		n.Add(ident, v)
	}
}

func addPlayer(n *sgf.Node, name, rank, team string, p Player) {
	addText(n, name, p.Name)
	addText(n, rank, p.Rank.String())
	addText(n, team, p.Team)
}

// placements writes runs of same coloured stones as one AB or AW each,
// keeping the original order.
func (enc *encoder) placements(n *sgf.Node, ps []Placement) {
	for i := 0; i < len(ps); {
		j := i
		var values []string
		for ; j < len(ps) && ps[j].Side == ps[i].Side; j++ {
			values = append(values, enc.point(ps[j].Coordinate))
		}
		ident := "AB"
		if ps[i].Side == board.White {
			ident = "AW"
		}
		n.Add(ident, values...)
		i = j
	}
}
