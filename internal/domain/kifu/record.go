// Package kifu maps SGF trees to go game records and back. Moves are replayed
// through the rule engine while decoding, so every move knows what it captured
// and whether it was legal.
package kifu

import (
	"strings"

	"kifudb/internal/domain/board"
)

// MoveKind tells a played stone from a pass and from nodes that carry only
// comments, labels or setup stones.
type MoveKind int8

const (
	KindNone MoveKind = iota
	KindPlay
	KindPass
	// KindVariations is not a node of the record: it holds variations that
	// open a line before any of its nodes.
	KindVariations
)

// Assessment is the annotator's judgement of a move.
type Assessment int8

const (
	AssessNone Assessment = iota
	AssessGood
	AssessBad
	AssessDoubtful
	AssessInteresting
)

// Label is a text mark on a board point (LB).
type Label struct {
	board.Coordinate `bson:",inline"`
	Text string `json:"text" bson:"text"`
}

// Placement is a stone put on the board outside of play (AB/AW).
type Placement struct {
	board.Coordinate `bson:",inline"`
	Side board.Side `json:"side" bson:"side"`
}

// Move is one node of a line of play.
type Move struct {
	Kind MoveKind   `json:"kind" bson:"kind"`
	Side board.Side `json:"side" bson:"side"`
	// Point is only meaningful for KindPlay.
	Point board.Coordinate `json:"point" bson:"point"`
	// Stone is the engine stone for a play; its Alive flag reflects the end of
	// the line the move belongs to.
	Stone    *board.Stone       `json:"-" bson:"-"`
	Captured []board.Coordinate `json:"captured,omitempty" bson:"captured,omitempty"`
	// Rejected marks a recorded move the rules did not allow.
	Rejected bool `json:"rejected,omitempty" bson:"rejected,omitempty"`

	Number       int            `json:"number" bson:"number"`
	ForcedNumber int            `json:"forced_number,omitempty" bson:"forced_number,omitempty"`
	Name         string         `json:"name,omitempty" bson:"name,omitempty"`
	Comment      string         `json:"comment,omitempty" bson:"comment,omitempty"`
	Labels       []Label        `json:"labels,omitempty" bson:"labels,omitempty"`
	Assessment   Assessment     `json:"assessment,omitempty" bson:"assessment,omitempty"`
	Setup        []Placement    `json:"setup,omitempty" bson:"setup,omitempty"`
	Variations   []*MoveHistory `json:"variations,omitempty" bson:"variations,omitempty"`
}

// IsPlayed reports whether the move is a stone or a pass.
func (m *Move) IsPlayed() bool { return m.Kind == KindPlay || m.Kind == KindPass }


// MoveHistory is one line of play. The first variation of a move continues
// the line it belongs to; the others are alternatives.
type MoveHistory struct {
	Moves []*Move `json:"moves" bson:"moves"`
}

// Player describes one side of the game.
type Player struct {
	Name string `json:"name,omitempty" bson:"name,omitempty"`
	Rank Rank   `json:"rank" bson:"rank"`
	Team string `json:"team,omitempty" bson:"team,omitempty"`
}

func (p Player) display() string {
	if r := p.Rank.String(); r != "" && p.Name != "" {
		return p.Name + " " + r
	}
	return p.Name
}

// MatchTime is the time control. Only MainSeconds is carried by SGF (TM);
// the byo-yomi settings travel as free text in GameInfo.OverTime.
type MatchTime struct {
	MainSeconds    int `json:"main_seconds,omitempty" bson:"main_seconds,omitempty"`
	ByoYomiSeconds int `json:"byo_yomi_seconds,omitempty" bson:"byo_yomi_seconds,omitempty"`
	ByoYomiMoves   int `json:"byo_yomi_moves,omitempty" bson:"byo_yomi_moves,omitempty"`
	ByoYomiPeriods int `json:"byo_yomi_periods,omitempty" bson:"byo_yomi_periods,omitempty"`
}

// GameInfo is the metadata found in the root node.
type GameInfo struct {
	Name      string  `json:"name,omitempty" bson:"name,omitempty"`
	BoardSize int     `json:"board_size" bson:"board_size"`
	Black     Player  `json:"black" bson:"black"`
	White     Player  `json:"white" bson:"white"`
	Komi      float64 `json:"komi" bson:"komi"`
	Handicap  int     `json:"handicap,omitempty" bson:"handicap,omitempty"`

	Date  string `json:"date,omitempty" bson:"date,omitempty"`
	Place string `json:"place,omitempty" bson:"place,omitempty"`
	Rules string `json:"rules,omitempty" bson:"rules,omitempty"`
	Event string `json:"event,omitempty" bson:"event,omitempty"`
	Round string `json:"round,omitempty" bson:"round,omitempty"`

	TimeLimit MatchTime `json:"time_limit" bson:"time_limit"`
	OverTime  string    `json:"over_time,omitempty" bson:"over_time,omitempty"`

	Result Result `json:"result" bson:"result"`
	// ResultText is the RE value as written in the record.
	ResultText string `json:"result_text,omitempty" bson:"result_text,omitempty"`

	Comment     string `json:"comment,omitempty" bson:"comment,omitempty"`
	Application string `json:"application,omitempty" bson:"application,omitempty"`
	Annotator   string `json:"annotator,omitempty" bson:"annotator,omitempty"`
	Source      string `json:"source,omitempty" bson:"source,omitempty"`
	Author      string `json:"author,omitempty" bson:"author,omitempty"`
	Copyright   string `json:"copyright,omitempty" bson:"copyright,omitempty"`
}

// DisplayName returns the game name, or "<black> <rank> vs <white> <rank>"
// when the record has none.
func (i GameInfo) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	b, w := i.Black.display(), i.White.display()
	if b == "" && w == "" {
		return ""
	}
	return strings.TrimSpace(b + " vs " + w)
}

// GameRecord is a decoded game: metadata, the initial position and the tree
// of moves.
type GameRecord struct {
	Info  GameInfo     `json:"info" bson:"info"`
	Setup []Placement  `json:"setup,omitempty" bson:"setup,omitempty"`
	Root  *MoveHistory `json:"root" bson:"root"`
}

// MainLine returns the played moves found by always following the first
// variation.
func (r *GameRecord) MainLine() []*Move {
	var retVal []*Move
	for h := r.Root; h != nil; {
		var next *MoveHistory
		for _, m := range h.Moves {
			if m.IsPlayed() {
				retVal = append(retVal, m)
			}
			if len(m.Variations) > 0 {
				next = m.Variations[0]
				break
			}
		}
		h = next
	}
	return retVal
}
