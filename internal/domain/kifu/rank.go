package kifu

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// RankType is the scale a rank is measured on.
type RankType int8

const (
	RankUnknown RankType = iota
	Kyu
	Dan
	Pro
)

// Rank is a player's strength, e.g. {9, Dan} for 9d.
type Rank struct {
	Value int      `json:"value" bson:"value"`
	Type  RankType `json:"type" bson:"type"`
}

// IsZero reports whether the rank is unknown.
func (r Rank) IsZero() bool { return r.Value <= 0 || r.Type == RankUnknown }

// String returns the SGF form: 9d, 5k, 3p. Unknown ranks are empty.
func (r Rank) String() string {
	if r.IsZero() {
		return ""
	}
	n := strconv.Itoa(r.Value)
	switch r.Type {
	case Kyu:
		return n + "k"
	case Pro:
		return n + "p"
	}
	return n + "d"
}

// ChineseString returns the Chinese display form: 初段, 9段, 5级, 职业9段.
func (r Rank) ChineseString() string {
	if r.IsZero() {
		return ""
	}
	if r.Type == Kyu {
		return strconv.Itoa(r.Value) + "级"
	}
	s := strconv.Itoa(r.Value) + "段"
	if r.Value == 1 {
		s = "初段"
	}
	if r.Type == Pro {
		s = "职业" + s
	}
	return s
}

var (
	rankPattern  = regexp.MustCompile(`(?i)^(.+?)\s*(dan|kyu|pro|d|k|p)$`)
	rankReplacer = strings.NewReplacer("初段", "1d", "段", "d", "級", "k", "级", "k")
)

// ParseRank reads ranks such as "9d", "5 kyu", "3p", "九段", "十二级" or "初段".
// Anything it cannot read yields the zero Rank.
func ParseRank(s string) Rank {
	s = strings.TrimSpace(width.Narrow.String(s))
	s = strings.TrimRight(s, "?* ")

	pro := false
	for _, prefix := range []string{"职业", "職業"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			pro = true
		}
	}
	s = rankReplacer.Replace(s)

	m := rankPattern.FindStringSubmatch(s)
	if m == nil {
		return Rank{}
	}
	n, ok := parseNumeral(strings.TrimSpace(m[1]))
	if !ok {
		return Rank{}
	}

	r := Rank{Value: n}
	switch strings.ToLower(m[2]) {
	case "k", "kyu":
		r.Type = Kyu
	case "p", "pro":
		r.Type = Pro
	default:
		r.Type = Dan
	}
	if pro && r.Type == Dan {
		r.Type = Pro
	}
	return r
}

var chineseDigits = map[rune]int{
	'一': 1, '二': 2, '两': 2, '三': 3, '四': 4, '五': 5,
	'六': 6, '七': 7, '八': 8, '九': 9,
}

// parseNumeral reads a positive integer written in arabic digits or in
// Chinese numerals up to 九十九.
func parseNumeral(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, n > 0
	}
	total, cur := 0, 0
	tens := false
	for _, r := range s {
		if d, ok := chineseDigits[r]; ok {
			if cur != 0 {
				return 0, false
			}
			cur = d
			continue
		}
		if r != '十' || tens {
			return 0, false
		}
		tens = true
		if cur == 0 {
			cur = 1
		}
		total += cur * 10
		cur = 0
	}
	total += cur
	return total, total > 0
}
