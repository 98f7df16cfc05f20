package kifu

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"kifudb/internal/domain/board"
)

// ResultType is how a game ended.
type ResultType int8

const (
	ResultUnknown ResultType = iota
	ResultNormal
	ResultResign
	ResultDraw
	ResultTime
	ResultForfeit
)

// Result is the outcome of a game. Score is the winning margin in points for
// ResultNormal and zero otherwise.
type Result struct {
	Type   ResultType `json:"type" bson:"type"`
	Winner board.Side `json:"winner" bson:"winner"`
	Score  float64    `json:"score" bson:"score"`
}

func sideLetter(s board.Side) string {
	if s == board.White {
		return "W"
	}
	return "B"
}

func sideChinese(s board.Side) string {
	if s == board.White {
		return "白"
	}
	return "黑"
}

func formatScore(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// String returns the SGF RE form: B+3.5, W+R, B+T, W+F, 0 for a draw and ?
// when unknown.
func (r Result) String() string {
	switch r.Type {
	case ResultDraw:
		return "0"
	case ResultNormal:
		return sideLetter(r.Winner) + "+" + formatScore(r.Score)
	case ResultResign:
		return sideLetter(r.Winner) + "+R"
	case ResultTime:
		return sideLetter(r.Winner) + "+T"
	case ResultForfeit:
		return sideLetter(r.Winner) + "+F"
	}
	return "?"
}

// ChineseString returns the result the way Chinese records write it, e.g.
// 黑中盘胜 or 白胜2.5目. Unknown results are empty.
func (r Result) ChineseString() string {
	side := sideChinese(r.Winner)
	switch r.Type {
	case ResultDraw:
		return "和棋"
	case ResultNormal:
		if r.Score == 0.5 {
			return side + "半目胜"
		}
		return side + "胜" + formatScore(r.Score) + "目"
	case ResultResign:
		return side + "中盘胜"
	case ResultTime:
		return side + "超时胜"
	case ResultForfeit:
		return side + "不战胜"
	}
	return ""
}

var (
	strictResult  = regexp.MustCompile(`^([BWbw])\+(.*)$`)
	resignResult  = regexp.MustCompile(`([白黑黒])中盘胜`)
	pointsResult  = regexp.MustCompile(`([白黑黒])胜([^目]+)目(.*)`)
	halfResult    = regexp.MustCompile(`([白黑黒])半目胜`)
	timeResult    = regexp.MustCompile(`([白黑黒])超时胜`)
	forfeitResult = regexp.MustCompile(`([白黑黒])不战胜`)
)

func chineseSide(s string) board.Side {
	if s == "白" {
		return board.White
	}
	return board.Black
}

// ParseResult reads an RE value. The strict SGF form is tried first, then
// the Chinese phrasings. Anything else yields a ResultUnknown.
func ParseResult(s string) Result {
	s = strings.TrimSpace(width.Narrow.String(s))

	switch strings.ToLower(s) {
	case "0", "draw", "jigo", "d", "和棋", "和", "平局":
		return Result{Type: ResultDraw}
	case "", "?", "void":
		return Result{}
	}

	if m := strictResult.FindStringSubmatch(s); m != nil {
		r := Result{Winner: board.Black}
		if strings.EqualFold(m[1], "w") {
			r.Winner = board.White
		}
		// a bare "B+" names the winner but not how the game was won
		switch rest := strings.ToLower(strings.TrimSpace(m[2])); rest {
		case "r", "resign":
			r.Type = ResultResign
		case "t", "time":
			r.Type = ResultTime
		case "f", "forfeit":
			r.Type = ResultForfeit
		default:
			if f, err := strconv.ParseFloat(rest, 64); err == nil {
				r.Type = ResultNormal
				r.Score = f
			}
		}
		return r
	}

	if m := resignResult.FindStringSubmatch(s); m != nil {
		return Result{Type: ResultResign, Winner: chineseSide(m[1])}
	}
	if m := pointsResult.FindStringSubmatch(s); m != nil {
		front := strings.TrimSpace(m[2])
		var score float64
		switch {
		case front == "半":
			score = 0.5
		default:
			if f, err := strconv.ParseFloat(front, 64); err == nil {
				score = f
			} else if n, ok := parseNumeral(front); ok {
				score = float64(n)
			} else {
				return Result{}
			}
			if strings.HasPrefix(strings.TrimSpace(m[3]), "半") {
				score += 0.5
			}
		}
		return Result{Type: ResultNormal, Winner: chineseSide(m[1]), Score: score}
	}
	if m := halfResult.FindStringSubmatch(s); m != nil {
		return Result{Type: ResultNormal, Winner: chineseSide(m[1]), Score: 0.5}
	}
	if m := timeResult.FindStringSubmatch(s); m != nil {
		return Result{Type: ResultTime, Winner: chineseSide(m[1])}
	}
	if m := forfeitResult.FindStringSubmatch(s); m != nil {
		return Result{Type: ResultForfeit, Winner: chineseSide(m[1])}
	}
	return Result{}
}
