package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"time"

	"kifudb/internal/domain/kifu"
)

// Entry is a record as it is kept in the archive. SGF holds the normalized
// text, Hash is taken over it so the same game imported twice is found.
type Entry struct {
	ID        string        `json:"id" bson:"_id"`
	Hash      string        `json:"hash" bson:"hash"`
	Info      kifu.GameInfo `json:"info" bson:"info"`
	Year      int           `json:"year,omitempty" bson:"year,omitempty"`
	MoveCount int           `json:"move_count" bson:"move_count"`
	SGF       string        `json:"-" bson:"sgf"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
}

type Page struct {
	PageNum    int     `json:"page_num"`
	TotalPages int     `json:"total_pages"`
	Total      int64   `json:"total"`
	Kifus      []Entry `json:"kifus"`
}

func Hash(sgf string) string {
	sum := sha256.Sum256([]byte(sgf))
	return hex.EncodeToString(sum[:])
}

var yearPattern = regexp.MustCompile(`\d{4}`)

// YearOf returns the first four digit number found in a DT value, 0 if none.
// DT is free text in older records ("1998年10月", "2001-05-03,04").
func YearOf(date string) int {
	m := yearPattern.FindString(date)
	if m == "" {
		return 0
	}
	y, _ := strconv.Atoi(m)
	return y
}

// TotalPages rounds up; a page limit below one is treated as one.
func TotalPages(total int64, limit int) int {
	if limit < 1 {
		limit = 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
