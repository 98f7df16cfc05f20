package kifu

import (
	"strings"

	"kifudb/internal/domain/board"
)

// passPoint is the FF[3] pass written on boards up to 19x19.
const passPoint = "tt"

// letters covers every coordinate of the largest board: a-z then A-Z.
const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func decodePoint(v string, size int) (board.Coordinate, bool) {
	if len(v) != 2 {
		return board.Coordinate{}, false
	}
	x, y := strings.IndexByte(letters, v[0]), strings.IndexByte(letters, v[1])
	if x < 0 || y < 0 || x >= size || y >= size {
		return board.Coordinate{}, false
	}
	return board.Coordinate{X: x, Y: y}, true
}

func encodePoint(c board.Coordinate) string {
	return string([]byte{letters[c.X], letters[c.Y]})
}

// isPass reports whether a B/W value means a pass on a board of the size.
func isPass(v string, size int) bool {
	return v == "" || v == passPoint && size <= 19
}

func encodePass(size int) string {
	if size <= 19 {
		return passPoint
	}
	return ""
}
