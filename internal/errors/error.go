package errors

import "github.com/pkg/errors"

var (
	ErrInvalidSize         = errors.New("board size must be odd and between 1 and 51")
	ErrMalformedRecord     = errors.New("malformed game record")
	ErrUnsupportedGameType = errors.New("game record is not a go game")
	ErrEmptyRecord         = errors.New("game record is empty")
	ErrUnknownCharset      = errors.New("unknown character encoding")
	ErrKifuNotFound        = errors.New("kifu not found")
	ErrKifuExists          = errors.New("kifu already archived")
	ErrInternal            = errors.New("internal error")
)
