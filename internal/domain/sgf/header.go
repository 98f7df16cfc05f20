package sgf

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"

	errs "kifudb/internal/errors"
)

// ReadRootNode reads r only up to the end of the first node and parses it.
// It is meant for indexing large archives where the moves are not needed.
func ReadRootNode(r io.Reader) (*Node, error) {
	br := bufio.NewReader(r)

	// skip to the first node
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return nil, errors.Wrap(errs.ErrMalformedRecord, "sgf: no root node")
		}
		if err != nil {
			return nil, errors.Wrap(err, "sgf: read root node")
		}
		if b == ';' {
			break
		}
	}

	var buf bytes.Buffer
	buf.WriteString("(;")
	inValue := false
loop:
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "sgf: read root node")
		}
		switch {
		case inValue && b == '\\':
			buf.WriteByte(b)
			next, err := br.ReadByte()
			if err != nil {
				break loop
			}
			buf.WriteByte(next)
			continue
		case inValue && b == ']':
			inValue = false
		case !inValue && b == '[':
			inValue = true
		case !inValue && (b == ';' || b == '(' || b == ')'):
			break loop
		}
		buf.WriteByte(b)
	}
	buf.WriteByte(')')

	c, err := Parse(buf.String())
	if err != nil {
		return nil, err
	}
	return c.Root(), nil
}
