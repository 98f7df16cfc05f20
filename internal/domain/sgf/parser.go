package sgf

import (
	"fmt"
	"strings"

	errs "kifudb/internal/errors"
)

// SyntaxError describes a grammar violation at a byte offset of the input.
type SyntaxError struct {
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("sgf: %s at offset %d", e.Message, e.Offset)
}

// Unwrap lets callers match any syntax error with errors.Is(err, ErrMalformedRecord).
func (e *SyntaxError) Unwrap() error { return errs.ErrMalformedRecord }

// Parse reads a whole collection.
//
// The scan is a single pass with an explicit stack of open trees, so deeply
// nested variations do not grow the goroutine stack. Text before the first
// "(" is ignored; after it only whitespace may separate top level trees.
func Parse(text string) (*Collection, error) {
	p := parser{src: text, lastProp: -1}
	return p.parse()
}

type parser struct {
	src string
	pos int

	coll  Collection
	stack []*GameTree
	node  *Node
	// index of the last property of node, -1 if none
	lastProp int

	ident      strings.Builder
	identStart int
}

func (p *parser) errorf(offset int, format string, args ...interface{}) error {
	return &SyntaxError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) current() *GameTree {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

func (p *parser) parse() (*Collection, error) {
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		cur := p.current()

		if cur == nil {
			switch {
			case ch == '(':
				t := &GameTree{}
				p.coll.Trees = append(p.coll.Trees, t)
				p.open(t)
			case len(p.coll.Trees) > 0 && !isSpace(ch):
				return nil, p.errorf(p.pos, "unexpected %q after game tree", ch)
			}
			p.pos++
			continue
		}

		switch {
		case ch == '(':
			if err := p.danglingIdent(); err != nil {
				return nil, err
			}
			child := &GameTree{}
			cur.Branches = append(cur.Branches, child)
			if n := len(cur.Nodes); n > 0 {
				cur.Nodes[n-1].Branches = append(cur.Nodes[n-1].Branches, child)
			}
			p.open(child)
			p.pos++

		case ch == ')':
			if err := p.danglingIdent(); err != nil {
				return nil, err
			}
			if len(cur.Nodes) == 0 && len(cur.Branches) == 0 {
				return nil, p.errorf(p.pos, "empty game tree")
			}
			// a ';' after a closed branch starts a new node of the enclosing line
			p.stack = p.stack[:len(p.stack)-1]
			p.node, p.lastProp = nil, -1
			p.pos++

		case ch == ';':
			if err := p.danglingIdent(); err != nil {
				return nil, err
			}
			p.node = &Node{}
			p.lastProp = -1
			cur.Nodes = append(cur.Nodes, p.node)
			p.pos++

		case ch == '[':
			if err := p.value(); err != nil {
				return nil, err
			}

		case ch == ']':
			return nil, p.errorf(p.pos, "unexpected ']'")

		case isLetter(ch):
			if p.node == nil {
				return nil, p.errorf(p.pos, "property outside a node")
			}
			if p.ident.Len() == 0 {
				p.identStart = p.pos
			}
			p.ident.WriteByte(ch)
			p.pos++

		case isSpace(ch):
			p.pos++

		default:
			return nil, p.errorf(p.pos, "unexpected character %q", ch)
		}
	}

	if len(p.stack) > 0 {
		return nil, p.errorf(len(p.src), "unclosed game tree")
	}
	if len(p.coll.Trees) == 0 {
		return nil, p.errorf(0, "no game tree")
	}
	return &p.coll, nil
}

func (p *parser) open(t *GameTree) {
	p.stack = append(p.stack, t)
	p.node, p.lastProp = nil, -1
}

// value consumes a bracketed value starting at p.pos and attaches it either to
// a new property (pending identifier) or to the last property of the node.
func (p *parser) value() error {
	start := p.pos
	if p.node == nil {
		return p.errorf(start, "value outside a node")
	}

	end := -1
	for i := start + 1; i < len(p.src); i++ {
		if p.src[i] == '\\' {
			i++
			continue
		}
		if p.src[i] == ']' {
			end = i
			break
		}
	}
	if end < 0 {
		return p.errorf(start, "unterminated value")
	}
	v := Unescape(p.src[start+1 : end])

	if p.ident.Len() > 0 {
		p.node.Properties = append(p.node.Properties, Property{Ident: p.ident.String(), Values: []string{v}})
		p.lastProp = len(p.node.Properties) - 1
		p.ident.Reset()
	} else {
		if p.lastProp < 0 {
			return p.errorf(start, "value without identifier")
		}
		prop := &p.node.Properties[p.lastProp]
		prop.Values = append(prop.Values, v)
	}
	p.pos = end + 1
	return nil
}

func (p *parser) danglingIdent() error {
	if p.ident.Len() == 0 {
		return nil
	}
	return p.errorf(p.identStart, "property %s has no value", p.ident.String())
}

func isLetter(ch byte) bool { return ch >= 'A' && ch <= 'Z' || ch >= 'a' && ch <= 'z' }

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}
