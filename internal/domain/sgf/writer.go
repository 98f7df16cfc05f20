package sgf

import "strings"

// Write serialises every tree of the collection.
func Write(c *Collection) string {
	var b strings.Builder
	for _, t := range c.Trees {
		writeTree(&b, t)
	}
	return b.String()
}

// String serialises a single tree.
func (t *GameTree) String() string {
	var b strings.Builder
	writeTree(&b, t)
	return b.String()
}

// writeTree emits the line depth first. Branches attached to a node follow
// that node; tree branches not attached to any node come last.
func writeTree(b *strings.Builder, t *GameTree) {
	b.WriteByte('(')
	written := make(map[*GameTree]bool)
	for _, n := range t.Nodes {
		writeNode(b, n)
		for _, br := range n.Branches {
			writeTree(b, br)
			written[br] = true
		}
	}
	for _, br := range t.Branches {
		if !written[br] {
			writeTree(b, br)
		}
	}
	b.WriteByte(')')
}

func writeNode(b *strings.Builder, n *Node) {
	b.WriteByte(';')
	for _, p := range n.Properties {
		b.WriteString(p.Ident)
		if len(p.Values) == 0 {
			b.WriteString("[]")
			continue
		}
		for _, v := range p.Values {
			b.WriteByte('[')
			b.WriteString(Escape(v))
			b.WriteByte(']')
		}
	}
}
