// Package sgf reads and writes the generic tree grammar of SGF game records:
// collections of game trees made of nodes, properties and bracketed values.
// It knows nothing about go; see the kifu package for that.
package sgf

// Property is one identifier with its ordered values, e.g. AB[aa][bb].
type Property struct {
	Ident  string
	Values []string
}

// Value returns the first value, or "" if there is none.
func (p Property) Value() string {
	if len(p.Values) == 0 {
		return ""
	}
	return p.Values[0]
}

// Node is one ";" node.
//
// Branches holds the game trees that start right after this node. The first
// branch continues the line, the others are alternatives. Nodes do not point
// back at their tree; traversals carry the parent along.
type Node struct {
	Properties []Property
	Branches   []*GameTree
}

// Get returns the first property with the identifier, or nil.
func (n *Node) Get(ident string) *Property {
	for i := range n.Properties {
		if n.Properties[i].Ident == ident {
			return &n.Properties[i]
		}
	}
	return nil
}

// Value returns the first value of the property, or "" if absent.
func (n *Node) Value(ident string) string {
	if p := n.Get(ident); p != nil {
		return p.Value()
	}
	return ""
}

// Has reports whether the node carries the property.
func (n *Node) Has(ident string) bool { return n.Get(ident) != nil }

// Add appends a property. Empty value lists are stored as a single empty value.
func (n *Node) Add(ident string, values ...string) {
	if len(values) == 0 {
		values = []string{""}
	}
	n.Properties = append(n.Properties, Property{Ident: ident, Values: values})
}

// GameTree is a parenthesised line of nodes with the trees nested in it.
type GameTree struct {
	Nodes    []*Node
	Branches []*GameTree
}

// Root returns the first node, or nil for an empty tree.
func (t *GameTree) Root() *Node {
	if len(t.Nodes) == 0 {
		return nil
	}
	return t.Nodes[0]
}

// MainLine returns the nodes reached by always taking the first branch.
func (t *GameTree) MainLine() []*Node {
	var retVal []*Node
	for cur := t; cur != nil; {
		retVal = append(retVal, cur.Nodes...)
		if len(cur.Branches) == 0 {
			break
		}
		cur = cur.Branches[0]
	}
	return retVal
}

// Collection is a whole SGF text: one or more game trees.
type Collection struct {
	Trees []*GameTree
}

// Root returns the root node of the first game, or nil.
func (c *Collection) Root() *Node {
	if len(c.Trees) == 0 {
		return nil
	}
	return c.Trees[0].Root()
}
