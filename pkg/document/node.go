// Package document holds the in-memory form of a parsed KDL document: nodes
// with positional arguments, named properties and optional child blocks.
//
// The tree is immutable once built. Decoders and the blueprint resolver only
// read it, so a parsed document can be shared by concurrent readers.
package document

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Properties maps property keys to their values. Keys returns them in a
// stable order so iteration is deterministic.
type Properties map[string]AnnotatedLiteral

// Keys returns the property keys in sorted order.
func (p Properties) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}

// Node is a single KDL node.
//
// Children is nil when the node has no child block at all; a node written
// with an empty block `{}` has a non-nil, empty Children slice. The decoder
// relies on that difference when choosing an interpretation.
type Node struct {
	Name       string
	Arguments  []AnnotatedLiteral
	Properties Properties
	Children   []*Node
}

// HasChildren reports whether the node has a child block, empty or not.
func (n *Node) HasChildren() bool { return n.Children != nil }

// Clone returns a deep copy of the node. A nil child block stays nil and an
// empty one stays empty.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Name:      n.Name,
		Arguments: slices.Clone(n.Arguments),
	}
	if n.Properties != nil {
		c.Properties = maps.Clone(n.Properties)
	}
	if n.Children != nil {
		c.Children = CloneAll(n.Children)
	}
	return c
}

// CloneAll deep-copies a list of nodes. It returns an empty, non-nil slice
// for an empty, non-nil input.
func CloneAll(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// Shape summarises which parts of the node are populated, for error messages.
func (n *Node) Shape() string {
	var parts []string
	if len(n.Arguments) > 0 {
		parts = append(parts, fmt.Sprintf("%d argument(s)", len(n.Arguments)))
	}
	if len(n.Properties) > 0 {
		parts = append(parts, fmt.Sprintf("%d propert(y/ies)", len(n.Properties)))
	}
	if n.Children != nil {
		parts = append(parts, fmt.Sprintf("%d child(ren)", len(n.Children)))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("empty node %q", n.Name)
	}
	return fmt.Sprintf("node %q with %s", n.Name, strings.Join(parts, ", "))
}

// String renders the node and its children as canonical KDL.
func (n *Node) String() string {
	var b strings.Builder
	writeNode(&b, n, 0)
	return strings.TrimSuffix(b.String(), "\n")
}
