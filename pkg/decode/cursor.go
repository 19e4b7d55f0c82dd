package decode

import (
	"fmt"
	"reflect"

	"github.com/stoewer/go-strcase"

	"github.com/ndisidore/smithy/pkg/document"
)

type cursorState int

const (
	awaitingKey cursorState = iota
	awaitingValue
)

type cursorEntry struct {
	key   string
	prop  document.AnnotatedLiteral
	child *document.Node
}

// MapCursor walks a node's properties, in sorted key order, and then its
// children as key/value pairs. Each NextKey must be followed by exactly one
// Value or Skip; anything else fails with ErrProtocol.
type MapCursor struct {
	s       *state
	entries []cursorEntry
	pos     int
	phase   cursorState
}

func newMapCursor(s *state, n *document.Node, snake bool) *MapCursor {
	entries := make([]cursorEntry, 0, len(n.Properties)+len(n.Children))
	for _, k := range n.Properties.Keys() {
		entries = append(entries, cursorEntry{key: k, prop: n.Properties[k]})
	}
	for _, kid := range n.Children {
		entries = append(entries, cursorEntry{key: kid.Name, child: kid})
	}
	if snake {
		for i := range entries {
			entries[i].key = strcase.SnakeCase(entries[i].key)
		}
	}
	return &MapCursor{s: s, entries: entries}
}

// Len returns the number of entries not yet visited.
func (c *MapCursor) Len() int { return len(c.entries) - c.pos }

// NextKey advances to the next entry and returns its key. ok is false once
// the entries are exhausted.
func (c *MapCursor) NextKey() (key string, ok bool, err error) {
	if c.phase == awaitingValue {
		return "", false, fmt.Errorf("%w: key requested twice without reading a value", ErrProtocol)
	}
	if c.pos >= len(c.entries) {
		return "", false, nil
	}
	c.phase = awaitingValue
	return c.entries[c.pos].key, true, nil
}

// Value decodes the pending entry into the value pointed to by v. A property
// decodes as a literal and a child as a node.
func (c *MapCursor) Value(v any) error {
	if c.phase != awaitingValue {
		return fmt.Errorf("%w: value requested without a key", ErrProtocol)
	}
	return c.s.decodeInto(v, c.value)
}

// Skip discards the pending entry.
func (c *MapCursor) Skip() error {
	if _, err := c.take(); err != nil {
		return err
	}
	return nil
}

func (c *MapCursor) value(v reflect.Value) error {
	e, err := c.take()
	if err != nil {
		return err
	}
	if e.child != nil {
		return c.s.node(e.child, v)
	}
	return c.s.literal(e.prop, v)
}

func (c *MapCursor) take() (cursorEntry, error) {
	if c.phase != awaitingValue {
		return cursorEntry{}, fmt.Errorf("%w: value requested without a key", ErrProtocol)
	}
	e := c.entries[c.pos]
	c.pos++
	c.phase = awaitingKey
	return e, nil
}

// NodeDecoder gives an Unmarshaler access to the node it is decoding and to
// the decoder's own rules.
type NodeDecoder struct {
	s *state
	n *document.Node
}

// Node returns the node being decoded. It must not be modified.
func (d *NodeDecoder) Node() *document.Node { return d.n }

// Decode decodes the whole node into the value pointed to by v. v must not
// be the Unmarshaler's own type or the call recurses.
func (d *NodeDecoder) Decode(v any) error {
	return d.s.decodeInto(v, func(rv reflect.Value) error {
		return d.s.node(d.n, rv)
	})
}

// Argument decodes argument i into the value pointed to by v.
func (d *NodeDecoder) Argument(i int, v any) error {
	if i < 0 || i >= len(d.n.Arguments) {
		return fmt.Errorf("%w: %d of %d", ErrArgumentOutOfBound, i, len(d.n.Arguments))
	}
	return d.s.decodeInto(v, func(rv reflect.Value) error {
		return d.s.literal(d.n.Arguments[i], rv)
	})
}

// Entries returns a cursor over the node's properties and children, keyed
// as written in the document.
func (d *NodeDecoder) Entries() *MapCursor { return newMapCursor(d.s, d.n, false) }
