package decode

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ndisidore/smithy/pkg/document"
)

// Char requests a single Unicode scalar value. A plain rune is an int32 and
// decodes as a number; Char accepts (char)"x" and integer code points.
type Char rune

// String returns the character as a one-rune string.
func (c Char) String() string { return string(rune(c)) }

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   string
	Value any
}

// Map is an insertion-ordered mapping. Untyped decodes produce it for nodes
// with properties or children: properties first, then children in document
// order. Keys may repeat when a block repeats a child name.
type Map []MapEntry

// Get returns the value of the first entry with the given key.
func (m Map) Get(key string) (any, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in order.
func (m Map) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

// MarshalJSON encodes the map as a JSON object, keeping entry order.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	_ = buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			_ = buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", e.Key, err)
		}
		_, _ = buf.Write(k)
		_ = buf.WriteByte(':')
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("encoding value of %q: %w", e.Key, err)
		}
		_, _ = buf.Write(v)
	}
	_ = buf.WriteByte('}')
	return buf.Bytes(), nil
}

// VariantKind says which associated data a tagged-union variant carries.
type VariantKind int

// Variant kinds.
const (
	// VariantUnit carries nothing and is written as a bare string: "Idle".
	VariantUnit VariantKind = iota
	// VariantNewtype carries one value and is written with the variant as
	// annotation: (Named)"Macy".
	VariantNewtype
	// VariantCompound carries several values or fields. No literal form
	// exists for it, so requesting one always fails.
	VariantCompound
)

// Variant describes one arm of a tagged union.
type Variant struct {
	Name string
	Kind VariantKind
	// New returns a pointer to a fresh associated value. Only newtype
	// variants use it.
	New func() any
}

// Enum is implemented by pointers to tagged-union types. The decoder picks
// the variant and hands it over through SetVariant; value is nil for unit
// variants and the decoded associated value otherwise.
type Enum interface {
	Variants() []Variant
	SetVariant(name string, value any) error
}

// Unmarshaler is implemented by pointers to types that decode themselves
// from a node.
type Unmarshaler interface {
	UnmarshalKDL(dec *NodeDecoder) error
}

// LiteralUnmarshaler is implemented by pointers to types that decode
// themselves from a single annotated literal.
type LiteralUnmarshaler interface {
	UnmarshalKDLLiteral(lit document.AnnotatedLiteral) error
}
