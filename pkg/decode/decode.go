// Package decode turns document nodes and literals into Go values. The shape
// of the target type picks the interpretation of the node: the same node can
// read as a sequence, a map or a record depending on what the caller asks
// for.
//
// Records match keys after snake-casing both the document key and the field
// name, so `physic-body` fills a field named PhysicBody. Struct tags under the
// `kdl` key rename (`kdl:"hp"`), skip (`kdl:"-"`) or default (`kdl:",default"`)
// fields. A struct whose first field is `_ struct{} \`kdl:",tuple"\`` is a
// tuple: it reads positionally from arguments or a list block.
package decode

import (
	"fmt"
	"reflect"

	"github.com/ndisidore/smithy/pkg/document"
)

const _defaultMaxDepth = 256

// Decoder holds decode options. The zero value is ready to use.
type Decoder struct {
	// MaxDepth caps node nesting. Zero means 256.
	MaxDepth int
	// DisallowUnknownFields makes record decodes fail on keys that match no
	// field instead of skipping them.
	DisallowUnknownFields bool
}

// Node decodes n into the value pointed to by v using default options.
func Node(n *document.Node, v any) error { return Decoder{}.Node(n, v) }

// Literal decodes lit into the value pointed to by v using default options.
func Literal(lit document.AnnotatedLiteral, v any) error { return Decoder{}.Literal(lit, v) }

// Node decodes n into the value pointed to by v. On failure *v is left
// untouched.
func (d Decoder) Node(n *document.Node, v any) error {
	if n == nil {
		return fmt.Errorf("%w: nil node", ErrInvalidTarget)
	}
	return d.into(v, func(s *state, out reflect.Value) error {
		return s.node(n, out)
	})
}

// Literal decodes lit into the value pointed to by v. On failure *v is left
// untouched.
func (d Decoder) Literal(lit document.AnnotatedLiteral, v any) error {
	return d.into(v, func(s *state, out reflect.Value) error {
		return s.literal(lit, out)
	})
}

func (d Decoder) into(v any, fn func(*state, reflect.Value) error) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: got %T", ErrInvalidTarget, v)
	}
	fresh := reflect.New(rv.Type().Elem()).Elem()
	if err := fn(d.state(), fresh); err != nil {
		return err
	}
	rv.Elem().Set(fresh)
	return nil
}

func (d Decoder) state() *state {
	maxDepth := d.MaxDepth
	if maxDepth <= 0 {
		maxDepth = _defaultMaxDepth
	}
	return &state{maxDepth: maxDepth, strict: d.DisallowUnknownFields}
}

// state is the per-call decode state. Every value handed to it is a fresh,
// addressable zero value.
type state struct {
	maxDepth int
	strict   bool
	depth    int
}

// decodeInto decodes into a fresh value of v's type and stores it only on
// success. Hooks use it so their targets see the same guarantee.
func (s *state) decodeInto(v any, fn func(reflect.Value) error) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: got %T", ErrInvalidTarget, v)
	}
	fresh := reflect.New(rv.Type().Elem()).Elem()
	if err := fn(fresh); err != nil {
		return err
	}
	rv.Elem().Set(fresh)
	return nil
}
