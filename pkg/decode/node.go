package decode

import (
	"encoding"
	"fmt"
	"reflect"

	"github.com/ndisidore/smithy/pkg/document"
)

const _listItemName = "-"

// node decodes n into v, counting one level of nesting.
func (s *state) node(n *document.Node, v reflect.Value) error {
	s.depth++
	defer func() { s.depth-- }()
	if s.depth > s.maxDepth {
		return fmt.Errorf("%w: limit is %d", ErrDepthExceeded, s.maxDepth)
	}
	return s.nodeValue(n, v)
}

func (s *state) nodeValue(n *document.Node, v reflect.Value) error {
	t := v.Type()
	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface && implements(t, unmarshalerType) {
		u, _ := v.Addr().Interface().(Unmarshaler)
		return u.UnmarshalKDL(&NodeDecoder{s: s, n: n})
	}

	if len(n.Arguments) > 0 && (len(n.Properties) > 0 || n.Children != nil) {
		return fmt.Errorf("%w: %s", ErrAmbiguousNode, n.Shape())
	}

	// A node holding one argument and nothing else reads as that argument
	// wherever a scalar is wanted.
	single := len(n.Arguments) == 1 && n.Children == nil
	if single && wantsLiteral(t) && !bytesFromNumber(t, n.Arguments[0]) {
		return s.literal(n.Arguments[0], v)
	}

	switch {
	case t == charType, isEnum(t):
		return mismatch(describe(t), n.Shape())
	case t == mapType:
		return s.orderedMap(n, v)
	}

	switch t.Kind() {
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
		}
		val, err := s.untyped(n)
		if err != nil {
			return err
		}
		if val != nil {
			v.Set(reflect.ValueOf(val))
		}
		return nil
	case reflect.Pointer:
		p := reflect.New(t.Elem())
		if err := s.nodeValue(n, p.Elem()); err != nil {
			return err
		}
		v.Set(p)
		return nil
	case reflect.Slice, reflect.Array:
		return s.sequence(n, v)
	case reflect.Map:
		return s.mapping(n, v)
	case reflect.Struct:
		info, err := structOf(t)
		if err != nil {
			return err
		}
		switch info.kind {
		case structNewtype:
			return s.nodeValue(n, v.Field(info.fields[0].index))
		case structUnit:
			if !isEmpty(n) {
				return mismatch(describe(t), n.Shape())
			}
			return nil
		case structTuple:
			return s.sequence(n, v)
		default:
			if single {
				return s.literal(n.Arguments[0], v)
			}
			return s.record(n, v, info)
		}
	default:
		// Scalars reach here only when the node is not a single argument.
		return mismatch(describe(t), n.Shape())
	}
}

// wantsLiteral reports whether t is satisfied by a single literal rather
// than by a whole node.
func wantsLiteral(t reflect.Type) bool {
	switch {
	case t == charType, isEnum(t):
		return true
	case t == mapType:
		return false
	case implements(t, literalUnmarshalerType), implements(t, textUnmarshalerType):
		return t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8
	default:
		return false
	}
}

// bytesFromNumber reports whether a plain byte slice is fed a single
// non-string argument, which reads as a one-element sequence.
func bytesFromNumber(t reflect.Type, lit document.AnnotatedLiteral) bool {
	if t.Kind() != reflect.Slice || t.Elem().Kind() != reflect.Uint8 || hasHook(t) {
		return false
	}
	k := lit.Literal.Kind()
	return k != document.KindString && k != document.KindNull
}

func isEmpty(n *document.Node) bool {
	return len(n.Arguments) == 0 && len(n.Properties) == 0 && n.Children == nil
}

// isListBlock reports whether n is a bare block whose children are all
// named "-". A block mixing "-" with other names is not a list.
func isListBlock(n *document.Node) bool {
	if len(n.Arguments) > 0 || len(n.Properties) > 0 || n.Children == nil {
		return false
	}
	for _, kid := range n.Children {
		if kid.Name != _listItemName {
			return false
		}
	}
	return true
}

// untyped builds a self-describing value: nil for an empty node, []any for
// arguments or a list block, and a Map otherwise.
func (s *state) untyped(n *document.Node) (any, error) {
	switch {
	case isEmpty(n):
		return nil, nil
	case len(n.Arguments) > 0:
		out := make([]any, len(n.Arguments))
		for i, arg := range n.Arguments {
			out[i] = arg.Literal.Value()
		}
		return out, nil
	case isListBlock(n):
		out := make([]any, len(n.Children))
		for i, kid := range n.Children {
			var elem any
			if err := s.node(kid, reflect.ValueOf(&elem).Elem()); err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = elem
		}
		return out, nil
	default:
		var m Map
		if err := s.orderedMap(n, reflect.ValueOf(&m).Elem()); err != nil {
			return nil, err
		}
		return m, nil
	}
}

// sequence fills a slice, array or tuple struct from the node's arguments or
// from a list block.
func (s *state) sequence(n *document.Node, v reflect.Value) error {
	t := v.Type()
	if len(n.Properties) > 0 || (len(n.Arguments) == 0 && n.Children == nil) {
		return mismatch(describe(t)+" (arguments only, or children all named \"-\")", n.Shape())
	}
	if n.Children != nil && !isListBlock(n) {
		return mismatch(describe(t)+" (children all named \"-\")", n.Shape())
	}

	count := len(n.Arguments)
	if n.Children != nil {
		count = len(n.Children)
	}
	elem := func(i int, into reflect.Value) error {
		var err error
		if n.Children != nil {
			err = s.node(n.Children[i], into)
		} else {
			err = s.literal(n.Arguments[i], into)
		}
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		return nil
	}

	switch t.Kind() {
	case reflect.Slice:
		out := reflect.MakeSlice(t, count, count)
		for i := range count {
			if err := elem(i, out.Index(i)); err != nil {
				return err
			}
		}
		v.Set(out)
		return nil
	case reflect.Array:
		if err := checkLength(t.Len(), count); err != nil {
			return err
		}
		for i := range count {
			if err := elem(i, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	default:
		info, err := structOf(t)
		if err != nil {
			return err
		}
		if err := checkLength(len(info.fields), count); err != nil {
			return err
		}
		for i, f := range info.fields {
			if err := elem(i, v.Field(f.index)); err != nil {
				return err
			}
		}
		return nil
	}
}

func checkLength(want, got int) error {
	switch {
	case got < want:
		return fmt.Errorf("%w: too few elements, expected %d, got %d", ErrLength, want, got)
	case got > want:
		return fmt.Errorf("%w: too many elements, expected %d, got %d", ErrLength, want, got)
	default:
		return nil
	}
}

// mapping fills a Go map from properties then children. A repeated child
// name overwrites the earlier entry.
func (s *state) mapping(n *document.Node, v reflect.Value) error {
	t := v.Type()
	if len(n.Arguments) > 0 {
		return mismatch(describe(t), n.Shape())
	}
	kt := t.Key()
	if kt.Kind() != reflect.String && !implements(kt, textUnmarshalerType) {
		return fmt.Errorf("%w: map key type %s", ErrUnsupportedType, kt)
	}

	out := reflect.MakeMapWithSize(t, len(n.Properties)+len(n.Children))
	cur := newMapCursor(s, n, false)
	for {
		key, ok, err := cur.NextKey()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		k := reflect.New(kt).Elem()
		if kt.Kind() == reflect.String {
			k.SetString(key)
		} else {
			u, _ := k.Addr().Interface().(encoding.TextUnmarshaler)
			if err := u.UnmarshalText([]byte(key)); err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
		}
		val := reflect.New(t.Elem()).Elem()
		if err := cur.value(val); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		out.SetMapIndex(k, val)
	}
	v.Set(out)
	return nil
}

// orderedMap fills a Map, keeping every entry in document order.
func (s *state) orderedMap(n *document.Node, v reflect.Value) error {
	if len(n.Arguments) > 0 {
		return mismatch(describe(mapType), n.Shape())
	}
	out := make(Map, 0, len(n.Properties)+len(n.Children))
	cur := newMapCursor(s, n, false)
	for {
		key, ok, err := cur.NextKey()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		var val any
		if err := cur.value(reflect.ValueOf(&val).Elem()); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		out = append(out, MapEntry{Key: key, Value: val})
	}
	v.Set(reflect.ValueOf(out))
	return nil
}

// record fills struct fields by snake-cased key.
func (s *state) record(n *document.Node, v reflect.Value, info *structInfo) error {
	if len(n.Arguments) > 0 {
		return mismatch(describe(v.Type()), n.Shape())
	}

	seen := make([]bool, len(info.fields))
	cur := newMapCursor(s, n, true)
	for {
		key, ok, err := cur.NextKey()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		idx, known := info.byKey[key]
		if !known {
			if s.strict {
				return fmt.Errorf("%w %q in %s", ErrUnknownField, key, v.Type())
			}
			if err := cur.Skip(); err != nil {
				return err
			}
			continue
		}
		if seen[idx] {
			return fmt.Errorf("%w %q in %s", ErrDuplicateField, key, v.Type())
		}
		seen[idx] = true
		f := info.fields[idx]
		if err := cur.value(v.Field(f.index)); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}

	for i, f := range info.fields {
		if !seen[i] && !f.optional {
			return fmt.Errorf("%w %q in %s", ErrMissingField, f.key, v.Type())
		}
	}
	return nil
}
