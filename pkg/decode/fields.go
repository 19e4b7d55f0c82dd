package decode

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/stoewer/go-strcase"
)

const _tagKey = "kdl"

var (
	charType               = reflect.TypeFor[Char]()
	mapType                = reflect.TypeFor[Map]()
	enumType               = reflect.TypeFor[Enum]()
	unmarshalerType        = reflect.TypeFor[Unmarshaler]()
	literalUnmarshalerType = reflect.TypeFor[LiteralUnmarshaler]()
	textUnmarshalerType    = reflect.TypeFor[encoding.TextUnmarshaler]()
)

type structKind int

const (
	structRecord structKind = iota
	structTuple
	structNewtype
	structUnit
)

type fieldInfo struct {
	name     string
	key      string
	index    int
	optional bool
}

type structInfo struct {
	kind   structKind
	fields []fieldInfo
	byKey  map[string]int
}

var _structCache sync.Map // reflect.Type -> *structInfo

// structOf inspects t once and caches the result.
func structOf(t reflect.Type) (*structInfo, error) {
	if cached, ok := _structCache.Load(t); ok {
		return cached.(*structInfo), nil
	}
	info, err := buildStructInfo(t)
	if err != nil {
		return nil, err
	}
	actual, _ := _structCache.LoadOrStore(t, info)
	return actual.(*structInfo), nil
}

func buildStructInfo(t reflect.Type) (*structInfo, error) {
	info, err := classify(t)
	if err != nil {
		return nil, err
	}
	if info.kind == structNewtype {
		if err := checkNewtypeCycle(t, t.Field(info.fields[0].index).Type); err != nil {
			return nil, err
		}
	}
	return info, nil
}

// checkNewtypeCycle follows the pointers and newtype wrappers under root
// without consuming input. Reaching root again would never terminate.
func checkNewtypeCycle(root, inner reflect.Type) error {
	seen := map[reflect.Type]bool{root: true}
	for {
		for inner.Kind() == reflect.Pointer {
			inner = inner.Elem()
		}
		if inner.Kind() != reflect.Struct || inner == charType || hasHook(inner) {
			return nil
		}
		if seen[inner] {
			return fmt.Errorf("%w: newtype %s wraps itself", ErrUnsupportedType, root)
		}
		seen[inner] = true
		info, err := classify(inner)
		if err != nil || info.kind != structNewtype {
			return nil
		}
		inner = inner.Field(info.fields[0].index).Type
	}
}

func hasHook(t reflect.Type) bool {
	return isEnum(t) ||
		implements(t, unmarshalerType) ||
		implements(t, literalUnmarshalerType) ||
		implements(t, textUnmarshalerType)
}

// classify reads the field layout of t without following nested types.
func classify(t reflect.Type) (*structInfo, error) {
	info := &structInfo{byKey: make(map[string]int)}
	tuple := false
	for i := range t.NumField() {
		f := t.Field(i)
		name, opts := parseTag(f.Tag.Get(_tagKey))
		if f.Name == "_" {
			if opts.has("tuple") {
				tuple = true
			}
			continue
		}
		if !f.IsExported() || name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fi := fieldInfo{
			name:     f.Name,
			key:      strcase.SnakeCase(name),
			index:    i,
			optional: f.Type.Kind() == reflect.Pointer || opts.has("default"),
		}
		if prev, dup := info.byKey[fi.key]; dup {
			return nil, fmt.Errorf("%w: %s fields %s and %s both map to key %q",
				ErrUnsupportedType, t, info.fields[prev].name, f.Name, fi.key)
		}
		info.byKey[fi.key] = len(info.fields)
		info.fields = append(info.fields, fi)
	}

	switch {
	case len(info.fields) == 0:
		info.kind = structUnit
	case tuple && len(info.fields) == 1:
		info.kind = structNewtype
	case tuple:
		info.kind = structTuple
	default:
		info.kind = structRecord
	}
	return info, nil
}

type tagOptions []string

func (o tagOptions) has(opt string) bool {
	for _, s := range o {
		if s == opt {
			return true
		}
	}
	return false
}

func parseTag(tag string) (string, tagOptions) {
	name, rest, found := strings.Cut(tag, ",")
	if !found {
		return name, nil
	}
	return name, strings.Split(rest, ",")
}

func implements(t, iface reflect.Type) bool {
	return reflect.PointerTo(t).Implements(iface)
}

func isEnum(t reflect.Type) bool {
	return t.Kind() != reflect.Interface && implements(t, enumType)
}

// describe names the shape a type requests, for error messages.
func describe(t reflect.Type) string {
	switch {
	case t == charType:
		return "a char"
	case t == mapType:
		return "an ordered map"
	case isEnum(t):
		return "enum " + t.String()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return "an integer (" + t.String() + ")"
	case reflect.Uint8:
		return "a byte"
	case reflect.Float32, reflect.Float64:
		return "a float (" + t.String() + ")"
	case reflect.String:
		return "a string"
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return "a byte sequence"
		}
		return "a sequence"
	case reflect.Array:
		return fmt.Sprintf("an array of length %d", t.Len())
	case reflect.Pointer:
		return describe(t.Elem())
	case reflect.Map:
		return "a map"
	case reflect.Interface:
		return "any value"
	case reflect.Struct:
		info, err := structOf(t)
		if err != nil {
			return "struct " + t.String()
		}
		switch info.kind {
		case structUnit:
			return "unit"
		case structNewtype:
			return describe(t.Field(info.fields[0].index).Type)
		case structTuple:
			return fmt.Sprintf("tuple struct %s with %d elements", t, len(info.fields))
		default:
			return "struct " + t.String()
		}
	default:
		return t.String()
	}
}
