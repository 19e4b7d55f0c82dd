package decode

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ndisidore/smithy/pkg/document"
)

const (
	_annotationByte   = "byte"
	_annotationChar   = "char"
	_annotationBase64 = "base64"
)

// literal decodes a single annotated literal into v.
func (s *state) literal(lit document.AnnotatedLiteral, v reflect.Value) error {
	if ok, err := literalHook(lit, v); ok {
		return err
	}

	t := v.Type()
	switch {
	case t == charType:
		return decodeChar(lit, v)
	case t == mapType:
		return mismatch(describe(t), lit.Literal.Describe())
	case isEnum(t):
		return s.enum(lit, v)
	}

	switch t.Kind() {
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
		}
		if val := lit.Literal.Value(); val != nil {
			v.Set(reflect.ValueOf(val))
		}
		return nil
	case reflect.Bool:
		b, ok := lit.Literal.AsBool()
		if !ok {
			return mismatch(describe(t), lit.Literal.Describe())
		}
		v.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decodeInt(lit.Literal, v)
	case reflect.Uint8:
		return decodeByte(lit, v)
	case reflect.Uint, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return decodeUint(lit.Literal, v)
	case reflect.Float32, reflect.Float64:
		return decodeFloat(lit.Literal, v)
	case reflect.String:
		str, ok := lit.Literal.AsString()
		if !ok {
			return mismatch(describe(t), lit.Literal.Describe())
		}
		v.SetString(str)
		return nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return decodeBytes(lit, v)
		}
		return mismatch(describe(t), lit.Literal.Describe())
	case reflect.Pointer:
		if lit.Literal.IsNull() {
			return nil
		}
		p := reflect.New(t.Elem())
		if err := s.literal(lit, p.Elem()); err != nil {
			return err
		}
		v.Set(p)
		return nil
	case reflect.Array, reflect.Map:
		return mismatch(describe(t), lit.Literal.Describe())
	case reflect.Struct:
		info, err := structOf(t)
		if err != nil {
			return err
		}
		switch info.kind {
		case structNewtype:
			return s.literal(lit, v.Field(info.fields[0].index))
		case structUnit:
			if !lit.Literal.IsNull() {
				return mismatch(describe(t), lit.Literal.Describe())
			}
			return nil
		default:
			return mismatch(describe(t), lit.Literal.Describe())
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

// literalHook hands the literal to a LiteralUnmarshaler, or its string to a
// TextUnmarshaler. It reports whether a hook took the value.
func literalHook(lit document.AnnotatedLiteral, v reflect.Value) (bool, error) {
	t := v.Type()
	if t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface {
		return false, nil
	}
	if implements(t, literalUnmarshalerType) {
		u, _ := v.Addr().Interface().(LiteralUnmarshaler)
		return true, u.UnmarshalKDLLiteral(lit)
	}
	if implements(t, textUnmarshalerType) {
		str, ok := lit.Literal.AsString()
		if !ok {
			return false, nil
		}
		u, _ := v.Addr().Interface().(encoding.TextUnmarshaler)
		return true, u.UnmarshalText([]byte(str))
	}
	return false, nil
}

func decodeInt(lit document.Literal, v reflect.Value) error {
	i, ok := lit.AsInt()
	if !ok {
		return mismatch(describe(v.Type()), lit.Describe())
	}
	if v.OverflowInt(i) {
		return fmt.Errorf("%w: %d does not fit in %s", ErrOutOfRange, i, v.Type())
	}
	v.SetInt(i)
	return nil
}

func decodeUint(lit document.Literal, v reflect.Value) error {
	i, ok := lit.AsInt()
	if !ok {
		return mismatch(describe(v.Type()), lit.Describe())
	}
	if i < 0 || v.OverflowUint(uint64(i)) {
		return fmt.Errorf("%w: %d does not fit in %s", ErrOutOfRange, i, v.Type())
	}
	v.SetUint(uint64(i))
	return nil
}

func decodeByte(lit document.AnnotatedLiteral, v reflect.Value) error {
	if str, ok := lit.Literal.AsString(); ok && lit.AnnotationIs(_annotationByte) {
		if len(str) != 1 {
			return fmt.Errorf("%w: got %q", ErrByteAnnotation, str)
		}
		v.SetUint(uint64(str[0]))
		return nil
	}
	return decodeUint(lit.Literal, v)
}

func decodeFloat(lit document.Literal, v reflect.Value) error {
	if f, ok := lit.AsFloat(); ok {
		if v.Kind() == reflect.Float32 && !math.IsInf(f, 0) && v.OverflowFloat(f) {
			return fmt.Errorf("%w: %g does not fit in %s", ErrOutOfRange, f, v.Type())
		}
		v.SetFloat(f)
		return nil
	}
	i, ok := lit.AsInt()
	if !ok {
		return mismatch(describe(v.Type()), lit.Describe())
	}
	f := float64(i)
	exact := f < math.MaxInt64 && int64(f) == i
	if exact && v.Kind() == reflect.Float32 {
		exact = float64(float32(f)) == f
	}
	if !exact {
		return fmt.Errorf("%w: %d cannot be represented exactly as %s", ErrOutOfRange, i, v.Type())
	}
	v.SetFloat(f)
	return nil
}

func decodeChar(lit document.AnnotatedLiteral, v reflect.Value) error {
	if str, ok := lit.Literal.AsString(); ok && lit.AnnotationIs(_annotationChar) {
		if utf8.RuneCountInString(str) != 1 {
			return fmt.Errorf("%w: got %q", ErrCharAnnotation, str)
		}
		r, _ := utf8.DecodeRuneInString(str)
		v.SetInt(int64(r))
		return nil
	}
	i, ok := lit.Literal.AsInt()
	if !ok {
		return mismatch(describe(v.Type()), lit.Literal.Describe())
	}
	if i < 0 || i > utf8.MaxRune || !utf8.ValidRune(rune(i)) {
		return fmt.Errorf("%w: %d is not a Unicode scalar value", ErrOutOfRange, i)
	}
	v.SetInt(i)
	return nil
}

func decodeBytes(lit document.AnnotatedLiteral, v reflect.Value) error {
	str, ok := lit.Literal.AsString()
	if !ok {
		return mismatch(describe(v.Type()), lit.Literal.Describe())
	}
	if !lit.AnnotationIs(_annotationBase64) {
		v.SetBytes([]byte(str))
		return nil
	}
	b, err := base64.StdEncoding.DecodeString(str)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBase64, err)
	}
	v.SetBytes(b)
	return nil
}

// enum picks a tagged-union variant. A bare string names a unit variant; an
// annotation names a newtype variant whose value is the literal itself.
func (s *state) enum(lit document.AnnotatedLiteral, v reflect.Value) error {
	e, _ := v.Addr().Interface().(Enum)
	variants := e.Variants()

	if !lit.HasAnnotation() {
		name, ok := lit.Literal.AsString()
		if !ok {
			return mismatch(describe(v.Type()), lit.Literal.Describe())
		}
		vr, err := findVariant(variants, name)
		if err != nil {
			return err
		}
		if vr.Kind != VariantUnit {
			return mismatch(kindName(vr.Kind)+" variant "+name, "unit variant")
		}
		return setVariant(e, name, nil)
	}

	name := lit.Annotation
	vr, err := findVariant(variants, name)
	if err != nil {
		return err
	}
	if vr.Kind != VariantNewtype {
		return mismatch(kindName(vr.Kind)+" variant "+name, "newtype variant")
	}
	if vr.New == nil {
		return fmt.Errorf("%w: variant %s of %s has no constructor", ErrUnsupportedType, name, v.Type())
	}
	p := reflect.ValueOf(vr.New())
	if p.Kind() != reflect.Pointer || p.IsNil() {
		return fmt.Errorf("%w: variant %s constructor must return a non-nil pointer", ErrUnsupportedType, name)
	}
	if err := s.literal(document.Plain(lit.Literal), p.Elem()); err != nil {
		return fmt.Errorf("variant %s: %w", name, err)
	}
	return setVariant(e, name, p.Elem().Interface())
}

func findVariant(variants []Variant, name string) (Variant, error) {
	i := slices.IndexFunc(variants, func(vr Variant) bool { return vr.Name == name })
	if i < 0 {
		names := make([]string, len(variants))
		for j, vr := range variants {
			names[j] = vr.Name
		}
		return Variant{}, fmt.Errorf("%w %q, expected one of %s", ErrUnknownVariant, name, strings.Join(names, ", "))
	}
	return variants[i], nil
}

func setVariant(e Enum, name string, value any) error {
	if err := e.SetVariant(name, value); err != nil {
		return fmt.Errorf("variant %s: %w", name, err)
	}
	return nil
}

func kindName(k VariantKind) string {
	switch k {
	case VariantUnit:
		return "unit"
	case VariantNewtype:
		return "newtype"
	default:
		return "compound"
	}
}
