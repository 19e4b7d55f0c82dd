package document

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which of the five literal forms a Literal holds.
type Kind int

// Literal kinds.
const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
)

// String returns the human name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Literal is an argument or property value without its annotation.
// The zero value is null.
type Literal struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	flag bool
}

// String returns a string literal.
func String(s string) Literal { return Literal{kind: KindString, str: s} }

// Int returns an integer literal.
func Int(i int64) Literal { return Literal{kind: KindInt, num: i} }

// Float returns a float literal.
func Float(f float64) Literal { return Literal{kind: KindFloat, flt: f} }

// Bool returns a boolean literal.
func Bool(b bool) Literal { return Literal{kind: KindBool, flag: b} }

// Null returns the null literal.
func Null() Literal { return Literal{} }

// Kind reports which form the literal holds.
func (l Literal) Kind() Kind { return l.kind }

// IsNull reports whether the literal is null.
func (l Literal) IsNull() bool { return l.kind == KindNull }

// AsString returns the string payload and whether the literal is a string.
func (l Literal) AsString() (string, bool) { return l.str, l.kind == KindString }

// AsInt returns the integer payload and whether the literal is an integer.
func (l Literal) AsInt() (int64, bool) { return l.num, l.kind == KindInt }

// AsFloat returns the float payload and whether the literal is a float.
func (l Literal) AsFloat() (float64, bool) { return l.flt, l.kind == KindFloat }

// AsBool returns the boolean payload and whether the literal is a boolean.
func (l Literal) AsBool() (bool, bool) { return l.flag, l.kind == KindBool }

// Value returns the payload as a plain Go value: string, int64, float64,
// bool or nil.
func (l Literal) Value() any {
	switch l.kind {
	case KindString:
		return l.str
	case KindInt:
		return l.num
	case KindFloat:
		return l.flt
	case KindBool:
		return l.flag
	default:
		return nil
	}
}

// Describe names the kind and, for short values, the value itself. It is
// meant for error messages.
func (l Literal) Describe() string {
	switch l.kind {
	case KindNull:
		return "null"
	case KindString:
		if len(l.str) > 32 {
			return fmt.Sprintf("string %q...", l.str[:32])
		}
		return fmt.Sprintf("string %q", l.str)
	default:
		return l.kind.String() + " " + l.String()
	}
}

// String renders the literal as KDL source.
func (l Literal) String() string {
	switch l.kind {
	case KindString:
		return quote(l.str)
	case KindInt:
		return strconv.FormatInt(l.num, 10)
	case KindFloat:
		return formatFloat(l.flt)
	case KindBool:
		return strconv.FormatBool(l.flag)
	default:
		return "null"
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "#inf"
	case math.IsInf(f, -1):
		return "#-inf"
	case math.IsNaN(f):
		return "#nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// AnnotatedLiteral is a literal plus the optional type annotation written in
// front of it, as in (base64)"aGk=". An empty Annotation means none was given.
type AnnotatedLiteral struct {
	Annotation string
	Literal    Literal
}

// Plain wraps a literal without an annotation.
func Plain(lit Literal) AnnotatedLiteral { return AnnotatedLiteral{Literal: lit} }

// Annotated wraps a literal with the given annotation.
func Annotated(annotation string, lit Literal) AnnotatedLiteral {
	return AnnotatedLiteral{Annotation: annotation, Literal: lit}
}

// HasAnnotation reports whether an annotation is present.
func (a AnnotatedLiteral) HasAnnotation() bool { return a.Annotation != "" }

// AnnotationIs reports whether the annotation is exactly s.
func (a AnnotatedLiteral) AnnotationIs(s string) bool {
	return a.Annotation != "" && a.Annotation == s
}

// String renders the annotated literal as KDL source.
func (a AnnotatedLiteral) String() string {
	if a.Annotation == "" {
		return a.Literal.String()
	}
	return "(" + identifier(a.Annotation) + ")" + a.Literal.String()
}
