package decode

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndisidore/smithy/pkg/document"
)

type anEnum struct {
	Variant string
	Value   string
}

func (*anEnum) Variants() []Variant {
	return []Variant{
		{Name: "Variant1", Kind: VariantUnit},
		{Name: "Variant2", Kind: VariantNewtype, New: func() any { return new(string) }},
		{Name: "Variant3", Kind: VariantCompound},
	}
}

func (e *anEnum) SetVariant(name string, value any) error {
	e.Variant = name
	if s, ok := value.(string); ok {
		e.Value = s
	}
	return nil
}

type named struct {
	_    struct{} `kdl:",tuple"`
	Name string
}

type mass int

// as decodes lit into a fresh T and returns it boxed.
func as[T any](lit document.AnnotatedLiteral) (any, error) {
	var v T
	err := Literal(lit, &v)
	return v, err
}

func ptr[T any](v T) *T { return &v }

func TestLiteral(t *testing.T) {
	t.Parallel()

	plain := func(l document.Literal) document.AnnotatedLiteral { return document.Plain(l) }

	tests := []struct {
		name    string
		lit     document.AnnotatedLiteral
		into    func(document.AnnotatedLiteral) (any, error)
		want    any
		wantErr error
	}{
		{name: "int8 in range", lit: plain(document.Int(127)), into: as[int8], want: int8(127)},
		{name: "int8 overflow", lit: plain(document.Int(128)), into: as[int8], wantErr: ErrOutOfRange},
		{name: "uint16 negative", lit: plain(document.Int(-1)), into: as[uint16], wantErr: ErrOutOfRange},
		{name: "int from string", lit: plain(document.String("1")), into: as[int], wantErr: ErrTypeMismatch},
		{name: "int from float", lit: plain(document.Float(1)), into: as[int64], wantErr: ErrTypeMismatch},
		{name: "named int", lit: plain(document.Int(50)), into: as[mass], want: mass(50)},
		{name: "byte annotation", lit: document.Annotated("byte", document.String("A")), into: as[byte], want: byte(65)},
		{name: "byte annotation too long", lit: document.Annotated("byte", document.String("AB")), into: as[byte], wantErr: ErrByteAnnotation},
		{name: "byte from integer", lit: plain(document.Int(200)), into: as[byte], want: byte(200)},
		{name: "byte overflow", lit: plain(document.Int(256)), into: as[byte], wantErr: ErrOutOfRange},
		{name: "byte annotated string as string", lit: document.Annotated("byte", document.String("A")), into: as[string], want: "A"},
		{name: "char annotation", lit: document.Annotated("char", document.String("é")), into: as[Char], want: Char('é')},
		{name: "char annotation too long", lit: document.Annotated("char", document.String("ab")), into: as[Char], wantErr: ErrCharAnnotation},
		{name: "char from code point", lit: plain(document.Int(0x41)), into: as[Char], want: Char('A')},
		{name: "char surrogate", lit: plain(document.Int(0xD800)), into: as[Char], wantErr: ErrOutOfRange},
		{name: "char from plain string", lit: plain(document.String("x")), into: as[Char], wantErr: ErrTypeMismatch},
		{name: "base64 bytes", lit: document.Annotated("base64", document.String("aGk=")), into: as[[]byte], want: []byte("hi")},
		{name: "bad base64", lit: document.Annotated("base64", document.String("!!")), into: as[[]byte], wantErr: ErrBase64},
		{name: "raw bytes", lit: plain(document.String("hi")), into: as[[]byte], want: []byte("hi")},
		{name: "bytes from integer", lit: plain(document.Int(1)), into: as[[]byte], wantErr: ErrTypeMismatch},
		{name: "optional null", lit: plain(document.Null()), into: as[*int], want: (*int)(nil)},
		{name: "optional present", lit: plain(document.Int(3)), into: as[*int], want: ptr(3)},
		{name: "float", lit: plain(document.Float(1.5)), into: as[float64], want: 1.5},
		{name: "float from exact integer", lit: plain(document.Int(3)), into: as[float64], want: 3.0},
		{name: "float from inexact integer", lit: plain(document.Int(1<<62 + 1)), into: as[float64], wantErr: ErrOutOfRange},
		{name: "float32 overflow", lit: plain(document.Float(1e300)), into: as[float32], wantErr: ErrOutOfRange},
		{name: "bool", lit: plain(document.Bool(true)), into: as[bool], want: true},
		{name: "bool from string", lit: plain(document.String("true")), into: as[bool], wantErr: ErrTypeMismatch},
		{name: "unit from null", lit: plain(document.Null()), into: as[struct{}], want: struct{}{}},
		{name: "unit from integer", lit: plain(document.Int(1)), into: as[struct{}], wantErr: ErrTypeMismatch},
		{name: "any float", lit: plain(document.Float(2.5)), into: as[any], want: 2.5},
		{name: "any null", lit: plain(document.Null()), into: as[any], want: nil},
		{name: "any ignores annotation", lit: document.Annotated("byte", document.String("A")), into: as[any], want: "A"},
		{name: "sequence never", lit: plain(document.Int(1)), into: as[[]int], wantErr: ErrTypeMismatch},
		{name: "map never", lit: plain(document.String("a")), into: as[map[string]int], wantErr: ErrTypeMismatch},
		{name: "newtype tuple struct", lit: plain(document.String("Macy")), into: as[named], want: named{Name: "Macy"}},
		{name: "unit variant", lit: plain(document.String("Variant1")), into: as[anEnum], want: anEnum{Variant: "Variant1"}},
		{name: "newtype variant", lit: document.Annotated("Variant2", document.String("hello")), into: as[anEnum], want: anEnum{Variant: "Variant2", Value: "hello"}},
		{name: "unknown variant", lit: plain(document.String("Nope")), into: as[anEnum], wantErr: ErrUnknownVariant},
		{name: "unknown annotated variant", lit: document.Annotated("Nope", document.String("x")), into: as[anEnum], wantErr: ErrUnknownVariant},
		{name: "unit variant annotated", lit: document.Annotated("Variant1", document.String("x")), into: as[anEnum], wantErr: ErrTypeMismatch},
		{name: "newtype variant bare", lit: plain(document.String("Variant2")), into: as[anEnum], wantErr: ErrTypeMismatch},
		{name: "compound variant", lit: document.Annotated("Variant3", document.String("x")), into: as[anEnum], wantErr: ErrTypeMismatch},
		{name: "newtype variant wrong payload", lit: document.Annotated("Variant2", document.Int(1)), into: as[anEnum], wantErr: ErrTypeMismatch},
		{name: "variant from integer", lit: plain(document.Int(1)), into: as[anEnum], wantErr: ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.into(tt.lit)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLiteralMismatchError(t *testing.T) {
	t.Parallel()

	var b bool
	err := Literal(document.Plain(document.Int(4)), &b)

	var me *MismatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "a boolean", me.Expected)
	assert.Equal(t, "integer 4", me.Actual)
	assert.EqualError(t, err, "invalid type: integer 4, expected a boolean")
}

func TestLiteralInvalidTarget(t *testing.T) {
	t.Parallel()

	lit := document.Plain(document.Int(1))
	require.ErrorIs(t, Literal(lit, nil), ErrInvalidTarget)

	var i int
	require.ErrorIs(t, Literal(lit, i), ErrInvalidTarget)
	require.ErrorIs(t, Literal(lit, (*int)(nil)), ErrInvalidTarget)
}

func TestLiteralLeavesTargetOnFailure(t *testing.T) {
	t.Parallel()

	e := anEnum{Variant: "Variant1"}
	err := Literal(document.Annotated("Variant2", document.Int(5)), &e)
	require.Error(t, err)
	assert.Equal(t, anEnum{Variant: "Variant1"}, e)
}

type upper string

func (u *upper) UnmarshalKDLLiteral(lit document.AnnotatedLiteral) error {
	s, ok := lit.Literal.AsString()
	if !ok {
		return errors.New("upper wants a string")
	}
	*u = upper(lit.Annotation + ":" + s)
	return nil
}

func TestLiteralUnmarshaler(t *testing.T) {
	t.Parallel()

	var u upper
	require.NoError(t, Literal(document.Annotated("tag", document.String("x")), &u))
	assert.Equal(t, upper("tag:x"), u)

	require.Error(t, Literal(document.Plain(document.Int(1)), &u))
}

func TestMapMarshalJSON(t *testing.T) {
	t.Parallel()

	m := Map{
		{Key: "zeta", Value: int64(1)},
		{Key: "alpha", Value: Map{{Key: "b", Value: true}, {Key: "a", Value: nil}}},
		{Key: "list", Value: []any{"x", 2.5}},
	}
	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta":1,"alpha":{"b":true,"a":null},"list":["x",2.5]}`, string(out))
	assert.Equal(t, `{"zeta":1,"alpha":{"b":true,"a":null},"list":["x",2.5]}`, string(out))

	v, ok := m.Get("list")
	require.True(t, ok)
	assert.Equal(t, []any{"x", 2.5}, v)
	assert.Equal(t, []string{"zeta", "alpha", "list"}, m.Keys())
	_, ok = m.Get("missing")
	assert.False(t, ok)
}
