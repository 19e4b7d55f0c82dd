package decode

import (
	"errors"
	"fmt"
)

// Sentinel errors for decode failures.
var (
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrOutOfRange         = errors.New("value out of range")
	ErrByteAnnotation     = errors.New("a string annotated with (byte) must be 1 byte long to be interpreted as a byte")
	ErrCharAnnotation     = errors.New("a string annotated with (char) must be 1 char long to be interpreted as a char")
	ErrBase64             = errors.New("invalid base64")
	ErrAmbiguousNode      = errors.New("node has arguments together with properties or children")
	ErrUnknownVariant     = errors.New("unknown variant")
	ErrMissingField       = errors.New("missing field")
	ErrDuplicateField     = errors.New("duplicate field")
	ErrUnknownField       = errors.New("unknown field")
	ErrLength             = errors.New("wrong number of elements")
	ErrDepthExceeded      = errors.New("maximum nesting depth exceeded")
	ErrUnsupportedType    = errors.New("unsupported target type")
	ErrInvalidTarget      = errors.New("decode target must be a non-nil pointer")
	ErrProtocol           = errors.New("decode protocol violation")
	ErrArgumentOutOfBound = errors.New("argument index out of range")
)

// MismatchError reports that the requested shape cannot be produced from
// what the document holds.
type MismatchError struct {
	// Expected describes the requested shape.
	Expected string
	// Actual describes the literal or node that was found.
	Actual string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("invalid type: %s, expected %s", e.Actual, e.Expected)
}

// Unwrap lets errors.Is match ErrTypeMismatch.
func (*MismatchError) Unwrap() error { return ErrTypeMismatch }

func mismatch(expected, actual string) error {
	return &MismatchError{Expected: expected, Actual: actual}
}
