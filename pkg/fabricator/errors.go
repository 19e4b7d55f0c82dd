package fabricator

import (
	"errors"
	"fmt"
)

// Sentinel errors for instantiation.
var (
	ErrNoAssembler = errors.New("no assembler registered for component")
	ErrAssembly    = errors.New("component assembly failed")
)

// ComponentError reports a component that failed to decode or assemble.
type ComponentError struct {
	Blueprint string
	Component string
	Err       error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("blueprint %q: assembler for %q gave an error: %v", e.Blueprint, e.Component, e.Err)
}

// Unwrap exposes ErrAssembly and the underlying cause.
func (e *ComponentError) Unwrap() []error { return []error{ErrAssembly, e.Err} }
