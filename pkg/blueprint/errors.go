package blueprint

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/containerd/errdefs"
)

// Sentinel errors for loading and lookup.
var (
	ErrNotFound           = errors.New("blueprint not found")
	ErrInheriteeNotFound  = errors.New("inherited blueprint not found")
	ErrInheritanceLoop    = errors.New("inheritance loop")
	ErrInheritanceDepth   = errors.New("inheritance chain too deep")
	ErrInvalidMergeMode   = errors.New("invalid merge mode")
	ErrUnknownProp        = errors.New("unknown property")
	ErrUnexpectedArgument = errors.New("blueprint nodes take no arguments")
	ErrTypeMismatch       = errors.New("property type mismatch")
)

// LookupError reports a failed Lookup. Path holds the blueprint names walked
// before the failure; for a loop it holds the cycle, closed by its first
// member repeated.
type LookupError struct {
	Kind error
	Path []string
	Name string
}

func (e *LookupError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrNotFound):
		return fmt.Sprintf("blueprint %q not found", e.Name)
	case errors.Is(e.Kind, ErrInheriteeNotFound):
		return fmt.Sprintf("blueprint %q inherits from %q, which was not found", e.Path[len(e.Path)-1], e.Name)
	case errors.Is(e.Kind, ErrInheritanceLoop):
		return fmt.Sprintf("%s: %s", ErrInheritanceLoop, strings.Join(e.Path, " -> "))
	default:
		return fmt.Sprintf("%s: %s", e.Kind, strings.Join(slices.Concat(e.Path, []string{e.Name}), " -> "))
	}
}

// Unwrap exposes Kind, and errdefs.ErrNotFound for the two not-found kinds.
func (e *LookupError) Unwrap() []error {
	if errors.Is(e.Kind, ErrNotFound) || errors.Is(e.Kind, ErrInheriteeNotFound) {
		return []error{e.Kind, errdefs.ErrNotFound}
	}
	return []error{e.Kind}
}
