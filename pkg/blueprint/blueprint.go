// Package blueprint keeps a library of named blueprints and resolves them
// through single-parent inheritance.
//
// A blueprint document is a list of top-level nodes, one per blueprint:
//
//	cat {
//	    physic-body mass=50
//	}
//	housecat inherit="cat" merge="clobber" {
//	    name "Macy"
//	}
//
// The children of a blueprint node are its components. Loading a blueprint
// whose name is already in the library folds it into the existing entry
// according to its merge mode.
package blueprint

import (
	"bytes"
	"fmt"

	"github.com/opencontainers/go-digest"

	"github.com/ndisidore/smithy/pkg/document"
)

// MergeMode controls what happens when a blueprint is inserted under a name
// that already exists.
type MergeMode int

const (
	// MergeModeMerge replaces same-named components and appends new ones.
	MergeModeMerge MergeMode = iota
	// MergeModeClobber replaces the existing blueprint wholesale.
	MergeModeClobber
)

func (m MergeMode) String() string {
	switch m {
	case MergeModeMerge:
		return "merge"
	case MergeModeClobber:
		return "clobber"
	default:
		return fmt.Sprintf("MergeMode(%d)", int(m))
	}
}

// ParseMergeMode converts a merge property value. The empty string selects
// the default, MergeModeMerge.
func ParseMergeMode(s string) (MergeMode, error) {
	switch s {
	case "", "merge":
		return MergeModeMerge, nil
	case "clobber":
		return MergeModeClobber, nil
	default:
		return 0, fmt.Errorf("%w: %q (expected merge or clobber)", ErrInvalidMergeMode, s)
	}
}

// RawBlueprint is a blueprint as written, before inheritance is applied.
type RawBlueprint struct {
	Name       string
	Inherit    string
	Merge      MergeMode
	Components []*document.Node
}

// Blueprint is a resolved blueprint with its inheritance chain folded in.
type Blueprint struct {
	Name       string
	Components []*document.Node
	// Origins[i] names the blueprint that contributed Components[i].
	Origins []string
}

// Digest returns the SHA-256 digest of the components in canonical KDL form.
// Blueprints that resolve to the same components share a digest.
func (b Blueprint) Digest() (digest.Digest, error) {
	var buf bytes.Buffer
	if err := document.Format(&buf, b.Components); err != nil {
		return "", fmt.Errorf("formatting blueprint %q: %w", b.Name, err)
	}
	return digest.FromBytes(buf.Bytes()), nil
}
