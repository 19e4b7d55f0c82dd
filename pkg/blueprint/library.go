package blueprint

import (
	"maps"
	"slices"

	"github.com/ndisidore/smithy/pkg/document"
)

// Library maps blueprint names to raw blueprints. It holds at most one entry
// per name. A Library is not safe for concurrent mutation; load it fully
// before sharing it between readers.
type Library struct {
	prints map[string]*RawBlueprint
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{prints: make(map[string]*RawBlueprint)}
}

// Insert adds raw to the library. When a blueprint with the same name is
// already present, raw.Merge decides the outcome: clobber replaces the entry,
// merge replaces same-named components in place and appends the others. A
// merging blueprint that names a parent also replaces the entry's parent.
func (l *Library) Insert(raw RawBlueprint) {
	raw.Components = document.CloneAll(raw.Components)

	existing, ok := l.prints[raw.Name]
	if !ok || raw.Merge == MergeModeClobber {
		l.prints[raw.Name] = &raw
		return
	}

	existing.Components = mergeComponents(existing.Components, raw.Components, nil)
	if raw.Inherit != "" {
		existing.Inherit = raw.Inherit
	}
}

// Get returns a copy of the raw blueprint stored under name.
func (l *Library) Get(name string) (RawBlueprint, bool) {
	raw, ok := l.prints[name]
	if !ok {
		return RawBlueprint{}, false
	}
	cp := *raw
	cp.Components = document.CloneAll(raw.Components)
	return cp, true
}

// Names returns the blueprint names in sorted order.
func (l *Library) Names() []string {
	return slices.Sorted(maps.Keys(l.prints))
}

// Len returns the number of blueprints.
func (l *Library) Len() int { return len(l.prints) }

// mergeComponents overlays top onto base by component name. A component of
// top replaces the first same-named component of base in place; one with no
// match is appended. Components of base that top does not name keep their
// relative order. placed, when set, is told the index each top component
// landed at. base is not modified.
func mergeComponents(base, top []*document.Node, placed func(idx int)) []*document.Node {
	out := make([]*document.Node, len(base), len(base)+len(top))
	copy(out, base)
	for _, c := range top {
		idx := slices.IndexFunc(out, func(n *document.Node) bool { return n.Name == c.Name })
		if idx < 0 {
			idx = len(out)
			out = append(out, c)
		} else {
			out[idx] = c
		}
		if placed != nil {
			placed(idx)
		}
	}
	return out
}
