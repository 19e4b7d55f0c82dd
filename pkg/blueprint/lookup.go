package blueprint

import (
	"slices"

	"github.com/ndisidore/smithy/pkg/document"
)

// _maxInheritDepth bounds inheritance chains so a hostile library cannot
// exhaust the stack.
const _maxInheritDepth = 64

// Lookup resolves the named blueprint, folding in its ancestors. A child's
// components overlay its parent's by name whatever merge mode the child was
// inserted with. The result is freshly cloned and shares nothing with the
// library.
func (l *Library) Lookup(name string) (Blueprint, error) {
	comps, origins, err := l.resolve(name, nil)
	if err != nil {
		return Blueprint{}, err
	}
	return Blueprint{Name: name, Components: comps, Origins: origins}, nil
}

// resolve walks up the inheritance chain. path holds the names of the
// blueprints that led here.
func (l *Library) resolve(name string, path []string) ([]*document.Node, []string, error) {
	raw, ok := l.prints[name]
	if !ok {
		if len(path) == 0 {
			return nil, nil, &LookupError{Kind: ErrNotFound, Name: name}
		}
		return nil, nil, &LookupError{Kind: ErrInheriteeNotFound, Path: slices.Clone(path), Name: name}
	}

	own := document.CloneAll(raw.Components)
	if raw.Inherit == "" {
		origins := make([]string, len(own))
		for i := range origins {
			origins[i] = name
		}
		if own == nil {
			own = []*document.Node{}
		}
		return own, origins, nil
	}

	path = append(path, name)
	if i := slices.Index(path, raw.Inherit); i >= 0 {
		cycle := slices.Concat(path[i:], []string{raw.Inherit})
		return nil, nil, &LookupError{Kind: ErrInheritanceLoop, Path: cycle, Name: raw.Inherit}
	}
	if len(path) >= _maxInheritDepth {
		return nil, nil, &LookupError{Kind: ErrInheritanceDepth, Path: slices.Clone(path), Name: raw.Inherit}
	}

	comps, origins, err := l.resolve(raw.Inherit, path)
	if err != nil {
		return nil, nil, err
	}
	comps = mergeComponents(comps, own, func(idx int) {
		if idx == len(origins) {
			origins = append(origins, name)
			return
		}
		origins[idx] = name
	})
	return comps, origins, nil
}
