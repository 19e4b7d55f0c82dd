package blueprint

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ndisidore/smithy/pkg/document"
	"github.com/ndisidore/smithy/pkg/slogctx"
)

const (
	_propInherit = "inherit"
	_propMerge   = "merge"

	// _loadConcurrency caps how many files LoadFiles parses at once.
	_loadConcurrency = 8
)

// Load parses a whole blueprint document and inserts its blueprints in
// document order. filename is used only in error messages. Nothing is
// inserted if any blueprint in the document is malformed.
func (l *Library) Load(r io.Reader, filename string) error {
	nodes, err := document.Parse(r, filename)
	if err != nil {
		return err
	}
	raws, err := FromNodes(nodes, filename)
	if err != nil {
		return err
	}
	for _, raw := range raws {
		l.Insert(raw)
	}
	return nil
}

// LoadString is Load over an in-memory document.
func (l *Library) LoadString(src, filename string) error {
	return l.Load(strings.NewReader(src), filename)
}

// LoadFile loads the blueprint document at path.
func (l *Library) LoadFile(path string) error {
	raws, err := parseFile(path)
	if err != nil {
		return err
	}
	for _, raw := range raws {
		l.Insert(raw)
	}
	return nil
}

// LoadFiles parses the files concurrently, then inserts their blueprints in
// the order of paths, so the result matches loading them one by one. On
// error nothing is inserted.
func (l *Library) LoadFiles(ctx context.Context, paths []string) error {
	results := make([][]RawBlueprint, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(_loadConcurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			raws, err := parseFile(path)
			if err != nil {
				return err
			}
			results[i] = raws
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log := slogctx.FromContext(ctx)
	for i, raws := range results {
		for _, raw := range raws {
			l.Insert(raw)
		}
		log.DebugContext(ctx, "loaded blueprint file", "file", paths[i], "blueprints", len(raws))
	}
	return nil
}

func parseFile(path string) ([]RawBlueprint, error) {
	nodes, err := document.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return FromNodes(nodes, path)
}

// FromNodes reads each top-level node as a raw blueprint.
func FromNodes(nodes []*document.Node, filename string) ([]RawBlueprint, error) {
	raws := make([]RawBlueprint, 0, len(nodes))
	for _, n := range nodes {
		raw, err := fromNode(n)
		if err != nil {
			return nil, fmt.Errorf("%s: blueprint %q: %w", filename, n.Name, err)
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

func fromNode(n *document.Node) (RawBlueprint, error) {
	if len(n.Arguments) > 0 {
		return RawBlueprint{}, fmt.Errorf("%w: got %d", ErrUnexpectedArgument, len(n.Arguments))
	}

	raw := RawBlueprint{Name: n.Name, Components: n.Children}
	for _, k := range n.Properties.Keys() {
		val, ok := n.Properties[k].Literal.AsString()
		switch k {
		case _propInherit, _propMerge:
			if !ok {
				return RawBlueprint{}, fmt.Errorf("%w: %s must be a string, got %s",
					ErrTypeMismatch, k, n.Properties[k].Literal.Describe())
			}
		default:
			return RawBlueprint{}, fmt.Errorf("%w: %q (expected inherit or merge)", ErrUnknownProp, k)
		}

		if k == _propInherit {
			raw.Inherit = val
			continue
		}
		mode, err := ParseMergeMode(val)
		if err != nil {
			return RawBlueprint{}, err
		}
		raw.Merge = mode
	}
	return raw, nil
}
