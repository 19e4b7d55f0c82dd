// Package fabricator builds component sets from blueprints. Component names
// are registered against Go types; instantiating a blueprint decodes each of
// its components into the registered type and hands it to a Builder.
package fabricator

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/ndisidore/smithy/pkg/blueprint"
	"github.com/ndisidore/smithy/pkg/decode"
	"github.com/ndisidore/smithy/pkg/document"
	"github.com/ndisidore/smithy/pkg/slogctx"
)

// DecodeFunc decodes a component node into a value of the registered type.
type DecodeFunc func(n *document.Node, dec decode.Decoder) (any, error)

// Assembler applies a component node to a Builder with no restriction on
// what it inserts.
type Assembler interface {
	Assemble(ctx context.Context, b Builder, n *document.Node) error
}

// AssemblerFunc adapts a function to Assembler.
type AssemblerFunc func(ctx context.Context, b Builder, n *document.Node) error

// Assemble calls fn.
func (fn AssemblerFunc) Assemble(ctx context.Context, b Builder, n *document.Node) error {
	return fn(ctx, b, n)
}

// Fabricator pairs a blueprint library with a component registry.
type Fabricator struct {
	// Decoder is used by every registered DecodeFunc.
	Decoder decode.Decoder

	lib        *blueprint.Library
	assemblers map[string]Assembler
	types      map[reflect.Type]string
}

// New returns a Fabricator with an empty library.
func New() *Fabricator { return NewWithLibrary(blueprint.NewLibrary()) }

// NewWithLibrary returns a Fabricator over an existing library.
func NewWithLibrary(lib *blueprint.Library) *Fabricator {
	return &Fabricator{
		lib:        lib,
		assemblers: make(map[string]Assembler),
		types:      make(map[reflect.Type]string),
	}
}

// RegisterFunc registers fn as the decoder for components named name,
// producing values stored under typ. Registering a name or a type twice is a
// programming error and panics.
func (f *Fabricator) RegisterFunc(name string, typ reflect.Type, fn DecodeFunc) {
	if prev, dup := f.types[typ]; dup {
		panic(fmt.Sprintf("fabricator: type %s already registered as %q", typ, prev))
	}
	f.RegisterAssembler(name, typedAssembler{f: f, typ: typ, fn: fn})
	f.types[typ] = name
}

// Register registers T for components named name, decoding with the
// Fabricator's Decoder.
func Register[T any](f *Fabricator, name string) {
	f.RegisterFunc(name, reflect.TypeFor[T](), func(n *document.Node, dec decode.Decoder) (any, error) {
		var v T
		if err := dec.Node(n, &v); err != nil {
			return nil, err
		}
		return v, nil
	})
}

// RegisterAssembler registers a free-form assembler for components named
// name. It panics if name is taken.
func (f *Fabricator) RegisterAssembler(name string, a Assembler) {
	if _, dup := f.assemblers[name]; dup {
		panic(fmt.Sprintf("fabricator: already registered something under the name %q", name))
	}
	f.assemblers[name] = a
}

// Registered returns the registered component names, sorted.
func (f *Fabricator) Registered() []string {
	return slices.Sorted(maps.Keys(f.assemblers))
}

// Library returns the underlying blueprint library.
func (f *Fabricator) Library() *blueprint.Library { return f.lib }

// Load parses src as a blueprint document into the library. filename only
// attributes errors.
func (f *Fabricator) Load(src, filename string) error {
	return f.lib.LoadString(src, filename)
}

// LoadFile loads the blueprint document at path into the library.
func (f *Fabricator) LoadFile(path string) error {
	return f.lib.LoadFile(path)
}

// Instantiate is InstantiateContext with a background context.
func (f *Fabricator) Instantiate(name string, b Builder) (Builder, error) {
	return f.InstantiateContext(context.Background(), name, b)
}

// InstantiateContext resolves the named blueprint and assembles each of its
// components into b in order. b is returned even on failure; components
// inserted before the failing one stay in it. Components are only checked
// against the registry here, so unregistered names in blueprints that are
// never instantiated go unnoticed.
func (f *Fabricator) InstantiateContext(ctx context.Context, name string, b Builder) (Builder, error) {
	bp, err := f.lib.Lookup(name)
	if err != nil {
		return b, fmt.Errorf("looking up blueprint: %w", err)
	}

	log := slogctx.FromContext(ctx).With("blueprint", name)
	for _, n := range bp.Components {
		a, ok := f.assemblers[n.Name]
		if !ok {
			return b, fmt.Errorf("blueprint %q: %w: %q", name, ErrNoAssembler, n.Name)
		}
		if err := a.Assemble(ctx, b, n); err != nil {
			return b, &ComponentError{Blueprint: name, Component: n.Name, Err: err}
		}
		log.DebugContext(ctx, "assembled component", "component", n.Name)
	}
	return b, nil
}

type typedAssembler struct {
	f   *Fabricator
	typ reflect.Type
	fn  DecodeFunc
}

func (a typedAssembler) Assemble(_ context.Context, b Builder, n *document.Node) error {
	v, err := a.fn(n, a.f.Decoder)
	if err != nil {
		return err
	}
	b.InsertComponent(a.typ, v)
	return nil
}
