package fabricator

import (
	"reflect"
	"slices"
)

// Builder receives decoded components. InsertComponent stores v under typ
// and returns the value it displaced, if any.
type Builder interface {
	InsertComponent(typ reflect.Type, v any) (prev any, replaced bool)
}

// Components is an in-memory Builder that keeps one value per type in
// insertion order.
type Components struct {
	order  []reflect.Type
	values map[reflect.Type]any
}

// NewComponents returns an empty component set.
func NewComponents() *Components {
	return &Components{values: make(map[reflect.Type]any)}
}

// InsertComponent implements Builder. Replacing a value keeps the type's
// original position.
func (c *Components) InsertComponent(typ reflect.Type, v any) (any, bool) {
	prev, ok := c.values[typ]
	if !ok {
		c.order = append(c.order, typ)
	}
	c.values[typ] = v
	return prev, ok
}

// Get returns the component stored under typ.
func (c *Components) Get(typ reflect.Type) (any, bool) {
	v, ok := c.values[typ]
	return v, ok
}

// Types returns the stored types in insertion order.
func (c *Components) Types() []reflect.Type { return slices.Clone(c.order) }

// Len returns the number of stored components.
func (c *Components) Len() int { return len(c.order) }

// Component returns the component of type T from c.
func Component[T any](c *Components) (T, bool) {
	v, ok := c.values[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
