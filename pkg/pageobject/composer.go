package pageobject

import (
	"reflect"
)

// Composer turns raw query results into composite instances. Wrapping is
// lazy: a new instance has its selector fields bound but nothing resolved.
type Composer struct {
	registry *Registry
	metrics  *Metrics
}

// NewComposer creates a composer binding new instances through registry.
func NewComposer(registry *Registry, metrics *Metrics) *Composer {
	return &Composer{registry: registry, metrics: metrics}
}

// Wrap converts the result of resolving d into its declared shape. Raw-handle
// descriptors pass through untouched. For composite descriptors every non-nil
// handle becomes a new instance of the target type whose query scope is the
// handle itself and whose root is parent's root.
func (c *Composer) Wrap(raw any, d Descriptor, parent Composite) any {
	if !d.Composite() {
		return raw
	}
	var root Context
	var dispatcher *Dispatcher
	if parent != nil {
		b := parent.object()
		root, dispatcher = b.root, b.dispatcher
	}

	switch d.cardinality {
	case Single:
		h, _ := raw.(Handle)
		if isNil(h) {
			return nil
		}
		c.metrics.observeWrapped(1)
		return c.build(d.target, root, h, dispatcher).Interface()
	default:
		hs, _ := raw.([]Handle)
		out := reflect.MakeSlice(reflect.SliceOf(reflect.PointerTo(d.target)), len(hs), len(hs))
		wrapped := 0
		for i, h := range hs {
			if isNil(h) {
				continue
			}
			out.Index(i).Set(c.build(d.target, root, h, dispatcher))
			wrapped++
		}
		c.metrics.observeWrapped(wrapped)
		return out.Interface()
	}
}

// build allocates a composite of type t scoped to h.
func (c *Composer) build(t reflect.Type, root Context, h Handle, dispatcher *Dispatcher) reflect.Value {
	v := reflect.New(t)
	b := v.Interface().(Composite).object()
	b.root = root
	b.scope = h
	b.element = h
	b.dispatcher = dispatcher
	c.registry.bind(v)
	return v
}
