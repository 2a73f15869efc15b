package pageobject

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/entrhq/pageobjects/pkg/logging"
)

// selectorTag is the struct tag carrying a property's selector.
const selectorTag = "selector"

// Registry builds and caches the descriptors of composite types. Descriptors
// for a type are built once, on first use, and never change afterwards.
type Registry struct {
	entries sync.Map // reflect.Type -> *typeEntry
	strict  bool
	logger  *logging.Logger
}

type typeEntry struct {
	once        sync.Once
	props       []Property
	byName      map[string]int
	unsupported []string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithStrict makes Register and Create reject composite types declaring
// selector tags on fields of an unsupported shape. Non-strict registries
// ignore such fields and log a warning.
func WithStrict(strict bool) RegistryOption {
	return func(r *Registry) {
		r.strict = strict
	}
}

// WithRegistryLogger sets the logger used to report ignored fields.
func WithRegistryLogger(logger *logging.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.Nop()
	}
	return r
}

// Strict reports whether the registry rejects unsupported shapes.
func (r *Registry) Strict() bool {
	return r.strict
}

// Descriptors returns the selector properties of composite struct type t in
// field order. Calls for the same type return equal results.
func (r *Registry) Descriptors(t reflect.Type) []Property {
	e := r.entry(t)
	if len(e.props) == 0 {
		return nil
	}
	props := make([]Property, len(e.props))
	copy(props, e.props)
	return props
}

// Lookup returns the descriptor of the named property of t.
func (r *Registry) Lookup(t reflect.Type, name string) (Property, bool) {
	e := r.entry(t)
	i, ok := e.byName[name]
	if !ok {
		return Property{}, false
	}
	return e.props[i], true
}

// Register builds the descriptors of t ahead of first use. Strict registries
// return ErrUnsupportedShape when a tagged field has an unsupported shape.
func (r *Registry) Register(t reflect.Type) error {
	t = indirect(t)
	if !isCompositeStruct(t) {
		return fmt.Errorf("pageobject: %v is not a composite type", t)
	}
	e := r.entry(t)
	if r.strict && len(e.unsupported) > 0 {
		return fmt.Errorf("%w: %s fields %s", ErrUnsupportedShape, t, strings.Join(e.unsupported, ", "))
	}
	return nil
}

func (r *Registry) entry(t reflect.Type) *typeEntry {
	t = indirect(t)
	v, ok := r.entries.Load(t)
	if !ok {
		v, _ = r.entries.LoadOrStore(t, &typeEntry{})
	}
	e := v.(*typeEntry)
	e.once.Do(func() { r.build(t, e) })
	return e
}

func (r *Registry) build(t reflect.Type, e *typeEntry) {
	e.byName = make(map[string]int)
	if !isCompositeStruct(t) {
		return
	}

	for _, f := range reflect.VisibleFields(t) {
		selector, ok := f.Tag.Lookup(selectorTag)
		if !ok {
			continue
		}
		d, ok := describe(t, f, selector)
		if !ok {
			e.unsupported = append(e.unsupported, f.Name)
			r.logger.Warnf("%s.%s: selector %q ignored, unsupported property type %s", t, f.Name, selector, f.Type)
			continue
		}
		e.byName[f.Name] = len(e.props)
		e.props = append(e.props, Property{Name: f.Name, Descriptor: d, index: f.Index})
	}
	r.logger.Debugf("%s: %d selector properties registered", t, len(e.props))
}

// describe validates the shape of a tagged field.
func describe(owner reflect.Type, f reflect.StructField, selector string) (Descriptor, bool) {
	if !f.IsExported() || !reachable(owner, f.Index) {
		return Descriptor{}, false
	}
	if !reflect.PointerTo(f.Type).Implements(binderType) {
		return Descriptor{}, false
	}
	s, ok := reflect.Zero(f.Type).Interface().(shaper)
	if !ok {
		return Descriptor{}, false
	}
	cardinality, target := s.shape()
	if target != handleType && !isCompositeStruct(target) {
		return Descriptor{}, false
	}
	return Descriptor{selector: selector, target: target, cardinality: cardinality}, true
}

// reachable reports whether the field at index can be set on an allocated
// value of owner without following a pointer.
func reachable(owner reflect.Type, index []int) bool {
	t := owner
	for _, i := range index[:len(index)-1] {
		t = t.Field(i).Type
		if t.Kind() != reflect.Struct {
			return false
		}
	}
	return true
}

// bind attaches every selector field of the composite pointed to by v to the
// composite itself. No query is issued.
func (r *Registry) bind(v reflect.Value) {
	owner, ok := v.Interface().(Composite)
	if !ok {
		return
	}
	elem := v.Elem()
	for _, p := range r.entry(elem.Type()).props {
		field := elem.FieldByIndex(p.index)
		if !field.CanSet() {
			continue
		}
		field.Addr().Interface().(binder).bind(binding{owner: owner, name: p.Name})
	}
}

func indirect(t reflect.Type) reflect.Type {
	if t != nil && t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}
