package pageobject

import (
	"fmt"
	"reflect"
)

// Cardinality tells whether a descriptor resolves to at most one result or to
// any number of results.
type Cardinality int

const (
	// Single resolves to one result or nil.
	Single Cardinality = iota
	// Many resolves to a possibly empty slice, never nil.
	Many
)

func (c Cardinality) String() string {
	switch c {
	case Single:
		return "single"
	case Many:
		return "many"
	default:
		return fmt.Sprintf("cardinality(%d)", int(c))
	}
}

// Descriptor is the immutable selector metadata of one property.
type Descriptor struct {
	selector    string
	target      reflect.Type
	cardinality Cardinality
}

// NewDescriptor builds a raw-handle descriptor for ad-hoc resolution outside a
// declared composite type.
func NewDescriptor(selector string, cardinality Cardinality) Descriptor {
	return Descriptor{selector: selector, target: handleType, cardinality: cardinality}
}

// Selector returns the selector issued against the browsing context.
func (d Descriptor) Selector() string { return d.selector }

// Target returns the element type of the result: the Handle interface type for
// raw handles, or the composite struct type.
func (d Descriptor) Target() reflect.Type { return d.target }

// Cardinality returns whether the descriptor yields one result or many.
func (d Descriptor) Cardinality() Cardinality { return d.cardinality }

// Composite reports whether results are wrapped into composite instances.
func (d Descriptor) Composite() bool { return d.target != handleType }

func (d Descriptor) String() string {
	return fmt.Sprintf("%s %q -> %s", d.cardinality, d.selector, d.target)
}

// Property pairs a struct field with its descriptor.
type Property struct {
	Name       string
	Descriptor Descriptor

	index []int
}

var (
	handleType    = reflect.TypeOf((*Handle)(nil)).Elem()
	compositeType = reflect.TypeOf((*Composite)(nil)).Elem()
)

// isCompositeStruct reports whether *t is a composite and t a struct.
func isCompositeStruct(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Struct && reflect.PointerTo(t).Implements(compositeType)
}
