package pageobject

import (
	"context"
	"reflect"
)

// binding ties a property field to the composite that declares it.
type binding struct {
	owner Composite
	name  string
}

// shaper is implemented by the four property types recognized by the registry.
type shaper interface {
	shape() (Cardinality, reflect.Type)
}

type binder interface {
	bind(b binding)
}

var binderType = reflect.TypeOf((*binder)(nil)).Elem()

// Element is a property resolving to the first element matching its selector,
// or nil when nothing matches.
type Element struct{ b binding }

func (Element) shape() (Cardinality, reflect.Type) { return Single, handleType }
func (p *Element) bind(b binding)                  { p.b = b }

// Async starts resolving the property and returns without blocking.
func (p Element) Async() (*Future[Handle], error) { return invoke[Handle](p.b) }

// Get resolves the property and waits for the result.
func (p Element) Get(ctx context.Context) (Handle, error) { return await(ctx, p.Async) }

// Elements is a property resolving to every element matching its selector.
// It never resolves to nil.
type Elements struct{ b binding }

func (Elements) shape() (Cardinality, reflect.Type) { return Many, handleType }
func (p *Elements) bind(b binding)                  { p.b = b }

// Async starts resolving the property and returns without blocking.
func (p Elements) Async() (*Future[[]Handle], error) { return invoke[[]Handle](p.b) }

// Get resolves the property and waits for the result.
func (p Elements) Get(ctx context.Context) ([]Handle, error) { return await(ctx, p.Async) }

// Object is a property resolving to a composite of type T scoped to the first
// matching element, or nil when nothing matches. T must embed ElementObject
// or PageObject.
type Object[T any] struct{ b binding }

func (Object[T]) shape() (Cardinality, reflect.Type) { return Single, typeOf[T]() }
func (p *Object[T]) bind(b binding)                  { p.b = b }

// Async starts resolving the property and returns without blocking.
func (p Object[T]) Async() (*Future[*T], error) { return invoke[*T](p.b) }

// Get resolves the property and waits for the result.
func (p Object[T]) Get(ctx context.Context) (*T, error) { return await(ctx, p.Async) }

// Objects is a property resolving to one composite of type T per matching
// element, in document order.
type Objects[T any] struct{ b binding }

func (Objects[T]) shape() (Cardinality, reflect.Type) { return Many, typeOf[T]() }
func (p *Objects[T]) bind(b binding)                  { p.b = b }

// Async starts resolving the property and returns without blocking.
func (p Objects[T]) Async() (*Future[[]*T], error) { return invoke[[]*T](p.b) }

// Get resolves the property and waits for the result.
func (p Objects[T]) Get(ctx context.Context) ([]*T, error) { return await(ctx, p.Async) }

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func invoke[T any](b binding) (*Future[T], error) {
	if b.owner == nil {
		return nil, ErrNoContext
	}
	return dispatch[T](dispatcherFor(b.owner), b.owner, b.name)
}

func await[T any](ctx context.Context, async func() (*Future[T], error)) (T, error) {
	f, err := async()
	if err != nil || f == nil {
		var zero T
		return zero, err
	}
	return f.Await(ctx)
}
