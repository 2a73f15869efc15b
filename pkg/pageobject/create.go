package pageobject

import (
	"fmt"
	"reflect"
	"time"
)

// compositePtr constrains P to *T where *T is a composite.
type compositePtr[T any] interface {
	*T
	Composite
}

// Create returns a root composite of type T over root, using the default
// dispatcher. Selector fields are bound but not resolved.
//
//	page := pageobject.Create[ListPage](playwright.Page(p))
//	items, err := page.Items.Get(ctx)
func Create[T any, P compositePtr[T]](root Context) *T {
	return CreateWith[T, P](defaultDispatcher, root)
}

// CreateWith is Create with an explicit dispatcher. It panics when the
// dispatcher's registry is strict and T declares an unsupported property.
func CreateWith[T any, P compositePtr[T]](d *Dispatcher, root Context) *T {
	t := typeOf[T]()
	if d.registry.strict {
		if err := d.registry.Register(t); err != nil {
			panic(err)
		}
	}

	obj := new(T)
	b := P(obj).object()
	b.root = root
	b.scope = root
	b.dispatcher = d
	d.registry.bind(reflect.ValueOf(obj))
	return obj
}

// QuerySelector wraps the first element of scope matching selector into a
// composite of type T, or returns nil when nothing matches.
func QuerySelector[T any, P compositePtr[T]](scope Context, selector string) (*T, error) {
	v, err := resolveNow(scope, Descriptor{selector: selector, target: typeOf[T](), cardinality: Single})
	if err != nil {
		return nil, err
	}
	obj, _ := v.(*T)
	return obj, nil
}

// QuerySelectorAll wraps every element of scope matching selector into a
// composite of type T. The result is empty, never nil, when nothing matches.
func QuerySelectorAll[T any, P compositePtr[T]](scope Context, selector string) ([]*T, error) {
	v, err := resolveNow(scope, Descriptor{selector: selector, target: typeOf[T](), cardinality: Many})
	if err != nil {
		return nil, err
	}
	objs, _ := v.([]*T)
	return objs, nil
}

// XPath wraps every element of scope matching the XPath expression into a
// composite of type T. Scopes that cannot evaluate XPath yield ErrUnsupported.
func XPath[T any, P compositePtr[T]](scope Context, expression string) ([]*T, error) {
	if isNil(scope) {
		return nil, ErrNoContext
	}
	xq, ok := scope.(XPathQuerier)
	if !ok {
		return nil, fmt.Errorf("xpath %q: %w", expression, ErrUnsupported)
	}
	hs, err := xq.QueryXPath(expression)
	if err != nil {
		return nil, err
	}
	if hs == nil {
		hs = []Handle{}
	}
	d := Descriptor{selector: expression, target: typeOf[T](), cardinality: Many}
	objs, _ := defaultDispatcher.composer.Wrap(hs, d, rootOf(scope)).([]*T)
	return objs, nil
}

// WaitForSelector blocks until an element matching selector appears in scope
// and wraps it into a composite of type T. Timeouts and other driver errors
// are returned unchanged.
func WaitForSelector[T any, P compositePtr[T]](scope Context, selector string, timeout time.Duration) (*T, error) {
	if isNil(scope) {
		return nil, ErrNoContext
	}
	w, ok := scope.(SelectorWaiter)
	if !ok {
		return nil, fmt.Errorf("wait for %q: %w", selector, ErrUnsupported)
	}
	h, err := w.WaitForSelector(selector, timeout)
	if err != nil {
		return nil, err
	}
	d := Descriptor{selector: selector, target: typeOf[T](), cardinality: Single}
	obj, _ := defaultDispatcher.composer.Wrap(h, d, rootOf(scope)).(*T)
	return obj, nil
}

// resolveNow resolves and wraps d synchronously with the default dispatcher.
func resolveNow(scope Context, d Descriptor) (any, error) {
	raw, err := defaultDispatcher.resolver.Resolve(scope, d)
	if err != nil {
		return nil, err
	}
	return defaultDispatcher.composer.Wrap(raw, d, rootOf(scope)), nil
}

func rootOf(scope Context) Composite {
	return &PageObject{base{root: scope, scope: scope, dispatcher: defaultDispatcher}}
}
