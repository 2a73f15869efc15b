package pageobject

import (
	"errors"
	"time"
)

// Context is a browsing scope selectors are resolved against: a page, a frame
// or an element. Composites never own the context they hold; closing it is the
// driver's business.
type Context interface {
	// QuerySelector returns the first match, or nil when nothing matches.
	QuerySelector(selector string) (Handle, error)

	// QuerySelectorAll returns every match in document order.
	QuerySelectorAll(selector string) ([]Handle, error)
}

// Handle is an opaque reference to one DOM node produced by a driver. A handle
// is also a Context, so nested queries can be scoped to the element.
type Handle interface {
	Context
}

// SelectorWaiter is implemented by scopes that can block until a selector
// appears in the DOM.
type SelectorWaiter interface {
	WaitForSelector(selector string, timeout time.Duration) (Handle, error)
}

// XPathQuerier is implemented by scopes that can evaluate XPath expressions.
type XPathQuerier interface {
	QueryXPath(expression string) ([]Handle, error)
}

var (
	// ErrNoContext is returned when a property is resolved on a composite
	// without a browsing context attached.
	ErrNoContext = errors.New("pageobject: no browsing context attached")

	// ErrUnsupported is returned when a scope lacks an optional capability.
	ErrUnsupported = errors.New("pageobject: operation not supported by this context")

	// ErrUnsupportedShape is returned by strict registries for tagged fields
	// whose type is not one of Element, Elements, Object[T] or Objects[T].
	ErrUnsupportedShape = errors.New("pageobject: unsupported property shape")

	// ErrResolutionPanic wraps a panic recovered while resolving a property.
	ErrResolutionPanic = errors.New("pageobject: panic during resolution")
)
