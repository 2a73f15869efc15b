// Package pageobject layers typed page objects over a browser-automation
// driver.
//
// A page object is a struct embedding PageObject (or ElementObject for objects
// scoped to one element) whose fields declare selectors with a struct tag. The
// field type declares what the selector resolves to:
//
//	type ListPage struct {
//	    pageobject.PageObject
//
//	    Header pageobject.Element             `selector:"#header"`
//	    Links  pageobject.Elements            `selector:"a[href]"`
//	    First  pageobject.Object[ItemObject]  `selector:".item"`
//	    Items  pageobject.Objects[ItemObject] `selector:".item"`
//	}
//
//	type ItemObject struct {
//	    pageobject.ElementObject
//
//	    Title pageobject.Element `selector:".title"`
//	}
//
// # Resolution
//
// Nothing is queried when a page object is created. Each access to a
// property goes through the Dispatcher:
//
//  1. The Registry returns the property's descriptor, built once per type.
//  2. Async returns a pending Future immediately.
//  3. On its own goroutine the Resolver queries the object's scope: a page
//     for root objects, the element itself for wrapped objects.
//  4. The Composer wraps handles into new element objects, which share the
//     root context of the object they came from.
//  5. The Future is fulfilled exactly once with the value or the error.
//
// Results are never cached: every access queries the current DOM again.
// Single properties resolve to nil when nothing matches; Many properties
// resolve to an empty slice, never nil.
//
// # Unsupported shapes
//
// A tagged field of any other type (bool, string, Object[string], ...) has no
// descriptor. By default it is ignored with a warning and Invoke returns a nil
// future for it. Registries created with WithStrict(true) reject such types in
// Register and Create instead.
//
// # Drivers
//
// The package only depends on the Context and Handle interfaces. Adapters for
// playwright-go and go-rod live in pkg/driver. Composites never close the
// contexts they hold; the driver session owns them.
package pageobject
