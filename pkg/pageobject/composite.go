package pageobject

// Composite is implemented by every page object and element object. User types
// become composites by embedding PageObject or ElementObject.
type Composite interface {
	object() *base
}

// base is the state shared by all composites. It is assigned once, when the
// composite is created, and never reassigned.
type base struct {
	root       Context
	scope      Context
	element    Handle
	dispatcher *Dispatcher
}

func (b *base) object() *base { return b }

// PageObject is the base for composites rooted at a page.
//
//	type SearchPage struct {
//	    pageobject.PageObject
//	    Results pageobject.Objects[Result] `selector:".result"`
//	}
type PageObject struct {
	base
}

// Page returns the browsing context the page object was created from.
func (p *PageObject) Page() Context {
	return p.root
}

// ElementObject is the base for composites scoped to a single element.
type ElementObject struct {
	base
}

// Page returns the root browsing context shared with the composite that
// produced this element object.
func (e *ElementObject) Page() Context {
	return e.root
}

// Element returns the handle the element object is scoped to. It is nil for
// element objects created directly from a context with Create.
func (e *ElementObject) Element() Handle {
	return e.element
}
