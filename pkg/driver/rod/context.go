// Package rod adapts go-rod pages and elements to the pageobject.Context
// interface. Element-scoped waiting is not offered; wait on the page instead.
package rod

import (
	"time"

	"github.com/go-rod/rod"

	"github.com/entrhq/pageobjects/pkg/pageobject"
)

// PageContext is a pageobject.Context over a rod page.
type PageContext struct {
	page *rod.Page
}

// Page adapts p.
func Page(p *rod.Page) *PageContext {
	return &PageContext{page: p}
}

// Unwrap returns the underlying rod page.
func (c *PageContext) Unwrap() *rod.Page {
	return c.page
}

// QuerySelector returns the first match without waiting for one to appear.
func (c *PageContext) QuerySelector(selector string) (pageobject.Handle, error) {
	found, el, err := c.page.Has(selector)
	if err != nil || !found {
		return nil, err
	}
	return wrap(el), nil
}

func (c *PageContext) QuerySelectorAll(selector string) ([]pageobject.Handle, error) {
	els, err := c.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapAll(els), nil
}

// WaitForSelector polls until selector matches or timeout elapses. A zero
// timeout waits as long as the page's context allows.
func (c *PageContext) WaitForSelector(selector string, timeout time.Duration) (pageobject.Handle, error) {
	if timeout <= 0 {
		el, err := c.page.Element(selector)
		if err != nil {
			return nil, err
		}
		return wrap(el), nil
	}
	el, err := c.page.Timeout(timeout).Element(selector)
	if err != nil {
		return nil, err
	}
	return wrap(el.CancelTimeout()), nil
}

func (c *PageContext) QueryXPath(expression string) ([]pageobject.Handle, error) {
	els, err := c.page.ElementsX(expression)
	if err != nil {
		return nil, err
	}
	return wrapAll(els), nil
}

// Handle is a pageobject.Handle over a rod element.
type Handle struct {
	el *rod.Element
}

// Element adapts el. It returns nil for a nil element.
func Element(el *rod.Element) *Handle {
	if el == nil {
		return nil
	}
	return &Handle{el: el}
}

// Unwrap returns the underlying rod element.
func (h *Handle) Unwrap() *rod.Element {
	return h.el
}

func (h *Handle) QuerySelector(selector string) (pageobject.Handle, error) {
	found, el, err := h.el.Has(selector)
	if err != nil || !found {
		return nil, err
	}
	return wrap(el), nil
}

func (h *Handle) QuerySelectorAll(selector string) ([]pageobject.Handle, error) {
	els, err := h.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapAll(els), nil
}

func (h *Handle) QueryXPath(expression string) ([]pageobject.Handle, error) {
	els, err := h.el.ElementsX(expression)
	if err != nil {
		return nil, err
	}
	return wrapAll(els), nil
}

// OuterHTML returns the serialized element including its own tag.
func (h *Handle) OuterHTML() (string, error) {
	return h.el.HTML()
}

// Text returns the element's visible text.
func (h *Handle) Text() (string, error) {
	return h.el.Text()
}

func wrap(el *rod.Element) pageobject.Handle {
	if el == nil {
		return nil
	}
	return &Handle{el: el}
}

func wrapAll(els rod.Elements) []pageobject.Handle {
	out := make([]pageobject.Handle, 0, len(els))
	for _, el := range els {
		if el == nil {
			continue
		}
		out = append(out, &Handle{el: el})
	}
	return out
}
