package playwright

import (
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/pageobjects/pkg/pageobject"
)

const xpathPrefix = "xpath="

// PageContext is a pageobject.Context over a playwright page. Queries always
// run against the page's current document.
type PageContext struct {
	page playwright.Page
}

// Page adapts p.
func Page(p playwright.Page) *PageContext {
	return &PageContext{page: p}
}

// Unwrap returns the underlying playwright page.
func (c *PageContext) Unwrap() playwright.Page {
	return c.page
}

func (c *PageContext) QuerySelector(selector string) (pageobject.Handle, error) {
	h, err := c.page.QuerySelector(selector)
	if err != nil {
		return nil, err
	}
	return wrap(h), nil
}

func (c *PageContext) QuerySelectorAll(selector string) ([]pageobject.Handle, error) {
	hs, err := c.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	return wrapAll(hs), nil
}

func (c *PageContext) WaitForSelector(selector string, timeout time.Duration) (pageobject.Handle, error) {
	h, err := c.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: milliseconds(timeout),
	})
	if err != nil {
		return nil, err
	}
	return wrap(h), nil
}

func (c *PageContext) QueryXPath(expression string) ([]pageobject.Handle, error) {
	return c.QuerySelectorAll(xpathSelector(expression))
}

// FrameContext is a pageobject.Context over a playwright frame.
type FrameContext struct {
	frame playwright.Frame
}

// Frame adapts f.
func Frame(f playwright.Frame) *FrameContext {
	return &FrameContext{frame: f}
}

// Unwrap returns the underlying playwright frame.
func (c *FrameContext) Unwrap() playwright.Frame {
	return c.frame
}

func (c *FrameContext) QuerySelector(selector string) (pageobject.Handle, error) {
	h, err := c.frame.QuerySelector(selector)
	if err != nil {
		return nil, err
	}
	return wrap(h), nil
}

func (c *FrameContext) QuerySelectorAll(selector string) ([]pageobject.Handle, error) {
	hs, err := c.frame.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	return wrapAll(hs), nil
}

func (c *FrameContext) WaitForSelector(selector string, timeout time.Duration) (pageobject.Handle, error) {
	h, err := c.frame.WaitForSelector(selector, playwright.FrameWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: milliseconds(timeout),
	})
	if err != nil {
		return nil, err
	}
	return wrap(h), nil
}

func (c *FrameContext) QueryXPath(expression string) ([]pageobject.Handle, error) {
	return c.QuerySelectorAll(xpathSelector(expression))
}

// Handle is a pageobject.Handle over a playwright element handle. Nested
// queries are scoped to the element.
type Handle struct {
	handle playwright.ElementHandle
}

// Element adapts h. It returns nil for a nil handle.
func Element(h playwright.ElementHandle) *Handle {
	if h == nil {
		return nil
	}
	return &Handle{handle: h}
}

// Unwrap returns the underlying playwright element handle.
func (h *Handle) Unwrap() playwright.ElementHandle {
	return h.handle
}

func (h *Handle) QuerySelector(selector string) (pageobject.Handle, error) {
	child, err := h.handle.QuerySelector(selector)
	if err != nil {
		return nil, err
	}
	return wrap(child), nil
}

func (h *Handle) QuerySelectorAll(selector string) ([]pageobject.Handle, error) {
	children, err := h.handle.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	return wrapAll(children), nil
}

func (h *Handle) WaitForSelector(selector string, timeout time.Duration) (pageobject.Handle, error) {
	child, err := h.handle.WaitForSelector(selector, playwright.ElementHandleWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: milliseconds(timeout),
	})
	if err != nil {
		return nil, err
	}
	return wrap(child), nil
}

func (h *Handle) QueryXPath(expression string) ([]pageobject.Handle, error) {
	return h.QuerySelectorAll(xpathSelector(expression))
}

// OuterHTML returns the serialized element including its own tag.
func (h *Handle) OuterHTML() (string, error) {
	v, err := h.handle.Evaluate("el => el.outerHTML")
	if err != nil {
		return "", fmt.Errorf("outer html: %w", err)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("outer html: unexpected result type %T", v)
	}
	return s, nil
}

// Text returns the element's text content.
func (h *Handle) Text() (string, error) {
	return h.handle.TextContent()
}

// wrap returns an untyped nil for a missing handle so callers can compare
// against nil.
func wrap(h playwright.ElementHandle) pageobject.Handle {
	if h == nil {
		return nil
	}
	return &Handle{handle: h}
}

func wrapAll(hs []playwright.ElementHandle) []pageobject.Handle {
	out := make([]pageobject.Handle, 0, len(hs))
	for _, h := range hs {
		if h == nil {
			continue
		}
		out = append(out, &Handle{handle: h})
	}
	return out
}

func milliseconds(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	return playwright.Float(float64(d) / float64(time.Millisecond))
}

func xpathSelector(expression string) string {
	if strings.HasPrefix(expression, xpathPrefix) {
		return expression
	}
	return xpathPrefix + expression
}
