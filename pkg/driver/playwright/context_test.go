package playwright

import (
	"errors"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pageobjects/pkg/pageobject"
)

// fakeElement implements the parts of playwright.ElementHandle the adapters
// use. Calling anything else panics on the nil embedded interface.
type fakeElement struct {
	playwright.ElementHandle
	html     string
	children map[string][]playwright.ElementHandle
	waitOpts []playwright.ElementHandleWaitForSelectorOptions
}

func (e *fakeElement) QuerySelector(selector string) (playwright.ElementHandle, error) {
	if hs := e.children[selector]; len(hs) > 0 {
		return hs[0], nil
	}
	return nil, nil
}

func (e *fakeElement) QuerySelectorAll(selector string) ([]playwright.ElementHandle, error) {
	return e.children[selector], nil
}

func (e *fakeElement) WaitForSelector(selector string, opts ...playwright.ElementHandleWaitForSelectorOptions) (playwright.ElementHandle, error) {
	e.waitOpts = append(e.waitOpts, opts...)
	return e.QuerySelector(selector)
}

func (e *fakeElement) Evaluate(expression string, _ ...interface{}) (interface{}, error) {
	if expression != "el => el.outerHTML" {
		return nil, errors.New("unexpected expression")
	}
	return e.html, nil
}

func (e *fakeElement) TextContent() (string, error) {
	return "text of " + e.html, nil
}

type fakePage struct {
	playwright.Page
	elements map[string][]playwright.ElementHandle
	err      error
	waitOpts []playwright.PageWaitForSelectorOptions
	queries  []string
}

func (p *fakePage) QuerySelector(selector string, _ ...playwright.PageQuerySelectorOptions) (playwright.ElementHandle, error) {
	p.queries = append(p.queries, selector)
	if p.err != nil {
		return nil, p.err
	}
	if hs := p.elements[selector]; len(hs) > 0 {
		return hs[0], nil
	}
	return nil, nil
}

func (p *fakePage) QuerySelectorAll(selector string) ([]playwright.ElementHandle, error) {
	p.queries = append(p.queries, selector)
	if p.err != nil {
		return nil, p.err
	}
	return p.elements[selector], nil
}

func (p *fakePage) WaitForSelector(selector string, opts ...playwright.PageWaitForSelectorOptions) (playwright.ElementHandle, error) {
	p.waitOpts = append(p.waitOpts, opts...)
	if p.err != nil {
		return nil, p.err
	}
	return p.QuerySelector(selector)
}

type row struct {
	pageobject.ElementObject

	Cells pageobject.Elements `selector:"td"`
}

type table struct {
	pageobject.PageObject

	Rows    pageobject.Objects[row] `selector:"tr"`
	Caption pageobject.Element      `selector:"caption"`
}

func newTablePage() *fakePage {
	cell := func(s string) playwright.ElementHandle { return &fakeElement{html: "<td>" + s + "</td>"} }
	r1 := &fakeElement{html: "<tr/>", children: map[string][]playwright.ElementHandle{"td": {cell("a"), cell("b")}}}
	r2 := &fakeElement{html: "<tr/>", children: map[string][]playwright.ElementHandle{"td": {cell("c")}}}
	return &fakePage{elements: map[string][]playwright.ElementHandle{"tr": {r1, r2}}}
}

func TestPageContext_Queries(t *testing.T) {
	p := newTablePage()
	c := Page(p)
	assert.Same(t, p, c.Unwrap())

	h, err := c.QuerySelector("tr")
	require.NoError(t, err)
	require.IsType(t, &Handle{}, h)

	h, err = c.QuerySelector("caption")
	require.NoError(t, err)
	assert.Nil(t, h)
	assert.True(t, h == nil)

	hs, err := c.QuerySelectorAll("missing")
	require.NoError(t, err)
	assert.NotNil(t, hs)
	assert.Empty(t, hs)

	hs, err = c.QueryXPath("//tr")
	require.NoError(t, err)
	assert.Empty(t, hs)
	assert.Equal(t, "xpath=//tr", p.queries[len(p.queries)-1])
}

func TestPageContext_Errors(t *testing.T) {
	boom := errors.New("target closed")
	c := Page(&fakePage{err: boom})

	_, err := c.QuerySelector("a")
	assert.ErrorIs(t, err, boom)
	_, err = c.QuerySelectorAll("a")
	assert.ErrorIs(t, err, boom)
	_, err = c.WaitForSelector("a", time.Second)
	assert.ErrorIs(t, err, boom)
}

func TestPageContext_WaitForSelector(t *testing.T) {
	p := newTablePage()
	c := Page(p)

	h, err := c.WaitForSelector("tr", 1500*time.Millisecond)
	require.NoError(t, err)
	assert.NotNil(t, h)

	_, err = c.WaitForSelector("tr", 0)
	require.NoError(t, err)

	require.Len(t, p.waitOpts, 2)
	assert.Equal(t, playwright.WaitForSelectorStateAttached, p.waitOpts[0].State)
	require.NotNil(t, p.waitOpts[0].Timeout)
	assert.Equal(t, 1500.0, *p.waitOpts[0].Timeout)
	assert.Nil(t, p.waitOpts[1].Timeout)
}

func TestHandle(t *testing.T) {
	assert.Nil(t, Element(nil))

	child := &fakeElement{html: "<b>x</b>"}
	fe := &fakeElement{html: "<p><b>x</b></p>", children: map[string][]playwright.ElementHandle{"b": {child}}}
	h := Element(fe)
	assert.Same(t, fe, h.Unwrap())

	html, err := h.OuterHTML()
	require.NoError(t, err)
	assert.Equal(t, "<p><b>x</b></p>", html)

	text, err := h.Text()
	require.NoError(t, err)
	assert.Equal(t, "text of <p><b>x</b></p>", text)

	b, err := h.QuerySelector("b")
	require.NoError(t, err)
	assert.Same(t, child, b.(*Handle).Unwrap())

	b, err = h.WaitForSelector("b", time.Second)
	require.NoError(t, err)
	assert.NotNil(t, b)
	require.Len(t, fe.waitOpts, 1)
	assert.Equal(t, 1000.0, *fe.waitOpts[0].Timeout)

	none, err := h.QuerySelector("i")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPageObjectsOverPlaywright(t *testing.T) {
	page := pageobject.CreateWith[table](pageobject.NewDispatcher(), Page(newTablePage()))

	rows, err := page.Rows.Get(testContext(t))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	cells, err := rows[0].Cells.Get(testContext(t))
	require.NoError(t, err)
	require.Len(t, cells, 2)
	html, err := cells[1].(*Handle).OuterHTML()
	require.NoError(t, err)
	assert.Equal(t, "<td>b</td>", html)

	cells, err = rows[1].Cells.Get(testContext(t))
	require.NoError(t, err)
	assert.Len(t, cells, 1)

	caption, err := page.Caption.Get(testContext(t))
	require.NoError(t, err)
	assert.Nil(t, caption)
}

func TestXPathSelector(t *testing.T) {
	assert.Equal(t, "xpath=//a", xpathSelector("//a"))
	assert.Equal(t, "xpath=//a", xpathSelector("xpath=//a"))
}
