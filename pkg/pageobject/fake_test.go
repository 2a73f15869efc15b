package pageobject

import (
	"strings"
	"sync"
	"time"
)

// fakeDOM is an in-memory document that counts the queries issued against it.
type fakeDOM struct {
	mu      sync.Mutex
	root    *fakeNode
	queries []string
	err     error
	panics  bool
	block   chan struct{}
}

type fakeNode struct {
	dom      *fakeDOM
	tag      string
	id       string
	classes  []string
	children []*fakeNode
}

// el builds a node from "tag#id.class1.class2" and its children.
func el(spec string, children ...*fakeNode) *fakeNode {
	n := &fakeNode{children: children}
	head, classes, _ := strings.Cut(spec, ".")
	if classes != "" {
		n.classes = strings.Split(classes, ".")
	}
	n.tag, n.id, _ = strings.Cut(head, "#")
	return n
}

func newFakeDOM(root *fakeNode) *fakeDOM {
	d := &fakeDOM{}
	d.setContent(root)
	return d
}

func (d *fakeDOM) setContent(root *fakeNode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.root = root
	adopt(d, root)
}

func adopt(d *fakeDOM, n *fakeNode) {
	n.dom = d
	for _, c := range n.children {
		adopt(d, c)
	}
}

func (d *fakeDOM) queryCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queries)
}

// record registers a query and applies the configured failure modes.
func (d *fakeDOM) record(selector string) error {
	d.mu.Lock()
	d.queries = append(d.queries, selector)
	block, err, panics := d.block, d.err, d.panics
	d.mu.Unlock()

	if block != nil {
		<-block
	}
	if panics {
		panic("driver exploded")
	}
	return err
}

func (n *fakeNode) matches(selector string) bool {
	switch {
	case strings.HasPrefix(selector, "#"):
		return n.id == selector[1:]
	case strings.HasPrefix(selector, "."):
		for _, c := range n.classes {
			if c == selector[1:] {
				return true
			}
		}
		return false
	default:
		return n.tag == selector
	}
}

// descendants lists the nodes below n matching selector in document order.
func (n *fakeNode) descendants(selector string) []Handle {
	var out []Handle
	var walk func(*fakeNode)
	walk = func(p *fakeNode) {
		for _, c := range p.children {
			if c.matches(selector) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func (n *fakeNode) QuerySelector(selector string) (Handle, error) {
	if err := n.dom.record(selector); err != nil {
		return nil, err
	}
	if all := n.descendants(selector); len(all) > 0 {
		return all[0], nil
	}
	return nil, nil
}

func (n *fakeNode) QuerySelectorAll(selector string) ([]Handle, error) {
	if err := n.dom.record(selector); err != nil {
		return nil, err
	}
	return n.descendants(selector), nil
}

// fakePage is the document-level context; it always queries the current root.
type fakePage struct {
	dom *fakeDOM
}

func (p *fakePage) current() *fakeNode {
	p.dom.mu.Lock()
	defer p.dom.mu.Unlock()
	return p.dom.root
}

func (p *fakePage) QuerySelector(selector string) (Handle, error) {
	return p.current().QuerySelector(selector)
}

func (p *fakePage) QuerySelectorAll(selector string) ([]Handle, error) {
	return p.current().QuerySelectorAll(selector)
}

// fakeWaitingPage adds the optional capabilities to fakePage.
type fakeWaitingPage struct {
	fakePage
	waitErr error
}

func (p *fakeWaitingPage) WaitForSelector(selector string, _ time.Duration) (Handle, error) {
	if p.waitErr != nil {
		return nil, p.waitErr
	}
	return p.QuerySelector(selector)
}

// QueryXPath understands "//tag" only.
func (p *fakeWaitingPage) QueryXPath(expression string) ([]Handle, error) {
	return p.QuerySelectorAll(strings.TrimPrefix(expression, "//"))
}

type ItemObject struct {
	ElementObject

	Title Element  `selector:".title"`
	Tags  Elements `selector:".tag"`
}

type ListPage struct {
	PageObject

	Header Element             `selector:"#header"`
	Items  Objects[ItemObject] `selector:".item"`
	First  Object[ItemObject]  `selector:".item"`
	Links  Elements            `selector:"a"`

	Flag   bool           `selector:".flag"`
	Name   string         `selector:"#name"`
	Bad    Object[string] `selector:".bad"`
	hidden Element        `selector:".hidden"`
	Plain  Element
}

func item(id string, tags int) *fakeNode {
	n := el("li#"+id+".item", el("span#"+id+"-title.title"))
	for i := 0; i < tags; i++ {
		n.children = append(n.children, el("b.tag"))
	}
	return n
}

func listDocument(items ...*fakeNode) *fakeNode {
	return el("html", el("body", el("ul", items...), el("a"), el("a")))
}

func newListPage(dom *fakeDOM, opts ...Option) (*ListPage, *fakePage) {
	page := &fakePage{dom: dom}
	return CreateWith[ListPage](NewDispatcher(opts...), page), page
}
