package main

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Output formats for matched elements.
const (
	formatHTML  = "html"
	formatClean = "clean"
	formatText  = "text"
)

// renderer turns the outer HTML of a match into printable output.
type renderer struct {
	format    string
	maxLength int
}

func newRenderer(format string, maxLength int) (*renderer, error) {
	switch format {
	case formatHTML, formatClean, formatText:
	default:
		return nil, fmt.Errorf("invalid format: %s (must be 'html', 'clean' or 'text')", format)
	}
	return &renderer{format: format, maxLength: maxLength}, nil
}

func (r *renderer) render(outer string) (string, error) {
	if r.format == formatHTML {
		return truncate(outer, r.maxLength), nil
	}

	nodes, err := html.ParseFragment(strings.NewReader(outer), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	w := &fragmentWriter{max: r.maxLength, textOnly: r.format == formatText}
	for _, n := range nodes {
		if w.node(n, 0) {
			break
		}
	}
	out := w.b.String()
	if w.textOnly {
		out = strings.Join(strings.Fields(out), " ")
	}
	return strings.TrimSpace(out), nil
}

// fragmentWriter serializes a parsed fragment without scripts, styles and
// comments, keeping only attributes useful for targeting. With textOnly set
// it writes text content alone. Output stops once max bytes of text are
// written; max <= 0 means unlimited.
type fragmentWriter struct {
	b        strings.Builder
	written  int
	max      int
	textOnly bool
}

// node writes n and reports whether output was truncated.
func (w *fragmentWriter) node(n *html.Node, depth int) bool {
	switch n.Type {
	case html.CommentNode:
		return false
	case html.TextNode:
		return w.text(n.Data)
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if skippedElements[tag] {
			return false
		}
		if w.textOnly {
			if blockElements[tag] {
				w.b.WriteString(" ")
			}
			return w.children(n, depth)
		}
		return w.element(n, tag, depth)
	default:
		return w.children(n, depth)
	}
}

func (w *fragmentWriter) text(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if w.max > 0 && w.written+len(s) > w.max {
		w.b.WriteString(s[:w.max-w.written])
		w.b.WriteString("...")
		w.written = w.max
		return true
	}
	if w.textOnly && w.b.Len() > 0 {
		w.b.WriteString(" ")
	}
	w.b.WriteString(s)
	w.written += len(s)
	return false
}

func (w *fragmentWriter) element(n *html.Node, tag string, depth int) bool {
	block := blockElements[tag]
	if depth > 0 && block {
		w.newline(depth)
	}

	w.b.WriteString("<" + tag)
	for _, a := range n.Attr {
		if keepAttribute(tag, strings.ToLower(a.Key)) {
			fmt.Fprintf(&w.b, ` %s="%s"`, a.Key, html.EscapeString(a.Val))
		}
	}
	w.b.WriteString(">")

	if voidElements[tag] {
		return false
	}
	truncated := w.children(n, depth+1)
	if block && n.FirstChild != nil && blockElements[strings.ToLower(lastElement(n))] {
		w.newline(depth)
	}
	w.b.WriteString("</" + tag + ">")
	return truncated
}

func (w *fragmentWriter) children(n *html.Node, depth int) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if w.node(c, depth) {
			return true
		}
	}
	return false
}

func (w *fragmentWriter) newline(depth int) {
	w.b.WriteString("\n")
	w.b.WriteString(strings.Repeat("  ", depth))
}

// lastElement returns the tag of n's last element child.
func lastElement(n *html.Node) string {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			return c.Data
		}
	}
	return ""
}

var skippedElements = setOf("script", "style", "noscript", "iframe", "embed", "object", "svg", "template")

var blockElements = setOf(
	"div", "p", "section", "article", "header", "footer", "nav", "main", "aside",
	"h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "table", "tbody", "thead",
	"tr", "td", "th", "form", "fieldset", "blockquote", "pre",
)

var voidElements = setOf(
	"area", "base", "br", "col", "embed", "hr", "img", "input", "link", "meta",
	"param", "source", "track", "wbr",
)

var globalAttributes = setOf("id", "class", "role", "aria-label", "aria-describedby", "name")

func keepAttribute(tag, attr string) bool {
	if globalAttributes[attr] || strings.HasPrefix(attr, "data-") {
		return true
	}
	switch tag {
	case "a":
		return attr == "href"
	case "img":
		return attr == "src" || attr == "alt"
	case "input", "textarea", "select", "button":
		return attr == "type" || attr == "placeholder" || attr == "value"
	case "form":
		return attr == "action" || attr == "method"
	}
	return false
}

func setOf(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, s := range items {
		m[s] = true
	}
	return m
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
