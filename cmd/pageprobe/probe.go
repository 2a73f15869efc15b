package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/entrhq/pageobjects/pkg/pageobject"
)

// selection is one -select flag: a CSS selector and whether every match or
// only the first is wanted.
type selection struct {
	selector    string
	cardinality pageobject.Cardinality
}

func (s selection) String() string {
	if s.cardinality == pageobject.Single {
		return "one:" + s.selector
	}
	return "many:" + s.selector
}

// parseSelection parses "one:<css>" or "many:<css>". A bare selector means
// many.
func parseSelection(raw string) (selection, error) {
	kind, selector, found := strings.Cut(raw, ":")
	if !found {
		kind, selector = "many", raw
	}
	switch kind {
	case "one":
		if selector == "" {
			return selection{}, fmt.Errorf("empty selector in %q", raw)
		}
		return selection{selector: selector, cardinality: pageobject.Single}, nil
	case "many":
		if selector == "" {
			return selection{}, fmt.Errorf("empty selector in %q", raw)
		}
		return selection{selector: selector, cardinality: pageobject.Many}, nil
	default:
		// Pseudo-classes such as "a:hover" have no one/many prefix.
		if strings.TrimSpace(raw) == "" {
			return selection{}, fmt.Errorf("empty selector")
		}
		return selection{selector: raw, cardinality: pageobject.Many}, nil
	}
}

// selections implements flag.Value for a repeatable -select flag.
type selections []selection

func (s *selections) String() string {
	parts := make([]string, len(*s))
	for i, sel := range *s {
		parts[i] = sel.String()
	}
	return strings.Join(parts, ",")
}

func (s *selections) Set(raw string) error {
	sel, err := parseSelection(raw)
	if err != nil {
		return err
	}
	*s = append(*s, sel)
	return nil
}

// result is the outcome of one selection.
type result struct {
	selection selection
	handles   []pageobject.Handle
}

type outerHTMLer interface {
	OuterHTML() (string, error)
}

// probe resolves every selection concurrently against root. Results keep the
// order of sels. The first failure cancels waiting on the others.
func probe(ctx context.Context, d *pageobject.Dispatcher, root pageobject.Context, sels []selection) ([]result, error) {
	results := make([]result, len(sels))
	g, gctx := errgroup.WithContext(ctx)

	for i, sel := range sels {
		i, sel := i, sel
		g.Go(func() error {
			f, err := d.Resolve(root, pageobject.NewDescriptor(sel.selector, sel.cardinality))
			if err != nil {
				return fmt.Errorf("%s: %w", sel, err)
			}
			v, err := f.Await(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", sel, err)
			}

			results[i].selection = sel
			switch v := v.(type) {
			case pageobject.Handle:
				results[i].handles = []pageobject.Handle{v}
			case []pageobject.Handle:
				results[i].handles = v
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// report writes each result's matches rendered by r.
func report(w io.Writer, results []result, r *renderer) error {
	for _, res := range results {
		fmt.Fprintf(w, "== %s (%d %s)\n", res.selection, len(res.handles), plural(len(res.handles), "match", "matches"))
		for _, h := range res.handles {
			html := fmt.Sprintf("%v", h)
			if o, ok := h.(outerHTMLer); ok {
				s, err := o.OuterHTML()
				if err != nil {
					return fmt.Errorf("%s: %w", res.selection, err)
				}
				html = s
			}
			out, err := r.render(html)
			if err != nil {
				return fmt.Errorf("%s: %w", res.selection, err)
			}
			fmt.Fprintln(w, out)
		}
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
