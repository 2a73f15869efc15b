package pageobject

import (
	"fmt"
	"reflect"
	"time"
)

// Resolver issues the query described by a descriptor against a browsing
// context. Every call queries the context afresh; nothing is cached or retried.
type Resolver struct {
	metrics *Metrics
}

// NewResolver creates a resolver reporting to metrics, which may be nil.
func NewResolver(metrics *Metrics) *Resolver {
	return &Resolver{metrics: metrics}
}

// Resolve returns a Handle or nil for Single descriptors, and a non-nil
// []Handle for Many descriptors. Driver errors are returned unchanged.
func (r *Resolver) Resolve(scope Context, d Descriptor) (any, error) {
	if isNil(scope) {
		return nil, ErrNoContext
	}

	start := time.Now()
	switch d.cardinality {
	case Single:
		h, err := scope.QuerySelector(d.selector)
		r.metrics.observeQuery(d.cardinality, start, boolToInt(!isNil(h)), err)
		if err != nil {
			return nil, err
		}
		if isNil(h) {
			return nil, nil
		}
		return h, nil
	case Many:
		hs, err := scope.QuerySelectorAll(d.selector)
		r.metrics.observeQuery(d.cardinality, start, len(hs), err)
		if err != nil {
			return nil, err
		}
		if hs == nil {
			hs = []Handle{}
		}
		return hs, nil
	default:
		return nil, fmt.Errorf("pageobject: unknown cardinality %s", d.cardinality)
	}
}

// isNil reports whether v is nil or an interface holding a nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
