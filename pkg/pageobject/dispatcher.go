package pageobject

import (
	"context"
	"fmt"
	"reflect"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/entrhq/pageobjects/pkg/logging"
)

const tracerName = "github.com/entrhq/pageobjects/pkg/pageobject"

// Dispatcher serves property accesses on composites: it looks the property up
// in the registry, resolves it on a separate goroutine and delivers the result
// through a Future. Dispatchers hold no per-access state and are safe for
// concurrent use.
type Dispatcher struct {
	registry *Registry
	resolver *Resolver
	composer *Composer
	metrics  *Metrics
	logger   *logging.Logger
	tracer   trace.Tracer
	tp       trace.TracerProvider
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRegistry sets the descriptor registry.
func WithRegistry(registry *Registry) Option {
	return func(d *Dispatcher) {
		d.registry = registry
	}
}

// WithMetrics reports queries and wrapping to metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = metrics
	}
}

// WithLogger sets the logger of the dispatcher and of its default registry.
func WithLogger(logger *logging.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithTracerProvider sets the provider of resolution spans. The global
// provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Dispatcher) {
		d.tp = tp
	}
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logging.Nop()
	}
	if d.registry == nil {
		d.registry = NewRegistry(WithRegistryLogger(d.logger))
	}
	if d.tp == nil {
		d.tp = otel.GetTracerProvider()
	}
	d.tracer = d.tp.Tracer(tracerName)
	d.resolver = NewResolver(d.metrics)
	d.composer = NewComposer(d.registry, d.metrics)
	return d
}

var defaultDispatcher = NewDispatcher()

// Default returns the dispatcher used by Create and the query helpers.
func Default() *Dispatcher {
	return defaultDispatcher
}

// Registry returns the dispatcher's descriptor registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Invoke resolves the named selector property of obj. It returns a nil future
// and no error when obj has no such property or its shape is unsupported, and
// ErrNoContext, without querying, when obj has no browsing context.
func (d *Dispatcher) Invoke(obj Composite, property string) (*Future[any], error) {
	return dispatch[any](d, obj, property)
}

// Resolve runs an ad-hoc descriptor against scope through the same
// asynchronous path as declared properties. Composite results are rooted at
// scope.
func (d *Dispatcher) Resolve(scope Context, desc Descriptor) (*Future[any], error) {
	if isNil(scope) {
		return nil, ErrNoContext
	}
	parent := &PageObject{base{root: scope, scope: scope, dispatcher: d}}
	f := newFuture[any]()
	go d.run(parent, "", desc, func(v any, err error) { f.fulfill(v, err) })
	return f, nil
}

// Invoke resolves the named selector property of obj with the dispatcher obj
// was created by.
func Invoke(obj Composite, property string) (*Future[any], error) {
	if isNil(obj) {
		return nil, ErrNoContext
	}
	return dispatcherFor(obj).Invoke(obj, property)
}

func dispatcherFor(obj Composite) *Dispatcher {
	if d := obj.object().dispatcher; d != nil {
		return d
	}
	return defaultDispatcher
}

func dispatch[T any](d *Dispatcher, obj Composite, property string) (*Future[T], error) {
	if isNil(obj) {
		return nil, ErrNoContext
	}
	prop, ok := d.registry.Lookup(reflect.TypeOf(obj), property)
	if !ok {
		d.logger.Debugf("%T.%s has no selector descriptor", obj, property)
		return nil, nil
	}
	b := obj.object()
	if isNil(b.scope) {
		return nil, fmt.Errorf("%T.%s: %w", obj, property, ErrNoContext)
	}

	f := newFuture[T]()
	go d.run(obj, property, prop.Descriptor, func(v any, err error) {
		value, _ := v.(T)
		f.fulfill(value, err)
	})
	return f, nil
}

// run resolves and wraps one property access and hands the outcome to
// deliver exactly once, converting panics into ErrResolutionPanic.
func (d *Dispatcher) run(obj Composite, property string, desc Descriptor, deliver func(any, error)) {
	_, span := d.tracer.Start(context.Background(), "pageobject.resolve", trace.WithAttributes(
		attribute.String("pageobject.property", property),
		attribute.String("pageobject.selector", desc.selector),
		attribute.String("pageobject.cardinality", desc.cardinality.String()),
		attribute.Bool("pageobject.composite", desc.Composite()),
	))

	var (
		value any
		err   error
	)
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, fmt.Errorf("%w: %v", ErrResolutionPanic, r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			d.logger.Debugf("resolve %s: %v", desc, err)
		}
		span.End()
		deliver(value, err)
	}()

	raw, err := d.resolver.Resolve(obj.object().scope, desc)
	if err != nil {
		return
	}
	value = d.composer.Wrap(raw, desc, obj)
}
