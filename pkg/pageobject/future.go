package pageobject

import (
	"context"
	"sync"
)

// Future is the pending result of a property access. It is fulfilled exactly
// once, including when the resolved value is nil or empty.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// fulfill stores the result and releases waiters. It reports false when the
// future had already been fulfilled.
func (f *Future[T]) fulfill(value T, err error) bool {
	fulfilled := false
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
		fulfilled = true
	})
	return fulfilled
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future is fulfilled or ctx is done. Giving up on ctx
// does not cancel the underlying query; the future is still fulfilled later.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result blocks until the future is fulfilled.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.value, f.err
}
