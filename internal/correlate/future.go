package correlate

import (
	"context"
	"sync"
)

// Future is a value that becomes available once. It is resolved exactly
// once, either with a value or an error; later resolutions are ignored.
//
// Future is safe for concurrent use.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// NewFuture returns an unresolved future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future already resolved with value and err.
func Resolved[T any](value T, err error) *Future[T] {
	f := NewFuture[T]()
	f.Resolve(value, err)
	return f
}

// Resolve settles the future. Returns false if it was already settled.
func (f *Future[T]) Resolve(value T, err error) bool {
	resolved := false
	f.once.Do(func() {
		f.value, f.err = value, err
		close(f.done)
		resolved = true
	})
	return resolved
}

// Done returns a channel closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future resolves or ctx is done. Giving up through
// ctx does not resolve the future for other waiters.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Map returns a future resolved with fn applied to f's value. Errors pass
// through without calling fn.
func Map[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := NewFuture[U]()
	go func() {
		<-f.done
		if f.err != nil {
			var zero U
			out.Resolve(zero, f.err)
			return
		}
		out.Resolve(fn(f.value))
	}()
	return out
}
