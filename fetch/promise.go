package fetch

import (
	"context"
	"sync"
)

// Promise is a value that settles at most once, either fulfilled with a T or
// rejected with an error.
//
// A promise that never settles is legitimate: an aborted request leaves its
// promise pending forever. Await returns when the caller's context ends in
// that case, without settling the promise.
type Promise[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	settled   bool
	value     T
	err       error
	callbacks []func()
}

func newPromise[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// Resolve returns an already fulfilled promise.
func Resolve[T any](v T) *Promise[T] {
	p := newPromise[T]()
	p.resolve(v)
	return p
}

// Reject returns an already rejected promise.
func Reject[T any](err error) *Promise[T] {
	p := newPromise[T]()
	p.reject(err)
	return p
}

func (p *Promise[T]) resolve(v T) bool {
	return p.settle(v, nil)
}

func (p *Promise[T]) reject(err error) bool {
	var zero T
	return p.settle(zero, err)
}

func (p *Promise[T]) settle(v T, err error) bool {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return false
	}
	p.settled = true
	p.value = v
	p.err = err
	callbacks := p.callbacks
	p.callbacks = nil
	close(p.done)
	p.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
	return true
}

// Done is closed once the promise settles.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Settled reports whether the promise has been fulfilled or rejected.
func (p *Promise[T]) Settled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settled
}

// Await blocks until the promise settles or ctx is done. A ctx error leaves
// the promise untouched.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnSettled registers callbacks for fulfillment and rejection; either may be
// nil. Callbacks registered after settlement run immediately on the calling
// goroutine, otherwise on the goroutine that settles the promise, so they
// must not block.
func (p *Promise[T]) OnSettled(onFulfilled func(T), onRejected func(error)) {
	run := func() {
		if p.err != nil {
			if onRejected != nil {
				onRejected(p.err)
			}
			return
		}
		if onFulfilled != nil {
			onFulfilled(p.value)
		}
	}

	p.mu.Lock()
	if !p.settled {
		p.callbacks = append(p.callbacks, run)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	run()
}

// Then returns a promise settled with fn applied to p's value. A rejection
// of p propagates unchanged and fn is not called.
//
//	json := fetch.Then(req.Fetch(), func(r *fetch.Response) (map[string]any, error) {
//	    var v map[string]any
//	    return v, r.JSON(&v)
//	})
func Then[T, U any](p *Promise[T], fn func(T) (U, error)) *Promise[U] {
	next := newPromise[U]()
	p.OnSettled(
		func(v T) {
			u, err := fn(v)
			if err != nil {
				next.reject(err)
				return
			}
			next.resolve(u)
		},
		func(err error) { next.reject(err) },
	)
	return next
}
