package arbiter

import (
	"context"
	"sync"
)

// Result is the outcome of a submitted unit of work.
type Result struct {
	Value any
	Err   error
}

// Work is a unit of work executed once its target lane is ready.
type Work func(ctx context.Context) (any, error)

// Future is the result handle returned by Submit. It resolves exactly once:
// with the work's outcome, with the arbiter's failure reason, or as
// cancelled.
type Future struct {
	id        string
	mu        sync.Mutex
	done      chan struct{}
	resolved  bool
	cancelled bool
	res       Result
}

func newFuture(id string) *Future {
	return &Future{id: id, done: make(chan struct{})}
}

// ID returns the request id assigned at submission.
func (f *Future) ID() string { return f.id }

// Done is closed once the future is resolved.
func (f *Future) Done() <-chan struct{} { return f.done }

// Result returns the outcome. Valid only after Done is closed.
func (f *Future) Result() Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.res
}

// Wait blocks until the future resolves or ctx expires.
func (f *Future) Wait(ctx context.Context) (Result, error) {
	select {
	case <-f.done:
		return f.Result(), nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Cancel withdraws a pending request. The future resolves immediately with a
// cancellation error and the worker skips its work when it reaches the item.
// Cancelling an already-resolved future is a no-op; work that has started is
// not pre-empted.
func (f *Future) Cancel() {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return
	}
	f.cancelled = true
	f.resolveLocked(nil, queueCancelledError{id: f.id})
	f.mu.Unlock()
}

// Cancelled reports whether the caller withdrew the request.
func (f *Future) Cancelled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}

func (f *Future) resolve(v any, err error) {
	f.mu.Lock()
	f.resolveLocked(v, err)
	f.mu.Unlock()
}

func (f *Future) resolveLocked(v any, err error) {
	if f.resolved {
		return
	}
	f.resolved = true
	f.res = Result{Value: v, Err: err}
	close(f.done)
}
