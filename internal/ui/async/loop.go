// Package async runs blocking work off the UI path and brings the result
// back onto it.
//
// A Loop executes posted UI updates one at a time, in order, on its own
// goroutine. Go is the single way views run a potentially blocking
// operation: the operation runs on a fresh goroutine and its result is
// delivered on the Loop, or directly when the Loop is gone.
package async

import (
	"context"
	"sync"
)

type Loop struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pending  []func()
	closed   bool
	done     chan struct{}
	inflight sync.WaitGroup
}

func NewLoop() *Loop {
	l := &Loop{done: make(chan struct{})}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		for len(l.pending) == 0 && !l.closed {
			l.cond.Wait()
		}
		if len(l.pending) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.pending[0]
		l.pending[0] = nil
		l.pending = l.pending[1:]
		l.mu.Unlock()

		fn()
	}
}

// Post queues fn. It reports false when the loop is closed and fn was not
// queued.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.pending = append(l.pending, fn)
	l.cond.Signal()
	return true
}

// Flush blocks until everything posted before the call has run. It must
// not be called from a function running on the loop.
func (l *Loop) Flush() {
	ch := make(chan struct{})
	if !l.Post(func() { close(ch) }) {
		return
	}
	<-ch
}

// Idle waits for all operations started with Go to deliver, then flushes.
func (l *Loop) Idle() {
	l.inflight.Wait()
	l.Flush()
}

// Close stops accepting work, runs what is already queued and returns
// once the loop goroutine exits.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.closed = true
	l.cond.Broadcast()
	l.mu.Unlock()
	<-l.done
}

// Go runs op on its own goroutine and delivers the result on l. When l is
// nil or already closed, deliver is called on the worker goroutine instead.
func Go[T any](ctx context.Context, l *Loop, op func(context.Context) (T, error), deliver func(T, error)) {
	if l != nil {
		l.inflight.Add(1)
	}
	go func() {
		v, err := op(ctx)
		if l == nil {
			deliver(v, err)
			return
		}
		posted := l.Post(func() {
			defer l.inflight.Done()
			deliver(v, err)
		})
		if !posted {
			defer l.inflight.Done()
			deliver(v, err)
		}
	}()
}
