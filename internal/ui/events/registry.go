// Package events is a small listener registry. Every Add hands back a
// remover, so a view can detach its listeners when it is torn down.
package events

import (
	"sort"
	"sync"
)

type Registry[T any] struct {
	mu        sync.Mutex
	next      uint64
	listeners map[uint64]func(T)
}

// Add registers fn and returns the function that removes it. Calling the
// remover more than once is harmless.
func (r *Registry[T]) Add(fn func(T)) (remove func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listeners == nil {
		r.listeners = make(map[uint64]func(T))
	}
	r.next++
	id := r.next
	r.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}
}

// Emit calls every listener in registration order. Listeners run outside
// the registry lock and may add or remove listeners.
func (r *Registry[T]) Emit(v T) {
	r.mu.Lock()
	ids := make([]uint64, 0, len(r.listeners))
	for id := range r.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, r.listeners[id])
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}
