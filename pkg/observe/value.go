// Package observe provides a copy-on-write observable cell.
//
// A Value never mutates what it holds: writers replace it wholesale, so a
// reader that keeps a previous value (or its Version) can detect change by
// comparison. Subscribers are called synchronously by the writer, in write
// order, after the new value is visible to Get.
package observe

import (
	"sync"
)

type Value[T any] struct {
	mu      sync.RWMutex
	value   T
	version uint64

	// emit serializes writers together with their notifications so
	// subscribers see writes in order. Always taken before mu.
	emit sync.Mutex

	subsMu sync.Mutex
	subs   map[int]func(T)
	nextID int
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		value: initial,
		subs:  map[int]func(T){},
	}
}

func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.value
}

// Load returns the current value together with its version.
func (v *Value[T]) Load() (T, uint64) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.value, v.version
}

func (v *Value[T]) Version() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.version
}

func (v *Value[T]) Set(value T) {
	v.Update(func(T) T {
		return value
	})
}

// Update replaces the value with fn(current) atomically with respect to other
// writers. fn must be pure: it must not write to v.
func (v *Value[T]) Update(fn func(T) T) T {
	v.emit.Lock()
	defer v.emit.Unlock()

	v.mu.Lock()
	next := fn(v.value)
	v.value = next
	v.version++
	v.mu.Unlock()

	v.notify(next)

	return next
}

// Swap is like Update but lets fn decide whether anything changed. No version
// bump and no notification happen when fn reports false.
func (v *Value[T]) Swap(fn func(T) (T, bool)) (T, bool) {
	v.emit.Lock()
	defer v.emit.Unlock()

	v.mu.Lock()
	next, changed := fn(v.value)
	if !changed {
		current := v.value
		v.mu.Unlock()
		return current, false
	}
	v.value = next
	v.version++
	v.mu.Unlock()

	v.notify(next)

	return next, true
}

// Subscribe registers fn and returns a function removing it. fn runs on the
// writer's goroutine and must not write to v.
func (v *Value[T]) Subscribe(fn func(T)) func() {
	v.subsMu.Lock()
	defer v.subsMu.Unlock()

	id := v.nextID
	v.nextID++
	v.subs[id] = fn

	return func() {
		v.subsMu.Lock()
		defer v.subsMu.Unlock()

		delete(v.subs, id)
	}
}

func (v *Value[T]) notify(value T) {
	v.subsMu.Lock()
	subs := make([]func(T), 0, len(v.subs))
	for _, fn := range v.subs {
		subs = append(subs, fn)
	}
	v.subsMu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
}
