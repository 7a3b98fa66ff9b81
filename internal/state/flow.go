// Package state provides an observable single-value holder.
//
// A Flow has one owner that replaces the whole value and any number of
// readers that observe it. Subscribers always receive the current value
// first and then the latest value after every change; intermediate values
// may be skipped if a subscriber is slow, but the last value is never lost.
package state

import "sync"

// Reader is the read-only view of a Flow handed to renderers.
type Reader[T any] interface {
	// Value returns the current value.
	Value() T
	// Subscribe returns a channel receiving the current value and every
	// subsequent one, and a function that ends the subscription.
	Subscribe() (<-chan T, func())
}

// Flow holds a value of type T and notifies subscribers on replacement.
type Flow[T any] struct {
	mu     sync.RWMutex
	value  T
	subs   map[int]chan T
	nextID int
}

// NewFlow creates a Flow holding initial.
func NewFlow[T any](initial T) *Flow[T] {
	return &Flow[T]{
		value: initial,
		subs:  make(map[int]chan T),
	}
}

// Value returns the current value.
func (f *Flow[T]) Value() T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value
}

// Set replaces the value and notifies subscribers.
func (f *Flow[T]) Set(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = v
	f.broadcast(v)
}

// Update replaces the value with fn(current) as a single atomic step.
func (f *Flow[T]) Update(fn func(T) T) T {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = fn(f.value)
	f.broadcast(f.value)
	return f.value
}

// Subscribe implements Reader.
func (f *Flow[T]) Subscribe() (<-chan T, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	ch := make(chan T, 1)
	ch <- f.value
	f.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if c, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// ReadOnly returns f as a Reader.
func (f *Flow[T]) ReadOnly() Reader[T] {
	return f
}

// broadcast conflates: each channel holds at most the latest value.
// Must be called with mu held.
func (f *Flow[T]) broadcast(v T) {
	for _, ch := range f.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}
