package sensor

import "sync/atomic"

// Mailbox is a single-slot, latest-value-wins cell. Writers publish a fully
// formed value with one pointer swap; readers never block and always see either
// the previous or the new value, never a mix.
type Mailbox[T any] struct {
	value   atomic.Pointer[T]
	version atomic.Uint64
	dirty   atomic.Bool
}

// NewMailbox creates a mailbox holding initial at version 0.
func NewMailbox[T any](initial T) *Mailbox[T] {
	m := &Mailbox[T]{}
	m.value.Store(&initial)
	return m
}

// Post replaces the held value.
func (m *Mailbox[T]) Post(v T) {
	m.value.Store(&v)
	m.version.Add(1)
	m.dirty.Store(true)
}

// Latest returns the held value.
func (m *Mailbox[T]) Latest() T {
	return *m.value.Load()
}

// Receive returns the held value and whether it was posted since the previous
// Receive.
func (m *Mailbox[T]) Receive() (T, bool) {
	fresh := m.dirty.Swap(false)
	return *m.value.Load(), fresh
}

// Version counts posts since creation.
func (m *Mailbox[T]) Version() uint64 {
	return m.version.Load()
}

func (m *Mailbox[T]) IsDirty() bool {
	return m.dirty.Load()
}
