package task

import "sync/atomic"

// wakerSlot boxes a Waker so it can be swapped atomically.
type wakerSlot struct {
	w Waker
}

// AtomicWaker stores the latest waker of a pending future so that a notifier
// running on another goroutine can take and invoke it exactly once.
// The zero value is empty.
type AtomicWaker struct {
	slot atomic.Pointer[wakerSlot]
}

// Register replaces the stored waker with w.
func (a *AtomicWaker) Register(w Waker) {
	a.slot.Store(&wakerSlot{w: w})
}

// Wake takes the stored waker and invokes it. It reports false if no waker
// was registered since the last Wake.
func (a *AtomicWaker) Wake() bool {
	s := a.slot.Swap(nil)
	if s == nil {
		return false
	}
	s.w.Wake()
	return true
}
