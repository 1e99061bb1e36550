//go:build !mutflex_noasync

package mutex

// AsyncEnabled reports whether the wait queue and the LockAsync futures are
// compiled in. Build with -tags mutflex_noasync for a plain spin lock.
const AsyncEnabled = true

type waitList = WaitQueue

// Queue exposes the wait queue for introspection (Len/Cap).
func (m *MovableMutex) Queue() *WaitQueue {
	return &m.queue
}

// LockAsync returns a future that resolves once the lock has been acquired.
// The future suspends the polling task instead of spinning.
func (m *MovableMutex) LockAsync() *LockFuture {
	return &LockFuture{m: m}
}
