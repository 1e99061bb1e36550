//go:build !mutflex_noasync

package mutex

import "github.com/Aandreba/mutflex/lib/task"

// LockAsync returns a future resolving to a Guard once the mutex is acquired.
func (m *Mutex[T]) LockAsync() *GuardFuture[T] {
	m.checkUsable()
	return &GuardFuture[T]{m: m, inner: m.raw.LockAsync()}
}

// GuardFuture is a pending Mutex.LockAsync. It implements
// task.Future[*Guard[T]].
type GuardFuture[T any] struct {
	m     *Mutex[T]
	inner *LockFuture
}

// Poll attempts the acquisition, see LockFuture.Poll.
func (f *GuardFuture[T]) Poll(w task.Waker) (*Guard[T], bool) {
	if _, ok := f.inner.Poll(w); !ok {
		return nil, false
	}
	return &Guard[T]{m: f.m}, true
}

// Await parks the calling goroutine until the mutex is acquired.
func (f *GuardFuture[T]) Await() *Guard[T] {
	return task.Block[*Guard[T]](f)
}

// Drop abandons a pending acquisition, see LockFuture.Drop.
func (f *GuardFuture[T]) Drop() {
	f.inner.Drop()
}
