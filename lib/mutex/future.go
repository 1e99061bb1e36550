//go:build !mutflex_noasync

package mutex

import "github.com/Aandreba/mutflex/lib/task"

// LockFuture is a pending LockAsync acquisition. It implements
// task.Future[struct{}] and resolves once the lock is held by the poller.
//
// A LockFuture must be driven by one task at a time. Once it resolved the
// caller owns the lock and must Unlock the mutex.
type LockFuture struct {
	m       *MovableMutex
	w       *waiter
	ready   bool
	dropped bool
}

// Poll attempts to acquire the lock. On failure the future registers its
// wake token with w and checks the lock once more, so a release that
// happened while registering is not missed.
func (f *LockFuture) Poll(w task.Waker) (struct{}, bool) {
	if f.ready {
		if Checked {
			fatal("poll of completed lock future")
		}
		return struct{}{}, true
	}
	if Checked && f.dropped {
		fatal("poll of dropped lock future")
	}

	if f.m.TryLock() {
		return f.complete()
	}

	if f.w == nil {
		f.w = &waiter{}
	}

	// refresh the waker first, a concurrent wake must see the latest one
	f.w.waker.Register(w)
	state := f.w.state.Load()
	if (state == waiterIdle || state == waiterWoken) && f.w.state.CompareAndSwap(state, waiterQueued) {
		f.m.queue.register(f.w)
	}

	if f.m.TryLock() {
		return f.complete()
	}
	return struct{}{}, false
}

// complete marks the future resolved. A still queued token turns inert and is
// discarded by the next wakeNext.
func (f *LockFuture) complete() (struct{}, bool) {
	f.ready = true
	if f.w != nil {
		f.w.state.Store(waiterDone)
	}
	return struct{}{}, true
}

// Await drives the future on the calling goroutine. The goroutine is parked
// (not spinning) while the lock is contended.
func (f *LockFuture) Await() {
	task.Block[struct{}](f)
}

// Drop abandons a pending acquisition. Its queued token becomes inert, and if
// a release already handed its notification to this future, the notification
// is passed on to the next waiter so it is not lost. Dropping a resolved
// future is a no-op (the lock stays held).
func (f *LockFuture) Drop() {
	if f.ready || f.dropped {
		return
	}
	f.dropped = true
	if f.w == nil {
		return
	}
	if f.w.state.Swap(waiterDone) == waiterWoken {
		f.m.queue.wakeNext()
	}
}
