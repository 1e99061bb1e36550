package task

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Waker is the handle a pending future keeps to get its task polled again.
// Wake may be called from any goroutine, any number of times; waking a task
// that already finished or was abandoned must be a harmless no-op.
type Waker interface {
	Wake()
}

// Future is a computation that completes asynchronously. Poll advances it
// and reports whether it is ready. A future that is not ready must have
// arranged for w to be woken once progress is possible; the owner then polls
// it again. A future is polled by one task at a time and not after it
// reported ready.
type Future[T any] interface {
	Poll(w Waker) (value T, ready bool)
}

// WakerFunc adapts a plain function to the Waker interface.
type WakerFunc func()

// Wake calls f.
func (f WakerFunc) Wake() { f() }

// FutureFunc adapts a poll function to the Future interface.
type FutureFunc[T any] func(w Waker) (T, bool)

// Poll calls f.
func (f FutureFunc[T]) Poll(w Waker) (T, bool) { return f(w) }
