package task

// Block drives f to completion on the calling goroutine and returns its
// value. Between polls the goroutine is parked on a channel until f's waker
// fires, so a blocked goroutine does not consume a thread.
func Block[T any](f Future[T]) T {
	signal := make(chan struct{}, 1)
	w := WakerFunc(func() {
		// coalesce: one pending signal is enough for the next poll
		select {
		case signal <- struct{}{}:
		default:
		}
	})

	for {
		if v, ok := f.Poll(w); ok {
			return v
		}
		<-signal
	}
}
