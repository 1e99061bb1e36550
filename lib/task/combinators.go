package task

// Ready returns a future that is immediately ready with v.
func Ready[T any](v T) Future[T] {
	return FutureFunc[T](func(Waker) (T, bool) {
		return v, true
	})
}

// Map returns a future that resolves to fn applied to the result of f.
func Map[A, B any](f Future[A], fn func(A) B) Future[B] {
	return FutureFunc[B](func(w Waker) (B, bool) {
		a, ok := f.Poll(w)
		if !ok {
			var zero B
			return zero, false
		}
		return fn(a), true
	})
}

// Then chains two futures: once f resolves, next is called with its result
// and the returned future is driven to completion.
func Then[A, B any](f Future[A], next func(A) Future[B]) Future[B] {
	var second Future[B]
	return FutureFunc[B](func(w Waker) (B, bool) {
		if second == nil {
			a, ok := f.Poll(w)
			if !ok {
				var zero B
				return zero, false
			}
			second = next(a)
		}
		return second.Poll(w)
	})
}
