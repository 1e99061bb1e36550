package mutex

import (
	"fmt"
	"sync/atomic"
)

// sharedBox is the state all handles of one Shared mutex point to.
type sharedBox[T any] struct {
	owners atomic.Int64
	mu     *Mutex[T]
}

// Shared is a reference-counted owning handle to a Mutex. Every handle
// obtained from NewShared or Clone counts as one owner until it is released;
// the data can only be taken out by the last owner.
type Shared[T any] struct {
	box      *sharedBox[T]
	released atomic.Bool
}

// NewShared creates a mutex protecting data, owned by the returned handle.
func NewShared[T any](data T) *Shared[T] {
	box := &sharedBox[T]{mu: New(data)}
	box.owners.Store(1)
	return &Shared[T]{box: box}
}

// Clone returns a new owning handle to the same mutex.
func (s *Shared[T]) Clone() *Shared[T] {
	box := s.get()
	box.owners.Add(1)
	return &Shared[T]{box: box}
}

// Release gives up this handle's ownership. The handle is unusable afterwards.
func (s *Shared[T]) Release() {
	if s.released.Swap(true) {
		if Checked {
			fatal("release of released shared handle")
		}
		return
	}
	s.box.owners.Add(-1)
}

// Mutex returns the shared mutex.
func (s *Shared[T]) Mutex() *Mutex[T] {
	return s.get().mu
}

// Owners returns the current number of owning handles.
func (s *Shared[T]) Owners() int64 {
	return s.get().owners.Load()
}

// TryIntoInner consumes the mutex and returns its data if this handle is the
// only owner left. Otherwise it returns an error with code RetCSharedOwners
// and the handle stays valid and unconsumed.
func (s *Shared[T]) TryIntoInner() (T, error) {
	box := s.get()
	if !box.owners.CompareAndSwap(1, 0) {
		var zero T
		return zero, NewError(RetCSharedOwners, fmt.Sprintf("%d owners remain", box.owners.Load()))
	}
	s.released.Store(true)
	return box.mu.IntoInner(), nil
}

func (s *Shared[T]) get() *sharedBox[T] {
	if Checked && s.released.Load() {
		fatal("use of released shared handle")
	}
	return s.box
}
