package mutex

import "sync/atomic"

// --------------------------------------------------------------------------
// Mutex
// --------------------------------------------------------------------------

// Mutex pairs a MovableMutex with the data it protects. The data is only
// reachable through the Guard returned by a successful acquisition, and
// releasing the Guard is the only way to unlock the mutex.
type Mutex[T any] struct {
	raw      MovableMutex
	consumed atomic.Bool
	data     T
}

// New creates an unlocked mutex protecting data.
func New[T any](data T) *Mutex[T] {
	return WithCapacity(data, DefaultQueueCapacity)
}

// WithCapacity creates an unlocked mutex whose wait queue reserves room for
// hint async waiters on first use.
func WithCapacity[T any](data T, hint int) *Mutex[T] {
	m := &Mutex[T]{data: data}
	m.raw.queue.setCapacity(hint)
	return m
}

// TryLock acquires the mutex if it is free. The boolean is false (and the
// guard nil) when the mutex is held by someone else.
func (m *Mutex[T]) TryLock() (*Guard[T], bool) {
	m.checkUsable()
	if !m.raw.TryLock() {
		return nil, false
	}
	return &Guard[T]{m: m}, true
}

// Lock spins until the mutex is acquired.
func (m *Mutex[T]) Lock() *Guard[T] {
	m.checkUsable()
	m.raw.Lock()
	return &Guard[T]{m: m}
}

// Do runs fn with exclusive access to the data.
func (m *Mutex[T]) Do(fn func(v *T)) {
	g := m.Lock()
	defer g.Unlock()
	fn(g.Value())
}

// IntoInner consumes the mutex and returns the data. It waits for an
// outstanding guard to be released, then keeps the lock forever: the mutex
// must not be used afterwards.
func (m *Mutex[T]) IntoInner() T {
	m.checkUsable()
	m.raw.Lock()
	m.consumed.Store(true)

	v := m.data
	var zero T
	m.data = zero
	return v
}

// IsLocked reports a racy snapshot of the lock state. Introspection only.
func (m *Mutex[T]) IsLocked() bool {
	return m.raw.IsLocked()
}

func (m *Mutex[T]) checkUsable() {
	if Checked && m.consumed.Load() {
		fatal("use of mutex after IntoInner")
	}
}

// --------------------------------------------------------------------------
// Guard
// --------------------------------------------------------------------------

// Guard is the proof of ownership of a locked Mutex. At most one Guard exists
// per Mutex at any instant. It gives read and write access to the protected
// data until Unlock is called; a Guard is not safe for concurrent use.
//
// Typical use:
//
//	g := m.Lock()
//	defer g.Unlock()
//	g.Update(func(v *int) { *v++ })
type Guard[T any] struct {
	m *Mutex[T]
}

// Get returns a copy of the protected data.
func (g *Guard[T]) Get() T {
	return g.mutex().data
}

// Set replaces the protected data.
func (g *Guard[T]) Set(v T) {
	g.mutex().data = v
}

// Update calls fn with a pointer to the protected data.
func (g *Guard[T]) Update(fn func(v *T)) {
	fn(&g.mutex().data)
}

// Value returns a pointer to the protected data. The pointer must not be used
// after Unlock.
func (g *Guard[T]) Value() *T {
	return &g.mutex().data
}

// Unlock releases the mutex and wakes the next async waiter. The guard is
// unusable afterwards.
func (g *Guard[T]) Unlock() {
	m := g.mutex()
	g.m = nil
	m.raw.Unlock()
}

func (g *Guard[T]) mutex() *Mutex[T] {
	if Checked && g.m == nil {
		fatal("use of released guard")
	}
	return g.m
}
