package mutex

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// DefaultQueueCapacity is the wait queue reservation used by NewMovableMutex
// and New.
const DefaultQueueCapacity = 64

// MovableMutex is a lock that is not tied to any data. It is shared by
// blocking callers (Lock spins) and async callers (LockAsync suspends) which
// contend on the same flag, so a goroutine using Lock and a task using
// LockAsync exclude each other.
//
// Unlock is a trusted-caller operation: the caller must hold the lock. Prefer
// Mutex, whose Guard is the only caller that can be trusted by construction.
//
// The zero value is an unlocked mutex. A MovableMutex must not be copied after
// first use.
type MovableMutex struct {
	flag atomicFlag
	// keep the hot flag off the cache line of the queue lock
	_     cpu.CacheLinePad
	queue waitList
}

// NewMovableMutex creates an unlocked mutex with the default queue capacity.
func NewMovableMutex() *MovableMutex {
	return NewMovableMutexWithCapacity(DefaultQueueCapacity)
}

// NewMovableMutexWithCapacity creates an unlocked mutex whose wait queue
// reserves room for hint waiters on first use. The hint is not a limit.
func NewMovableMutexWithCapacity(hint int) *MovableMutex {
	m := &MovableMutex{}
	m.queue.setCapacity(hint)
	return m
}

// TryLock attempts to acquire the lock without blocking and reports whether it
// succeeded.
func (m *MovableMutex) TryLock() bool {
	return m.flag.compareAndSet(unlocked, locked)
}

// Lock spins on the calling goroutine until the lock is acquired. There is no
// backoff and no fairness, so it is meant for short critical sections.
func (m *MovableMutex) Lock() {
	for !m.TryLock() {
		runtime.Gosched()
	}
}

// Unlock releases the lock and notifies the earliest queued async waiter. The
// notification is advisory: the woken task races every other acquirer again.
//
// The caller must hold the lock. Checked builds abort otherwise.
func (m *MovableMutex) Unlock() {
	m.flag.forceSet(unlocked)
	m.queue.wakeNext()
}

// IsLocked reports a racy snapshot of the lock state. Introspection only.
func (m *MovableMutex) IsLocked() bool {
	return m.flag.isLocked()
}
