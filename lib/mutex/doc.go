// Package mutex implements a mutual exclusion lock that can be acquired both by
// blocking callers and by cooperatively scheduled async tasks at the same time.
//
// Core Functionality:
//   - TryLock: a single compare-and-set, never blocks
//   - Lock: spins the calling goroutine until the lock is acquired
//   - LockAsync: a poll based future (see package task) that suspends the
//     polling task and is resumed through a FIFO wait queue
//   - Mutex[T] / Guard[T]: ties the protected data to a scoped guard
//
// Implementation Approach:
//
//	The lock state is a single atomic word holding one of two sentinel values
//	(unlocked, locked). Blocking and async callers contend on the same word,
//	so both kinds of callers correctly exclude each other.
//
//	- Acquisition: TryLock performs one CAS unlocked -> locked. Lock repeats
//	  it with runtime.Gosched between attempts.
//
//	- Async Acquisition: LockFuture.Poll tries the CAS; on failure it
//	  registers its wake token in the WaitQueue and re-checks the lock once
//	  more. The re-check closes the window in which a release could find the
//	  queue empty and the waiter would sleep until an unrelated later release.
//
//	- Release: Unlock clears the flag and pops the earliest live token from
//	  the queue, waking it after the queue lock was released. The hand-off is
//	  advisory only, the woken task competes with all other acquirers again.
//
// Ordering Guarantees:
//
//	Among async waiters whose registration completed before a release, wakes
//	happen in registration order. There is no ordering between spinning
//	callers and queued waiters, or among spinning callers.
//
// Build Configuration:
//
//	- mutflex_noasync: removes the WaitQueue and all futures, leaving a pure
//	  spin lock without any queue allocation (see AsyncEnabled)
//	- mutflex_word64 / mutflex_wordptr: select the width of the atomic flag
//	  word, 32 bit by default (see WordBits)
//	- mutflex_unchecked: removes the contract checks (see Checked)
//
// Contract Violations:
//
//	Unlocking a mutex that is not locked, using a Guard after Unlock, polling
//	a completed or dropped future and using a consumed Mutex are programming
//	errors. Checked builds terminate the process immediately; unchecked
//	builds do not defend against them.
//
// Usage Example:
//
//	m := mutex.New(0)
//
//	// blocking
//	g := m.Lock()
//	g.Update(func(v *int) { *v++ })
//	g.Unlock()
//
//	// async, parked goroutine
//	g = m.LockAsync().Await()
//	g.Set(g.Get() + 1)
//	g.Unlock()
//
//	// async, executor task
//	h, _ := task.Spawn(exec, task.Map[*mutex.Guard[int]](m.LockAsync(), func(g *mutex.Guard[int]) int {
//	    defer g.Unlock()
//	    return g.Get()
//	}))
package mutex
