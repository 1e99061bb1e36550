// Package task implements the poll based future protocol that async lock
// acquisition is built on, together with a small cooperative executor.
//
// Core Concepts:
//   - Future[T]: a computation advanced by Poll(w Waker). A future that is not
//     ready arranges for w to be woken once progress is possible.
//   - Waker: the handle a pending future keeps to get its task polled again.
//     Waking a finished or abandoned task is always a harmless no-op.
//   - AtomicWaker: a single waker slot that a notifier on another goroutine
//     can take and invoke exactly once.
//
// Driving Futures:
//
//	- Block: drives a future on the calling goroutine, parking it on a
//	  channel between polls. The Go runtime is the scheduler here.
//
//	- Executor: a fixed pool of worker goroutines draining a lock-free run
//	  queue. A pending task does not occupy a worker; its waker pushes it
//	  back onto the run queue. Wakes arriving while the task is being polled
//	  cause one more poll, duplicate wakes coalesce.
//
// Composition:
//
//	Ready, Map and Then build small state machines out of futures, e.g.
//
//	    f := task.Then[*mutex.Guard[int]](m.LockAsync(), func(g *mutex.Guard[int]) task.Future[int] {
//	        return task.Map(exec.Sleep(time.Millisecond), func(struct{}) int {
//	            defer g.Unlock()
//	            return g.Get()
//	        })
//	    })
//	    h, err := task.Spawn(exec, f)
//
// Timers:
//
//	Executor.Sleep returns a future backed by the executor's timer queue,
//	a single goroutine firing deadlines from a min-heap.
package task
