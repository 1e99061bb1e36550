//go:build !mutflex_noasync

package mutex

import (
	"sync"
	"sync/atomic"

	"github.com/Aandreba/mutflex/lib/task"
)

// minQueueCapacity is the size of the first ring allocation when no capacity
// hint was given.
const minQueueCapacity = 8

// --------------------------------------------------------------------------
// Waiter (wake token)
// --------------------------------------------------------------------------

// Waiter states. A waiter is in the queue exactly while it is waiterQueued.
const (
	waiterIdle   int32 = iota // not queued, never woken
	waiterQueued              // linked into a WaitQueue
	waiterWoken               // popped and its waker invoked
	waiterDone                // owner acquired the lock or dropped its future
)

// waiter is the wake token a pending LockFuture places into the WaitQueue.
// One waiter belongs to one future for its whole life, so the queue can never
// hold two live tokens for the same task.
type waiter struct {
	state atomic.Int32
	waker task.AtomicWaker
}

// wake hands the token's notification to its task. It reports false if the
// token was inert (owner done), in which case the caller should try the next.
func (w *waiter) wake() bool {
	if !w.state.CompareAndSwap(waiterQueued, waiterWoken) {
		return false
	}
	w.waker.Wake()
	return true
}

// --------------------------------------------------------------------------
// WaitQueue
// --------------------------------------------------------------------------

// WaitQueue is the FIFO of wake tokens of async waiters. It is guarded by its
// own short-held lock which is never held while a waker runs, since a waker
// may synchronously re-enter the queue (e.g. an inline re-poll that fails and
// registers again).
//
// The queue is a growable ring. The capacity hint only sizes the first
// allocation, registration never fails for lack of space.
//
// The zero value is an empty queue that allocates on first use.
type WaitQueue struct {
	mu   sync.Mutex
	buf  []*waiter
	head int
	n    int
	hint int
}

// setCapacity records the initial reservation. Only valid before first use.
func (q *WaitQueue) setCapacity(hint int) {
	q.mu.Lock()
	q.hint = hint
	q.mu.Unlock()
}

// register appends w to the tail. Amortised O(1).
func (q *WaitQueue) register(w *waiter) {
	q.mu.Lock()
	if q.n == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.n)%len(q.buf)] = w
	q.n++
	q.mu.Unlock()
}

// grow doubles the ring (or performs the first allocation). Caller holds mu.
func (q *WaitQueue) grow() {
	size := len(q.buf) * 2
	if size == 0 {
		size = max(q.hint, minQueueCapacity)
	}

	buf := make([]*waiter, size)
	for i := 0; i < q.n; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}

// pop removes and returns the head, or nil if the queue is empty.
func (q *WaitQueue) pop() *waiter {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.n == 0 {
		return nil
	}
	w := q.buf[q.head]
	q.buf[q.head] = nil // help go gc
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return w
}

// wakeNext notifies the earliest registered live waiter. Inert tokens (owner
// already acquired or dropped its future) are discarded on the way. The wake
// call itself happens after the queue lock has been released.
func (q *WaitQueue) wakeNext() {
	for {
		w := q.pop()
		if w == nil {
			return
		}
		if w.wake() {
			return
		}
	}
}

// Len returns the number of queued tokens, including inert ones not yet
// discarded. Introspection only.
func (q *WaitQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

// Cap returns the currently allocated ring size. Introspection only.
func (q *WaitQueue) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}
