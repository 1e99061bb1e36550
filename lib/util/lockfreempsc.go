// Package util
//
// This file provides an unbounded lock-free Multi-Producer Single-Consumer queue.
//
// Features and Guarantees:
//
//   - Lock-Free producers: Push only uses atomic CAS on the tail, any number of
//     goroutines may push concurrently (e.g. wakers firing from anywhere)
//   - Unbounded: a push never fails for lack of space, only after Close
//   - Channel based consumption: values are delivered on Recv() by a single
//     internal consumer goroutine, the channel itself may be drained by many
//     receivers (the executor workers)
//   - FIFO per producer: values pushed by one goroutine are delivered in order
package util

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// node is one element of the linked list. The list always starts with a
// sentinel whose value has already been consumed.
type node[T any] struct {
	value *T
	next  atomic.Pointer[node[T]]
}

// LockFreeMPSC is an unbounded multi-producer single-consumer queue built on
// an atomically linked list.
type LockFreeMPSC[T any] struct {
	head     atomic.Pointer[node[T]]
	tail     atomic.Pointer[node[T]]
	out      chan *T
	consumer sync.WaitGroup
	closed   atomic.Bool

	// the consumer sleeps on cond while the list is empty
	mu   sync.Mutex
	cond *sync.Cond
}

// NewLockFreeMPSC creates a queue and starts its consumer goroutine.
func NewLockFreeMPSC[T any]() *LockFreeMPSC[T] {
	sentinel := &node[T]{}

	q := &LockFreeMPSC[T]{
		out: make(chan *T),
	}
	q.cond = sync.NewCond(&q.mu)
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	q.consumer.Add(1)
	go q.consume()

	return q
}

// Push appends value. It returns false if value is nil or the queue is closed.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *LockFreeMPSC[T]) Push(value *T) bool {
	if value == nil || q.closed.Load() {
		return false
	}

	newNode := &node[T]{value: value}
	var backoff uint8

	for {
		tailNode := q.tail.Load()
		next := tailNode.next.Load()

		if next == nil {
			if tailNode.next.CompareAndSwap(nil, newNode) {
				// losing this CAS is fine, another producer already advanced the tail
				q.tail.CompareAndSwap(tailNode, newNode)

				// take the lock so the signal cannot fall between the
				// consumer's emptiness check and its Wait
				q.mu.Lock()
				q.cond.Signal()
				q.mu.Unlock()
				return true
			}
		} else {
			// help a producer that linked its node but has not moved the tail yet
			q.tail.CompareAndSwap(tailNode, next)
		}

		// exponential backoff against a thundering herd of producers
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// consume moves values from the list to the out channel until the queue is
// closed and drained.
func (q *LockFreeMPSC[T]) consume() {
	defer q.consumer.Done()
	defer close(q.out)

	for {
		hasItems := false

		for {
			head := q.head.Load()
			next := head.next.Load()
			if next == nil {
				break
			}
			hasItems = true

			value := next.value
			// next becomes the new sentinel, head is garbage now
			q.head.Store(next)
			q.out <- value
			next.value = nil
		}

		if !hasItems && q.closed.Load() {
			return
		}

		if !hasItems {
			q.mu.Lock()
			if q.head.Load().next.Load() == nil && !q.closed.Load() {
				q.cond.Wait()
			}
			q.mu.Unlock()
		}
	}
}

// Recv returns the channel the queued values are delivered on. It is closed
// once the queue has been closed and every value delivered.
func (q *LockFreeMPSC[T]) Recv() <-chan *T {
	return q.out
}

// Close rejects further pushes. Values already queued are still delivered.
func (q *LockFreeMPSC[T]) Close() {
	q.closed.Store(true)

	q.mu.Lock()
	q.cond.Signal()
	q.mu.Unlock()
}

// IsClosed reports whether Close has been called.
func (q *LockFreeMPSC[T]) IsClosed() bool {
	return q.closed.Load()
}

// Len counts the values not yet handed to the consumer goroutine. O(n),
// debugging only.
func (q *LockFreeMPSC[T]) Len() int {
	count := 0
	current := q.head.Load()
	for next := current.next.Load(); next != nil; next = next.next.Load() {
		count++
	}
	return count
}
