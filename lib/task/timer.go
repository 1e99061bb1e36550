package task

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Aandreba/mutflex/lib/util"
)

// timerQueue fires sleep futures from a single goroutine. Pending sleeps are
// kept in a MapHeap keyed by timer id with the deadline as priority.
type timerQueue struct {
	mu     sync.Mutex
	heap   *util.MapHeap[*sleepFuture]
	nextID uint64
	closed bool

	kick chan struct{}
	stop chan struct{}
	done chan struct{}
}

func newTimerQueue() *timerQueue {
	q := &timerQueue{
		heap: util.NewMapHeap[*sleepFuture](),
		kick: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go q.loop()
	return q
}

func (q *timerQueue) sleep(d time.Duration) *sleepFuture {
	return &sleepFuture{q: q, deadline: time.Now().Add(d)}
}

// add schedules s. It reports false once the queue has been closed.
func (q *timerQueue) add(s *sleepFuture) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.nextID++
	s.id = q.nextID
	q.heap.AddItem(s.id, uint64(s.deadline.UnixNano()), s)
	first, _ := q.heap.Peek()
	earliest := first.Key == s.id
	q.mu.Unlock()

	// a new earliest deadline needs the loop to re-arm its timer
	if earliest {
		select {
		case q.kick <- struct{}{}:
		default:
		}
	}
	return true
}

func (q *timerQueue) loop() {
	defer close(q.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		now := uint64(time.Now().UnixNano())

		var due []*sleepFuture
		q.mu.Lock()
		for {
			next, ok := q.heap.Peek()
			if !ok || next.Priority > now {
				break
			}
			_, _, s, _ := q.heap.PopMin()
			due = append(due, s)
		}
		next, hasNext := q.heap.Peek()
		var wait time.Duration
		if hasNext {
			wait = time.Duration(next.Priority - now)
		}
		q.mu.Unlock()

		// wakers run outside the lock, they may sleep again right away
		for _, s := range due {
			s.fire()
		}

		if hasNext {
			timer.Reset(wait)
		} else {
			timer.Stop()
		}

		select {
		case <-timer.C:
		case <-q.kick:
		case <-q.stop:
			timer.Stop()
			return
		}
	}
}

// close stops the loop and fires every pending sleep so nobody waits forever.
func (q *timerQueue) close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	close(q.stop)
	<-q.done

	q.mu.Lock()
	var rest []*sleepFuture
	for {
		_, _, s, ok := q.heap.PopMin()
		if !ok {
			break
		}
		rest = append(rest, s)
	}
	q.mu.Unlock()

	for _, s := range rest {
		s.fire()
	}
}

// sleepFuture becomes ready at its deadline.
type sleepFuture struct {
	q        *timerQueue
	deadline time.Time
	id       uint64
	queued   bool
	fired    atomic.Bool
	waker    AtomicWaker
}

// Poll implements Future.
func (s *sleepFuture) Poll(w Waker) (struct{}, bool) {
	if s.fired.Load() || !time.Now().Before(s.deadline) {
		return struct{}{}, true
	}

	s.waker.Register(w)
	if !s.queued {
		s.queued = true
		if !s.q.add(s) {
			return struct{}{}, true
		}
	}

	// the timer may have fired between the check above and Register
	if s.fired.Load() {
		return struct{}{}, true
	}
	return struct{}{}, false
}

func (s *sleepFuture) fire() {
	s.fired.Store(true)
	s.waker.Wake()
}
