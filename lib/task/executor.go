package task

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Aandreba/mutflex/lib/util"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/sourcegraph/conc"
)

var (
	plog = logger.GetLogger("task")

	// ErrExecutorClosed is returned when spawning on a closed Executor.
	ErrExecutorClosed = errors.New("task: executor is closed")
)

// Task states. A task is in the run queue exactly while it is stateScheduled.
const (
	stateIdle      int32 = iota // waiting for a wake
	stateScheduled              // queued to be polled
	stateRunning                // being polled by a worker
	stateNotified               // woken while running, poll again
	stateDone                   // completed, wakes are ignored
)

// --------------------------------------------------------------------------
// Task
// --------------------------------------------------------------------------

// job is a spawned future together with its scheduling state. The job is its
// own Waker.
type job struct {
	id    uint64
	state atomic.Int32
	poll  func(w Waker) bool
	exec  *Executor
}

// Wake schedules the job for another poll. Duplicate wakes coalesce, a wake
// during a poll makes the worker poll once more, and waking a finished job
// does nothing.
func (j *job) Wake() {
	for {
		switch j.state.Load() {
		case stateIdle:
			if j.state.CompareAndSwap(stateIdle, stateScheduled) {
				j.exec.schedule(j)
				return
			}
		case stateRunning:
			if j.state.CompareAndSwap(stateRunning, stateNotified) {
				return
			}
		default:
			return
		}
	}
}

// --------------------------------------------------------------------------
// Executor
// --------------------------------------------------------------------------

// Executor is a cooperative scheduler polling spawned futures on a fixed set
// of worker goroutines. Pending tasks do not occupy a worker; they are put
// back on the run queue when their waker fires.
type Executor struct {
	runq      *util.LockFreeMPSC[job]
	workers   conc.WaitGroup
	timers    *timerQueue
	nextID    atomic.Uint64
	pending   atomic.Int64
	size      int
	closeOnce sync.Once
}

// NewExecutor starts an executor with the given number of workers. A value
// <= 0 uses GOMAXPROCS.
func NewExecutor(workers int) *Executor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	e := &Executor{
		runq:   util.NewLockFreeMPSC[job](),
		timers: newTimerQueue(),
		size:   workers,
	}
	for i := 0; i < workers; i++ {
		e.workers.Go(e.work)
	}

	plog.Debugf("executor started with %d workers", workers)
	return e
}

// work polls jobs from the run queue until the queue is closed and drained.
func (e *Executor) work() {
	for j := range e.runq.Recv() {
		e.run(j)
	}
}

// run polls j until it completes or has nothing more to do.
func (e *Executor) run(j *job) {
	j.state.Store(stateRunning)
	for {
		if j.poll(j) {
			j.state.Store(stateDone)
			e.pending.Add(-1)
			return
		}
		if j.state.CompareAndSwap(stateRunning, stateIdle) {
			return
		}
		// woken while running
		j.state.Store(stateRunning)
	}
}

// schedule puts j on the run queue.
func (e *Executor) schedule(j *job) bool {
	if !e.runq.Push(j) {
		plog.Warningf("dropping wake of task %d, executor is closed", j.id)
		return false
	}
	return true
}

// Spawn starts driving f on e and returns a handle to its result.
func Spawn[T any](e *Executor, f Future[T]) (*JoinHandle[T], error) {
	if e.runq.IsClosed() {
		return nil, ErrExecutorClosed
	}

	h := &JoinHandle[T]{}
	j := &job{
		id:   e.nextID.Add(1),
		exec: e,
	}
	j.poll = func(w Waker) bool {
		v, ok := f.Poll(w)
		if ok {
			h.complete(v)
		}
		return ok
	}
	j.state.Store(stateScheduled)

	e.pending.Add(1)
	if !e.runq.Push(j) {
		e.pending.Add(-1)
		return nil, ErrExecutorClosed
	}
	return h, nil
}

// Sleep returns a future that becomes ready once d has elapsed.
func (e *Executor) Sleep(d time.Duration) Future[struct{}] {
	return e.timers.sleep(d)
}

// Workers returns the number of worker goroutines.
func (e *Executor) Workers() int {
	return e.size
}

// Pending returns the number of spawned tasks that have not completed yet.
func (e *Executor) Pending() int64 {
	return e.pending.Load()
}

// Close stops accepting new tasks, lets the workers drain the run queue and
// waits for them. Tasks still pending afterwards are never polled again.
// Close is idempotent.
func (e *Executor) Close() {
	e.closeOnce.Do(func() {
		e.runq.Close()
		e.workers.Wait()
		e.timers.close()

		if n := e.pending.Load(); n > 0 {
			plog.Warningf("executor closed with %d unfinished tasks", n)
		}
	})
}

// --------------------------------------------------------------------------
// JoinHandle
// --------------------------------------------------------------------------

// JoinHandle gives access to the result of a spawned task. It is itself a
// future, so tasks can await each other.
type JoinHandle[T any] struct {
	mu    sync.Mutex
	done  bool
	value T
	waker Waker
}

func (h *JoinHandle[T]) complete(v T) {
	h.mu.Lock()
	h.value = v
	h.done = true
	w := h.waker
	h.waker = nil
	h.mu.Unlock()

	if w != nil {
		w.Wake()
	}
}

// Poll reports the task result once it is available. Only the waker of the
// most recent poll is notified.
func (h *JoinHandle[T]) Poll(w Waker) (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.done {
		return h.value, true
	}
	h.waker = w
	var zero T
	return zero, false
}

// Wait parks the calling goroutine until the task completed.
func (h *JoinHandle[T]) Wait() T {
	return Block[T](h)
}

// Done reports whether the task completed.
func (h *JoinHandle[T]) Done() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}
