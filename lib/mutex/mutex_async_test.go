//go:build !mutflex_noasync

package mutex

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Aandreba/mutflex/lib/task"
)

// countingWaker counts how often it was woken
type countingWaker struct {
	n atomic.Int32
}

func (w *countingWaker) Wake() { w.n.Add(1) }

// orderWaker appends its id to a shared log when woken
type orderWaker struct {
	id  int
	mu  *sync.Mutex
	log *[]int
}

func (w orderWaker) Wake() {
	w.mu.Lock()
	*w.log = append(*w.log, w.id)
	w.mu.Unlock()
}

// waitTimeout waits for wg or fails the test
func waitTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("Timeout after %v", d)
	}
}

// TestLockFutureUncontended tests that an uncontended poll resolves without queueing
func TestLockFutureUncontended(t *testing.T) {
	m := NewMovableMutex()
	w := &countingWaker{}

	if _, ok := m.LockAsync().Poll(w); !ok {
		t.Fatal("poll of an uncontended future should be ready")
	}
	if m.Queue().Len() != 0 {
		t.Errorf("Queue should be empty, has %d tokens", m.Queue().Len())
	}
	if !m.IsLocked() {
		t.Error("resolved future should hold the lock")
	}
	m.Unlock()
}

// TestLockFutureRegistersOnce tests that repeated polls never duplicate the wake token
func TestLockFutureRegistersOnce(t *testing.T) {
	m := NewMovableMutex()
	m.Lock()

	w := &countingWaker{}
	f := m.LockAsync()
	for i := 0; i < 3; i++ {
		if _, ok := f.Poll(w); ok {
			t.Fatal("poll should be pending while the lock is held")
		}
	}
	if m.Queue().Len() != 1 {
		t.Fatalf("Expected 1 queued token, got %d", m.Queue().Len())
	}

	m.Unlock()
	if w.n.Load() != 1 {
		t.Fatalf("Expected 1 wake, got %d", w.n.Load())
	}
	if m.Queue().Len() != 0 {
		t.Errorf("Queue should be empty after the wake, has %d tokens", m.Queue().Len())
	}

	if _, ok := f.Poll(w); !ok {
		t.Fatal("poll after the wake should acquire the free lock")
	}
	m.Unlock()
}

// TestWakeOrderFIFO tests that waiters are notified in registration order
func TestWakeOrderFIFO(t *testing.T) {
	const waiters = 5

	m := NewMovableMutex()
	m.Lock()

	var mu sync.Mutex
	var log []int
	futures := make([]*LockFuture, waiters)
	wakers := make([]orderWaker, waiters)
	for i := range futures {
		futures[i] = m.LockAsync()
		wakers[i] = orderWaker{id: i, mu: &mu, log: &log}
		if _, ok := futures[i].Poll(wakers[i]); ok {
			t.Fatalf("future %d should be pending", i)
		}
	}

	// every release hands off to the next waiter, which acquires and releases
	m.Unlock()
	for i := range futures {
		if _, ok := futures[i].Poll(wakers[i]); !ok {
			t.Fatalf("future %d should acquire after its wake", i)
		}
		m.Unlock()
	}

	if len(log) != waiters {
		t.Fatalf("Expected %d wakes, got %v", waiters, log)
	}
	for i, id := range log {
		if id != i {
			t.Errorf("wake %d went to waiter %d, want FIFO order: %v", i, id, log)
		}
	}
}

// TestDroppedFutureIsSkipped tests that an abandoned token does not swallow a hand-off
func TestDroppedFutureIsSkipped(t *testing.T) {
	m := NewMovableMutex()
	m.Lock()

	w1, w2 := &countingWaker{}, &countingWaker{}
	f1, f2 := m.LockAsync(), m.LockAsync()
	f1.Poll(w1)
	f2.Poll(w2)

	f1.Drop()
	m.Unlock()

	if w1.n.Load() != 0 {
		t.Error("dropped future should not be woken")
	}
	if w2.n.Load() != 1 {
		t.Errorf("next waiter should be woken once, got %d", w2.n.Load())
	}
	if m.Queue().Len() != 0 {
		t.Errorf("Queue should be empty, has %d tokens", m.Queue().Len())
	}
}

// TestDropAfterWakeForwards tests that a woken but abandoned future passes its wake on
func TestDropAfterWakeForwards(t *testing.T) {
	m := NewMovableMutex()
	m.Lock()

	w1, w2 := &countingWaker{}, &countingWaker{}
	f1, f2 := m.LockAsync(), m.LockAsync()
	f1.Poll(w1)
	f2.Poll(w2)

	m.Unlock()
	if w1.n.Load() != 1 || w2.n.Load() != 0 {
		t.Fatalf("only the first waiter should be woken (w1=%d, w2=%d)", w1.n.Load(), w2.n.Load())
	}

	f1.Drop()
	if w2.n.Load() != 1 {
		t.Errorf("dropping a woken future should wake the next waiter, got %d", w2.n.Load())
	}

	// dropping twice and dropping a resolved future are no-ops
	f1.Drop()
	if _, ok := f2.Poll(w2); !ok {
		t.Fatal("second waiter should acquire the free lock")
	}
	f2.Drop()
	if !m.IsLocked() {
		t.Error("dropping a resolved future must not release the lock")
	}
	m.Unlock()
}

// TestQueueCapacityHint tests that the hint sizes the first allocation only
func TestQueueCapacityHint(t *testing.T) {
	m := WithCapacity(0, 2)
	if m.raw.Queue().Cap() != 0 {
		t.Fatalf("queue should allocate lazily, has capacity %d", m.raw.Queue().Cap())
	}

	g := m.Lock()
	futures := make([]*GuardFuture[int], 5)
	for i := range futures {
		futures[i] = m.LockAsync()
		futures[i].Poll(&countingWaker{})
	}

	q := m.raw.Queue()
	if q.Len() != 5 {
		t.Errorf("Expected 5 queued tokens, got %d", q.Len())
	}
	if q.Cap() < 5 {
		t.Errorf("queue should have grown past the hint, capacity %d", q.Cap())
	}

	for _, f := range futures {
		f.Drop()
	}
	g.Unlock()
	if q.Len() != 0 {
		t.Errorf("inert tokens should be discarded, %d left", q.Len())
	}
}

// TestGuardFutureAwait tests that Await parks until the holder releases
func TestGuardFutureAwait(t *testing.T) {
	m := New(1)
	g := m.Lock()

	result := make(chan int)
	go func() {
		g := m.LockAsync().Await()
		g.Update(func(v *int) { *v *= 10 })
		v := g.Get()
		g.Unlock()
		result <- v
	}()

	select {
	case <-result:
		t.Fatal("Await returned while the lock was held")
	case <-time.After(20 * time.Millisecond):
	}

	g.Set(2)
	g.Unlock()

	select {
	case v := <-result:
		if v != 20 {
			t.Errorf("Expected 20, got %d", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for Await")
	}
}

// TestScenarioThreadAndTask tests a goroutine and an executor task incrementing 1 -> 3
func TestScenarioThreadAndTask(t *testing.T) {
	exec := task.NewExecutor(2)
	defer exec.Close()

	m := New(1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		g := m.Lock()
		g.Update(func(v *int) { *v++ })
		g.Unlock()
	}()

	h, err := task.Spawn(exec, task.Map[*Guard[int]](m.LockAsync(), func(g *Guard[int]) struct{} {
		g.Update(func(v *int) { *v++ })
		g.Unlock()
		return struct{}{}
	}))
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	h.Wait()
	waitTimeout(t, &wg, time.Second)

	g := m.Lock()
	defer g.Unlock()
	if v := g.Get(); v != 3 {
		t.Errorf("Expected 3, got %d", v)
	}
}

// TestScenarioMixed tests a blocking goroutine against an awaiting one, 1 -> 3
func TestScenarioMixed(t *testing.T) {
	m := New(1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		g := m.Lock()
		g.Update(func(v *int) { *v++ })
		g.Unlock()
	}()

	g := m.LockAsync().Await()
	g.Update(func(v *int) { *v++ })
	g.Unlock()

	waitTimeout(t, &wg, time.Second)

	g = m.Lock()
	defer g.Unlock()
	if v := g.Get(); v != 3 {
		t.Errorf("Expected 3, got %d", v)
	}
}

// TestScenarioStress tests many executor tasks holding the lock across a sleep
func TestScenarioStress(t *testing.T) {
	tasks := 5000
	if testing.Short() {
		tasks = 500
	}

	exec := task.NewExecutor(8)
	defer exec.Close()

	m := New(0)
	rnd := rand.New(rand.NewPCG(1, 2))

	var inside atomic.Int32
	handles := make([]*task.JoinHandle[struct{}], tasks)
	for i := range handles {
		hold := time.Duration(rnd.IntN(20)) * time.Microsecond

		f := task.Then[*Guard[int]](m.LockAsync(), func(g *Guard[int]) task.Future[struct{}] {
			if n := inside.Add(1); n != 1 {
				t.Errorf("%d holders inside the critical section", n)
			}
			return task.Map(exec.Sleep(hold), func(struct{}) struct{} {
				g.Update(func(v *int) { *v++ })
				inside.Add(-1)
				g.Unlock()
				return struct{}{}
			})
		})

		h, err := task.Spawn(exec, f)
		if err != nil {
			t.Fatalf("Spawn() error = %v", err)
		}
		handles[i] = h
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, h := range handles {
			h.Wait()
		}
	}()
	waitTimeout(t, &wg, 60*time.Second)

	if v := m.IntoInner(); v != tasks {
		t.Errorf("Expected %d, got %d", tasks, v)
	}
}

// TestMutualExclusionAllCallers tests spinning, parked and executor callers together
func TestMutualExclusionAllCallers(t *testing.T) {
	const perKind = 8
	const iterations = 200

	exec := task.NewExecutor(4)
	defer exec.Close()

	m := New(0)
	var inside atomic.Int32
	enter := func() {
		if n := inside.Add(1); n != 1 {
			t.Errorf("%d holders inside the critical section", n)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < perKind; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				g := m.Lock()
				enter()
				g.Update(func(v *int) { *v++ })
				inside.Add(-1)
				g.Unlock()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				g := m.LockAsync().Await()
				enter()
				g.Update(func(v *int) { *v++ })
				inside.Add(-1)
				g.Unlock()
			}
		}()
	}

	handles := make([]*task.JoinHandle[struct{}], 0, perKind*iterations)
	for i := 0; i < perKind*iterations; i++ {
		h, err := task.Spawn(exec, task.Map[*Guard[int]](m.LockAsync(), func(g *Guard[int]) struct{} {
			enter()
			g.Update(func(v *int) { *v++ })
			inside.Add(-1)
			g.Unlock()
			return struct{}{}
		}))
		if err != nil {
			t.Fatalf("Spawn() error = %v", err)
		}
		handles = append(handles, h)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, h := range handles {
			h.Wait()
		}
	}()
	waitTimeout(t, &wg, 30*time.Second)

	if v, want := m.IntoInner(), 3*perKind*iterations; v != want {
		t.Errorf("Expected %d, got %d", want, v)
	}
}
