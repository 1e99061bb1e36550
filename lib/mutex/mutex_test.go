package mutex

import (
	"sync"
	"testing"
	"time"
)

// TestMutexTryLock tests the non-blocking probe and the round trip
func TestMutexTryLock(t *testing.T) {
	m := New(1)

	g, ok := m.TryLock()
	if !ok || g == nil {
		t.Fatal("TryLock on a fresh mutex should succeed")
	}
	if g2, ok := m.TryLock(); ok || g2 != nil {
		t.Fatal("only one guard may exist at a time")
	}

	g.Unlock()
	g, ok = m.TryLock()
	if !ok {
		t.Fatal("TryLock after release should succeed")
	}
	g.Unlock()
}

// TestGuardAccess tests read and write access through a guard
func TestGuardAccess(t *testing.T) {
	type point struct{ X, Y int }
	m := New(point{X: 1, Y: 2})

	g := m.Lock()
	if got := g.Get(); got.X != 1 || got.Y != 2 {
		t.Errorf("Get() = %+v, want {1 2}", got)
	}
	g.Set(point{X: 3, Y: 4})
	g.Update(func(p *point) { p.X++ })
	g.Value().Y = 10
	g.Unlock()

	m.Do(func(p *point) {
		if p.X != 4 || p.Y != 10 {
			t.Errorf("Expected {4 10}, got %+v", *p)
		}
	})

	if m.IsLocked() {
		t.Error("Do should release the mutex")
	}
}

// TestMutexThreads tests the blocking scenario: two goroutines increment 1 -> 3
func TestMutexThreads(t *testing.T) {
	m := New(1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		g := m.Lock()
		g.Update(func(v *int) { *v++ })
		g.Unlock()
	}()

	g := m.Lock()
	g.Update(func(v *int) { *v++ })
	g.Unlock()

	wg.Wait()

	g = m.Lock()
	defer g.Unlock()
	if v := g.Get(); v != 3 {
		t.Errorf("Expected 3, got %d", v)
	}
}

// TestIntoInner tests that IntoInner waits for an outstanding guard
func TestIntoInner(t *testing.T) {
	m := New("value")

	g := m.Lock()
	result := make(chan string)
	go func() {
		result <- m.IntoInner()
	}()

	select {
	case v := <-result:
		t.Fatalf("IntoInner returned %q while a guard was outstanding", v)
	case <-time.After(20 * time.Millisecond):
	}

	g.Set("updated")
	g.Unlock()

	select {
	case v := <-result:
		if v != "updated" {
			t.Errorf("Expected %q, got %q", "updated", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for IntoInner")
	}
}
