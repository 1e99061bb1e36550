//go:build !mutflex_noasync

package bench

import (
	"sync/atomic"
	"testing"

	"github.com/Aandreba/mutflex/lib/mutex"
)

var asyncBenchmarks = []benchmark{
	{"lock-async", benchLockAsync},
	{"mixed", benchMixed},
}

// benchLockAsync drives LockAsync futures to completion on each goroutine.
func benchLockAsync(b *testing.B, s *sampler) {
	m := mutex.WithCapacity(0, config.QueueCapacity)
	b.RunParallel(func(pb *testing.PB) {
		n := 0
		for pb.Next() {
			s.observe(n, func() {
				g := m.LockAsync().Await()
				*g.Value()++
				g.Unlock()
			})
			n++
		}
		s.done(n)
	})
}

// benchMixed lets every other goroutine use the blocking path.
func benchMixed(b *testing.B, s *sampler) {
	m := mutex.WithCapacity(0, config.QueueCapacity)
	var ids atomic.Int32
	b.RunParallel(func(pb *testing.PB) {
		blocking := ids.Add(1)%2 == 0
		n := 0
		for pb.Next() {
			s.observe(n, func() {
				var g *mutex.Guard[int]
				if blocking {
					g = m.Lock()
				} else {
					g = m.LockAsync().Await()
				}
				*g.Value()++
				g.Unlock()
			})
			n++
		}
		s.done(n)
	})
}
