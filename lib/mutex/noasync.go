//go:build mutflex_noasync

package mutex

// AsyncEnabled reports whether the wait queue and the LockAsync futures are
// compiled in.
const AsyncEnabled = false

// waitList is empty without async support: no queue, no allocation, nothing
// to wake.
type waitList struct{}

func (waitList) setCapacity(int) {}

func (waitList) wakeNext() {}
