//go:build !mutflex_noasync

package lockmgr

import (
	"github.com/Aandreba/mutflex/lib/task"
)

// IAsyncLockManager is implemented by lock managers that can suspend a task
// while waiting for a lock.
type IAsyncLockManager interface {
	ILockManager

	// AcquireLockAsync returns a future resolving to the owner ID once the lock
	// for the given key is acquired, or to an error if the key is invalid.
	// The lock is not touched before the future is first polled.
	AcquireLockAsync(key string) task.Future[Acquired]
}

// Acquired is the result of AcquireLockAsync.
type Acquired struct {
	OwnerID []byte
	Err     error
}

// NewAsyncLockManager creates an empty lock manager that also supports async
// acquisition.
func NewAsyncLockManager() IAsyncLockManager {
	return newLockManager()
}

func (lm *lockMgrImpl) AcquireLockAsync(key string) task.Future[Acquired] {
	l, err := lm.lookup(key)
	if err != nil {
		return task.Ready(Acquired{Err: err})
	}

	// nothing happens until the first poll
	lf := l.mu.LockAsync()
	counted := false
	return task.FutureFunc[Acquired](func(w task.Waker) (Acquired, bool) {
		if _, ok := lf.Poll(w); !ok {
			if !counted {
				counted = true
				lm.contended.Inc()
				lm.contendTotal.Inc()
			}
			return Acquired{}, false
		}

		ownerID, err := lm.claim(l)
		return Acquired{OwnerID: ownerID, Err: err}, true
	})
}
