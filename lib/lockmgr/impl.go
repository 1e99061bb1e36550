package lockmgr

import (
	"bytes"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/Aandreba/mutflex/lib/mutex"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var plog = logger.GetLogger("lockmgr")

// keyLock is the lock behind one key. owner is only written by the goroutine
// or task holding mu.
type keyLock struct {
	mu    *mutex.MovableMutex
	owner atomic.Pointer[[]byte]
	since atomic.Int64 // unix nanos of the current acquisition
}

type lockMgrImpl struct {
	locks *xsync.MapOf[string, *keyLock]

	// cheap counters for Stats
	acquired  *xsync.Counter
	contended *xsync.Counter
	released  *xsync.Counter
	rejected  *xsync.Counter

	// the same events exposed as metrics
	set           *metrics.Set
	acquireTotal  *metrics.Counter
	contendTotal  *metrics.Counter
	releaseTotal  *metrics.Counter
	rejectTotal   *metrics.Counter
	holdDurations *metrics.Histogram
}

// NewLockManager creates an empty lock manager. Every manager has its own
// registry and metrics set.
func NewLockManager() ILockManager {
	return newLockManager()
}

func newLockManager() *lockMgrImpl {
	lm := &lockMgrImpl{
		locks:     xsync.NewMapOf[string, *keyLock](),
		acquired:  xsync.NewCounter(),
		contended: xsync.NewCounter(),
		released:  xsync.NewCounter(),
		rejected:  xsync.NewCounter(),
		set:       metrics.NewSet(),
	}

	lm.acquireTotal = lm.set.NewCounter("mutflex_lockmgr_acquire_total")
	lm.contendTotal = lm.set.NewCounter("mutflex_lockmgr_contended_total")
	lm.releaseTotal = lm.set.NewCounter("mutflex_lockmgr_release_total")
	lm.rejectTotal = lm.set.NewCounter("mutflex_lockmgr_rejected_total")
	lm.holdDurations = lm.set.NewHistogram("mutflex_lockmgr_hold_duration_seconds")
	lm.set.NewGauge("mutflex_lockmgr_keys", func() float64 {
		return float64(lm.locks.Size())
	})
	lm.set.NewGauge("mutflex_lockmgr_held", func() float64 {
		held := 0
		lm.locks.Range(func(_ string, l *keyLock) bool {
			if l.mu.IsLocked() {
				held++
			}
			return true
		})
		return float64(held)
	})

	return lm
}

// lookup returns the lock for key, creating it on first use.
func (lm *lockMgrImpl) lookup(key string) (*keyLock, error) {
	if key == "" {
		return nil, NewError(RetCInvalidKey, "key must not be empty")
	}
	l, _ := lm.locks.LoadOrCompute(key, func() *keyLock {
		plog.Debugf("creating lock for key %q", key)
		return &keyLock{mu: mutex.NewMovableMutex()}
	})
	return l, nil
}

// claim records a new owner for l, which the caller has just locked. On
// failure the lock is released again.
func (lm *lockMgrImpl) claim(l *keyLock) ([]byte, error) {
	ownerID, err := generateOwnerID()
	if err != nil {
		l.mu.Unlock()
		return nil, NewError(RetCOwnerID, fmt.Sprintf("could not generate owner id: %v", err))
	}

	l.owner.Store(&ownerID)
	l.since.Store(time.Now().UnixNano())
	lm.acquired.Inc()
	lm.acquireTotal.Inc()
	return ownerID, nil
}

func (lm *lockMgrImpl) TryAcquireLock(key string) (bool, []byte, error) {
	l, err := lm.lookup(key)
	if err != nil {
		return false, nil, err
	}

	if !l.mu.TryLock() {
		lm.contended.Inc()
		lm.contendTotal.Inc()
		return false, nil, nil
	}

	ownerID, err := lm.claim(l)
	if err != nil {
		return false, nil, err
	}
	return true, ownerID, nil
}

func (lm *lockMgrImpl) AcquireLock(key string) ([]byte, error) {
	l, err := lm.lookup(key)
	if err != nil {
		return nil, err
	}

	if !l.mu.TryLock() {
		lm.contended.Inc()
		lm.contendTotal.Inc()
		l.mu.Lock()
	}
	return lm.claim(l)
}

func (lm *lockMgrImpl) ReleaseLock(key string, ownerID []byte) (bool, error) {
	if key == "" {
		return false, NewError(RetCInvalidKey, "key must not be empty")
	}

	// Check if the lock exists
	l, ok := lm.locks.Load(key)
	if !ok {
		return true, nil
	}

	// Check if the lock is held at all
	current := l.owner.Load()
	if current == nil {
		return true, nil
	}

	// Check if the lock is owned by the caller
	if !bytes.Equal(*current, ownerID) {
		lm.rejected.Inc()
		lm.rejectTotal.Inc()
		plog.Warningf("rejected release of %q with a foreign owner id", key)
		return false, NewError(RetCNotOwner, fmt.Sprintf("lock %q is held by another owner", key))
	}

	// a concurrent release with the same id may have won
	if !l.owner.CompareAndSwap(current, nil) {
		return true, nil
	}

	lm.holdDurations.UpdateDuration(time.Unix(0, l.since.Load()))
	lm.released.Inc()
	lm.releaseTotal.Inc()

	// Release the lock
	l.mu.Unlock()
	return true, nil
}

func (lm *lockMgrImpl) IsLocked(key string) bool {
	l, ok := lm.locks.Load(key)
	return ok && l.mu.IsLocked()
}

func (lm *lockMgrImpl) Stats() Stats {
	return Stats{
		Keys:      lm.locks.Size(),
		Acquired:  lm.acquired.Value(),
		Contended: lm.contended.Value(),
		Released:  lm.released.Value(),
		Rejected:  lm.rejected.Value(),
	}
}

func (lm *lockMgrImpl) WriteMetrics(w io.Writer) {
	lm.set.WritePrometheus(w)
}
