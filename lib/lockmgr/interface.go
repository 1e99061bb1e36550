package lockmgr

import (
	"io"
)

// ILockManager defines the interface for a lock manager.
type ILockManager interface {
	// TryAcquireLock acquires the lock for the given key if it is free.
	// Return a boolean indicating whether the lock was acquired, an owner ID, and an error if any.
	TryAcquireLock(key string) (ok bool, ownerID []byte, err error)

	// AcquireLock blocks the calling goroutine until the lock for the given key is acquired.
	// Return the owner ID, and an error if any.
	AcquireLock(key string) (ownerID []byte, err error)

	// ReleaseLock releases the lock for the given key.
	// Return a boolean indicating whether the lock was released, and an error if any.
	// The method will also return True if the lock did not exist or is not held.
	ReleaseLock(key string, ownerID []byte) (ok bool, err error)

	// IsLocked reports a racy snapshot of whether the lock for the given key is held.
	IsLocked(key string) bool

	// Stats returns counters of the operations performed so far.
	Stats() Stats

	// WriteMetrics writes the metrics of the manager in Prometheus text format.
	WriteMetrics(w io.Writer)
}

// Stats is a snapshot of the lock manager counters.
type Stats struct {
	Keys      int   `json:"keys"`      // Number of known keys
	Acquired  int64 `json:"acquired"`  // Successful acquisitions
	Contended int64 `json:"contended"` // Acquisitions that found the lock held
	Released  int64 `json:"released"`  // Successful releases
	Rejected  int64 `json:"rejected"`  // Releases with a wrong owner ID
}
