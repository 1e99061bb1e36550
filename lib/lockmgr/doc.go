// Package lockmgr implements named locks on top of mutex.MovableMutex. It
// gives callers that cannot share a Go value (e.g. independent components
// that only agree on a resource name) a simple way to coordinate access to
// shared resources inside one process.
//
// Core Functionality:
//   - Lock acquisition by key, returning an owner ID
//   - Blocking, non-blocking and async acquisition on the same lock
//   - Safe release operations that verify ownership
//   - Prometheus style metrics and cheap in-process statistics
//
// Implementation Approach:
//
//	Every key maps to one keyLock, created on first use and kept in an
//	xsync.MapOf registry. A keyLock pairs a MovableMutex with the owner ID
//	of the current holder:
//
//	- Lock Acquisition: The caller acquires the MovableMutex (TryLock, Lock
//	  or LockAsync) and then stores a freshly generated 256 bit owner ID.
//	  Only the holder of the mutex ever writes the owner ID.
//
//	- Safe Release: ReleaseLock compares the presented owner ID with the
//	  stored one and clears it with a compare-and-swap before unlocking, so
//	  two concurrent releases with the same ID unlock at most once.
//
//	- Blocking and async callers contend on the same MovableMutex, so a
//	  goroutine calling AcquireLock and a task awaiting AcquireLockAsync on
//	  the same key exclude each other.
//
// Thread Safety:
//
//	All methods are safe for concurrent use.
//
// Usage Example:
//
//	mgr := lockmgr.NewLockManager()
//
//	ownerID, err := mgr.AcquireLock("resource:123")
//	if err != nil {
//	    // Handle error
//	}
//
//	// Use the resource safely
//	// ...
//
//	released, err := mgr.ReleaseLock("resource:123", ownerID)
//	if err != nil {
//	    // Handle error
//	}
//
// Security Considerations:
//
//	Owner IDs are random and protect against accidental lock stealing by
//	a component releasing a key it does not hold. They are not a security
//	boundary, any code in the process can read the registry through the
//	manager.
//
// Memory:
//
//	Keys are never evicted. A manager is meant for a bounded set of resource
//	names, not for one key per request.
package lockmgr
