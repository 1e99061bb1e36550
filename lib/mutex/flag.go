package mutex

// --------------------------------------------------------------------------
// Lock flag
// --------------------------------------------------------------------------

// The two sentinel values a flag word may hold. The concrete width of word is
// chosen at build time (see flag_word*.go), call sites never depend on it.
const (
	unlocked word = 0
	locked   word = 1
)

// atomicFlag is the ownership cell of a MovableMutex. All observers agree on a
// single total order of unlocked -> locked -> unlocked transitions.
//
// Go's sync/atomic operations are sequentially consistent, which is at least
// as strong as acquire ordering on a successful or failed CAS and release
// ordering on the store in forceSet.
type atomicFlag struct {
	v atomicWord
}

// compareAndSet performs a single CAS from expected to desired and reports whether
// it took place.
func (f *atomicFlag) compareAndSet(expected, desired word) bool {
	return f.v.CompareAndSwap(expected, desired)
}

// forceSet stores v unconditionally. It is only used by the owner to clear the
// flag on release, so in checked builds the previous value must be locked.
func (f *atomicFlag) forceSet(v word) {
	if !Checked {
		f.v.Store(v)
		return
	}
	if prev := f.v.Swap(v); prev != locked {
		fatal("unlock of unlocked mutex")
	}
}

// isLocked is a racy snapshot for introspection only.
func (f *atomicFlag) isLocked() bool {
	return f.v.Load() == locked
}
