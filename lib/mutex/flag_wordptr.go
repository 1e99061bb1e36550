//go:build mutflex_wordptr && !mutflex_word64

package mutex

import "sync/atomic"

type (
	word       = uintptr
	atomicWord = atomic.Uintptr
)

// WordBits is the width of the atomic word backing the lock flag.
const WordBits = 32 << (^uintptr(0) >> 63)
