//go:build mutflex_word64

package mutex

import "sync/atomic"

type (
	word       = uint64
	atomicWord = atomic.Uint64
)

// WordBits is the width of the atomic word backing the lock flag.
const WordBits = 64
