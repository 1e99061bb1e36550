//go:build !mutflex_word64 && !mutflex_wordptr

package mutex

import "sync/atomic"

// 32 bit is the narrowest width sync/atomic supports on every GOARCH, so it is
// the default flag word.
type (
	word       = uint32
	atomicWord = atomic.Uint32
)

// WordBits is the width of the atomic word backing the lock flag.
const WordBits = 32
