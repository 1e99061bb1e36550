package bench

import (
	"testing"

	"github.com/Aandreba/mutflex/lib/lockmgr"
)

// benchLockMgr acquires and releases keys spread over config.Keys names.
func benchLockMgr(b *testing.B, s *sampler) {
	lm := lockmgr.NewLockManager()
	b.RunParallel(func(pb *testing.PB) {
		n := 0
		for pb.Next() {
			key := keyName(n)
			s.observe(n, func() {
				ownerID, err := lm.AcquireLock(key)
				if err != nil {
					plog.Errorf("(lockmgr) - error acquiring %s: %v", key, err)
					return
				}
				if _, err := lm.ReleaseLock(key, ownerID); err != nil {
					plog.Errorf("(lockmgr) - error releasing %s: %v", key, err)
				}
			})
			n++
		}
		s.done(n)
	})

	st := lm.Stats()
	plog.Debugf("(lockmgr) - %d keys, %d acquired, %d contended", st.Keys, st.Acquired, st.Contended)
}
