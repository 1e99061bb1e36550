//go:build !mutflex_unchecked && !mutflex_noasync

package mutex

import (
	"strings"
	"testing"
)

// TestFutureContractViolations tests misuse of lock futures in checked builds
func TestFutureContractViolations(t *testing.T) {
	tests := []struct {
		name string
		want string
		fn   func()
	}{
		{
			name: "poll after ready",
			want: "completed lock future",
			fn: func() {
				m := NewMovableMutex()
				f := m.LockAsync()
				f.Poll(&countingWaker{})
				f.Poll(&countingWaker{})
			},
		},
		{
			name: "poll after drop",
			want: "dropped lock future",
			fn: func() {
				m := NewMovableMutex()
				m.Lock()
				f := m.LockAsync()
				f.Poll(&countingWaker{})
				f.Drop()
				f.Poll(&countingWaker{})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, fired := captureFatal(tt.fn)
			if !fired {
				t.Fatal("expected a fatal contract violation")
			}
			if !strings.Contains(msg, tt.want) {
				t.Errorf("fatal message %q does not contain %q", msg, tt.want)
			}
		})
	}
}
