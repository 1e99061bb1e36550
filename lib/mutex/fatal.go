package mutex

import (
	"fmt"
	"os"

	"github.com/lni/dragonboat/v4/logger"
)

var plog = logger.GetLogger("mutex")

// fatal reports a broken locking contract and terminates the process. A
// misused lock cannot be recovered from, so unlike a panic this cannot be
// caught by the caller. Tests swap it to observe violations.
var fatal = func(msg string) {
	plog.Errorf("fatal: %s", msg)
	fmt.Fprintf(os.Stderr, "mutflex: fatal error: %s\n", msg)
	os.Exit(2)
}
