//go:build mutflex_noasync

package stress

import (
	"errors"

	"github.com/Aandreba/mutflex/cmd/util"
)

// Run needs the async lock path, which this build does not include.
func Run(_ *util.StressConfig) (*Report, error) {
	return nil, errors.New("stress requires a build without the mutflex_noasync tag")
}
