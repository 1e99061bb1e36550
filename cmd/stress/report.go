package stress

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	libutil "github.com/Aandreba/mutflex/lib/util"
)

// Report summarises a stress run.
type Report struct {
	Final    int           // Counter value read after the run
	Expected int           // Number of acquisitions that incremented it
	Elapsed  time.Duration // Wall time of the run

	WaitP50 time.Duration // Median time a task waited for the lock
	WaitP99 time.Duration
	WaitMax time.Duration

	// Acquisitions per blocking goroutine. Empty without --blocking.
	Blocking libutil.DistributionStats

	// writes the Prometheus metrics of the run
	metrics func(w io.Writer)
}

// WriteMetrics writes the metrics collected during the run.
func (r *Report) WriteMetrics(w io.Writer) {
	if r.metrics != nil {
		r.metrics(w)
	}
}

// String returns a formatted string representation of the report
func (r *Report) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}
	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Result")
	addField("Final Counter", strconv.Itoa(r.Final))
	addField("Expected", strconv.Itoa(r.Expected))
	addField("Elapsed", r.Elapsed.String())

	addSection("Task Wait")
	addField("p50", r.WaitP50.String())
	addField("p99", r.WaitP99.String())
	addField("max", r.WaitMax.String())

	if r.Blocking.Max > 0 {
		addSection("Blocking Goroutines")
		addField("Acquisitions (min)", fmt.Sprintf("%.0f", r.Blocking.Min))
		addField("Acquisitions (max)", fmt.Sprintf("%.0f", r.Blocking.Max))
		addField("Acquisitions (mean)", fmt.Sprintf("%.1f", r.Blocking.Mean))
		addField("Fairness", fmt.Sprintf("%.2f", r.Blocking.DistributionQuality))
	}

	return sb.String()
}
