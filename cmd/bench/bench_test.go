package bench

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Aandreba/mutflex/cmd/util"
	gometrics "github.com/rcrowley/go-metrics"
)

func testConfig() *util.BenchConfig {
	return &util.BenchConfig{Threads: 2, Keys: 4, QueueCapacity: 8}
}

// TestSampler tests latency sampling and per goroutine counts
func TestSampler(t *testing.T) {
	s := newSampler(gometrics.NewTimer())

	calls := 0
	for n := 0; n < 4*sampleEvery; n++ {
		s.observe(n, func() { calls++ })
	}
	if calls != 4*sampleEvery {
		t.Errorf("Expected %d calls, got %d", 4*sampleEvery, calls)
	}
	if s.latency.Count() != 4 {
		t.Errorf("Expected 4 samples, got %d", s.latency.Count())
	}

	s.done(10)
	s.done(10)
	if q := s.fairness().DistributionQuality; q != 1 {
		t.Errorf("even counts should score 1, got %v", q)
	}
}

// TestBenchmarks runs every benchmark once through testing.Benchmark
func TestBenchmarks(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping benchmarks in short mode")
	}
	config = testConfig()

	for _, bm := range benchmarks() {
		t.Run(bm.name, func(t *testing.T) {
			s := newSampler(gometrics.NewTimer())
			res := testing.Benchmark(func(b *testing.B) {
				bm.fn(b, s)
			})
			if res.N == 0 {
				t.Errorf("benchmark %s did not run", bm.name)
			}
		})
	}
}

// TestSkip tests that skipped benchmarks are reported as such
func TestSkip(t *testing.T) {
	config = testConfig()
	config.Skip = []string{"lock"}

	res := testing.Benchmark(func(b *testing.B) {
		if config.ShouldSkip("lock") {
			return
		}
		benchLock(b, newSampler(gometrics.NewTimer()))
	})
	if res.NsPerOp() != 0 {
		t.Errorf("skipped benchmark reported %d ns/op", res.NsPerOp())
	}
}

// TestWriteResultsToCSV tests the CSV export
func TestWriteResultsToCSV(t *testing.T) {
	config = testConfig()
	path := filepath.Join(t.TempDir(), "results.csv")

	results := map[string]result{
		"lock":    {BenchmarkResult: testing.BenchmarkResult{N: 100, T: 100 * time.Microsecond}, p50: 50, p99: 900},
		"trylock": {},
	}
	if err := writeResultsToCSV(path, []string{"trylock", "lock"}, results); err != nil {
		t.Fatalf("writeResultsToCSV() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d rows", len(rows))
	}
	if rows[1][0] != "trylock" || rows[1][4] != "true" {
		t.Errorf("unexpected skipped row %v", rows[1])
	}
	if rows[2][0] != "lock" || rows[2][1] != "1000" || rows[2][4] != "false" {
		t.Errorf("unexpected result row %v", rows[2])
	}
}
