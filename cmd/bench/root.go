package bench

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/Aandreba/mutflex/cmd/util"
	"github.com/Aandreba/mutflex/lib/mutex"
	libutil "github.com/Aandreba/mutflex/lib/util"
	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
)

var (
	plog = logger.GetLogger("bench")

	// BenchCmd represents the bench command
	BenchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Measure lock throughput and latency",
		Long: `Runs a set of parallel benchmarks against the mutex implementations
of this module and a sync.Mutex baseline. Every benchmark reports ns/op,
ops/sec, sampled op latency percentiles and how evenly the goroutines
shared the lock.`,
		RunE:    run,
		PreRunE: processBenchConfig,
	}

	config *util.BenchConfig
)

// sampleEvery controls how many ops are timed individually.
const sampleEvery = 64

func init() {
	key := "skip"
	BenchCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. lock,lockmgr)"))
	key = "threads"
	BenchCmd.Flags().Int(key, 10, util.WrapString("Parallelism multiplier passed to the benchmarks (goroutines = threads * GOMAXPROCS)"))
	key = "keys"
	BenchCmd.Flags().Int(key, 16, util.WrapString("How many different keys to use for the lockmgr benchmark"))
	key = "csv"
	BenchCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
	util.SetupQueueFlags(BenchCmd)
}

func processBenchConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	config = util.GetBenchConfig()
	return nil
}

// --------------------------------------------------------------------------
// Benchmarks
// --------------------------------------------------------------------------

// benchmark is one named parallel benchmark.
type benchmark struct {
	name string
	fn   func(b *testing.B, s *sampler)
}

// result pairs a benchmark result with its samples.
type result struct {
	testing.BenchmarkResult
	p50, p99 float64
	fairness libutil.DistributionStats
}

func benchmarks() []benchmark {
	list := []benchmark{
		{"trylock", benchTryLock},
		{"lock", benchLock},
	}
	list = append(list, asyncBenchmarks...)
	return append(list,
		benchmark{"lockmgr", benchLockMgr},
		benchmark{"sync-mutex", benchSyncMutex},
	)
}

func benchTryLock(b *testing.B, s *sampler) {
	m := mutex.NewMovableMutexWithCapacity(config.QueueCapacity)
	b.RunParallel(func(pb *testing.PB) {
		n := 0
		for pb.Next() {
			s.observe(n, func() {
				if m.TryLock() {
					m.Unlock()
				}
			})
			n++
		}
		s.done(n)
	})
}

func benchLock(b *testing.B, s *sampler) {
	m := mutex.WithCapacity(0, config.QueueCapacity)
	b.RunParallel(func(pb *testing.PB) {
		n := 0
		for pb.Next() {
			s.observe(n, func() {
				g := m.Lock()
				*g.Value()++
				g.Unlock()
			})
			n++
		}
		s.done(n)
	})
}

func benchSyncMutex(b *testing.B, s *sampler) {
	var mu sync.Mutex
	counter := 0
	b.RunParallel(func(pb *testing.PB) {
		n := 0
		for pb.Next() {
			s.observe(n, func() {
				mu.Lock()
				counter++
				mu.Unlock()
			})
			n++
		}
		s.done(n)
	})
}

// --------------------------------------------------------------------------
// Run
// --------------------------------------------------------------------------

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Lock benchmarks")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(config.String())

	fmt.Println("starting tests...")

	registry := gometrics.NewRegistry()
	results := make(map[string]result)
	var order []string

	for _, bm := range benchmarks() {
		var last *sampler
		res := testing.Benchmark(func(b *testing.B) {
			if config.ShouldSkip(bm.name) {
				return
			}
			// testing.Benchmark calls this repeatedly with growing b.N, only
			// the samples of the final run are kept
			registry.Unregister(bm.name)
			last = newSampler(gometrics.GetOrRegisterTimer(bm.name, registry))

			b.SetParallelism(config.Threads)
			b.ResetTimer()
			bm.fn(b, last)
		})

		r := result{BenchmarkResult: res}
		if last != nil && res.NsPerOp() > 0 {
			ps := last.latency.Percentiles([]float64{0.5, 0.99})
			r.p50, r.p99 = ps[0], ps[1]
			r.fairness = last.fairness()
		}

		results[bm.name] = r
		order = append(order, bm.name)
		printResult(bm.name, r)
	}

	// Write results to csv is specified
	if config.CSV != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", config.CSV)
		if err := writeResultsToCSV(config.CSV, order, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// sampler times every sampleEvery-th op and counts ops per goroutine.
type sampler struct {
	latency gometrics.Timer

	mu     sync.Mutex
	counts []float64
}

func newSampler(t gometrics.Timer) *sampler {
	return &sampler{latency: t}
}

// observe runs op, timing it if n is a sampled index.
func (s *sampler) observe(n int, op func()) {
	if n%sampleEvery != 0 {
		op()
		return
	}
	start := time.Now()
	op()
	s.latency.UpdateSince(start)
}

// done records the number of ops a goroutine performed.
func (s *sampler) done(n int) {
	s.mu.Lock()
	s.counts = append(s.counts, float64(n))
	s.mu.Unlock()
}

func (s *sampler) fairness() libutil.DistributionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return libutil.NewDistributionStats(s.counts)
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, r result) {
	if r.NsPerOp() == 0 {
		fmt.Printf("%-14sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(r.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Printf("%-14s%.0fns/op (%s/op)\t%.0f ops/sec\tp50 %s\tp99 %s\tfairness %.2f\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec,
		time.Duration(r.p50), time.Duration(r.p99), r.fairness.DistributionQuality)
	plog.Debugf("%s: %d iterations, per goroutine %+v", test, r.N, r.fairness.Stats)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, order []string, results map[string]result) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"P50Ns", "P99Ns", "Fairness",
		"Threads", "Keys", "QueueCapacity",
		"Async", "Checked", "FlagBits",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, test := range order {
		r := results[test]

		var nsPerOp, opsPerSec float64
		skipped := "true"
		if r.NsPerOp() != 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(r.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			fmt.Sprintf("%.0f", r.p50),
			fmt.Sprintf("%.0f", r.p99),
			fmt.Sprintf("%.3f", r.fairness.DistributionQuality),
			strconv.Itoa(config.Threads),
			strconv.Itoa(config.Keys),
			strconv.Itoa(config.QueueCapacity),
			strconv.FormatBool(mutex.AsyncEnabled),
			strconv.FormatBool(mutex.Checked),
			strconv.Itoa(mutex.WordBits),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return writer.Error()
}

// keyName returns the lockmgr key for index i.
func keyName(i int) string {
	return "bench/" + strconv.Itoa(i%config.Keys)
}
