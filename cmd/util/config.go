package util

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/Aandreba/mutflex/lib/mutex"
	libutil "github.com/Aandreba/mutflex/lib/util"
	"github.com/spf13/viper"
)

// --------------------------------------------------------------------------
// Benchmark configuration struct
// --------------------------------------------------------------------------

// BenchConfig configures `mutflex bench`
type BenchConfig struct {
	Threads       int      // Parallelism passed to b.SetParallelism
	Keys          int      // Number of distinct keys for the lockmgr benchmark
	QueueCapacity int      // Wait queue capacity hint of each mutex
	Skip          []string // Benchmarks to skip
	CSV           string   // Optional CSV output path
}

// GetBenchConfig reads the benchmark configuration from viper
func GetBenchConfig() *BenchConfig {
	conf := &BenchConfig{
		Threads:       viper.GetInt("threads"),
		Keys:          viper.GetInt("keys"),
		QueueCapacity: viper.GetInt("queue-capacity"),
		CSV:           viper.GetString("csv"),
	}
	if skip := viper.GetString("skip"); skip != "" {
		conf.Skip = strings.Split(skip, ",")
	}
	if conf.Threads < 1 {
		conf.Threads = 1
	}
	if conf.Keys < 1 {
		conf.Keys = 1
	}
	return conf
}

// ShouldSkip reports whether the named benchmark is in the skip list
func (c *BenchConfig) ShouldSkip(test string) bool {
	for _, skip := range c.Skip {
		if strings.TrimSpace(skip) == test {
			return true
		}
	}
	return false
}

// String returns a formatted string representation of the benchmark configuration
func (c *BenchConfig) String() string {
	var sb strings.Builder
	addSection, addField := sectionWriter(&sb)

	addSection("Benchmark")
	addField("Threads", strconv.Itoa(c.Threads))
	addField("Keys", strconv.Itoa(c.Keys))
	addField("Queue Capacity", strconv.Itoa(c.QueueCapacity))
	if len(c.Skip) > 0 {
		addField("Skip", strings.Join(c.Skip, ", "))
	}
	if c.CSV != "" {
		addField("CSV", c.CSV)
	}

	writeBuild(addSection, addField)
	return sb.String()
}

// --------------------------------------------------------------------------
// Stress test configuration struct
// --------------------------------------------------------------------------

// Stress test targets
const (
	ModeMutex   = "mutex"
	ModeLockMgr = "lockmgr"
)

// StressConfig configures `mutflex stress`
type StressConfig struct {
	Mode          string        // mutex or lockmgr
	Tasks         int           // Number of async tasks
	Workers       int           // Executor workers
	Blocking      int           // Blocking goroutines competing with the tasks
	MaxHold       time.Duration // Upper bound of the random hold time
	QueueCapacity int           // Wait queue capacity hint
	Seed          uint64        // Seed of the hold time generator
	Metrics       bool          // Print Prometheus metrics after the run
}

// GetStressConfig reads the stress test configuration from viper
func GetStressConfig() (*StressConfig, error) {
	conf := &StressConfig{
		Mode:          strings.ToLower(viper.GetString("mode")),
		Tasks:         viper.GetInt("tasks"),
		Workers:       viper.GetInt("workers"),
		Blocking:      viper.GetInt("blocking"),
		MaxHold:       viper.GetDuration("max-hold"),
		QueueCapacity: viper.GetInt("queue-capacity"),
		Seed:          viper.GetUint64("seed"),
		Metrics:       viper.GetBool("metrics"),
	}

	switch conf.Mode {
	case ModeMutex, ModeLockMgr:
	default:
		return nil, fmt.Errorf("invalid mode %s. must be one of %s, %s", conf.Mode, ModeMutex, ModeLockMgr)
	}
	if conf.Tasks < 0 || conf.Blocking < 0 || conf.MaxHold < 0 {
		return nil, fmt.Errorf("tasks, blocking and max-hold must not be negative")
	}
	if conf.Workers <= 0 {
		conf.Workers = runtime.GOMAXPROCS(0)
	}
	if conf.Seed == 0 {
		conf.Seed = libutil.GenerateSeed()
	}
	return conf, nil
}

// String returns a formatted string representation of the stress test configuration
func (c *StressConfig) String() string {
	var sb strings.Builder
	addSection, addField := sectionWriter(&sb)

	addSection("Stress Test")
	addField("Mode", c.Mode)
	addField("Tasks", strconv.Itoa(c.Tasks))
	addField("Executor Workers", strconv.Itoa(c.Workers))
	addField("Blocking Goroutines", strconv.Itoa(c.Blocking))
	addField("Max Hold", c.MaxHold.String())
	addField("Queue Capacity", strconv.Itoa(c.QueueCapacity))
	addField("Seed", strconv.FormatUint(c.Seed, 10))

	writeBuild(addSection, addField)
	return sb.String()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func sectionWriter(sb *strings.Builder) (func(string), func(string, string)) {
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}
	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}
	return addSection, addField
}

// writeBuild adds the build tag configuration of the mutex package
func writeBuild(addSection func(string), addField func(string, string)) {
	addSection("Build")
	addField("Async", strconv.FormatBool(mutex.AsyncEnabled))
	addField("Checked", strconv.FormatBool(mutex.Checked))
	addField("Flag Width", fmt.Sprintf("%d bit", mutex.WordBits))
}
