package stress

import (
	"fmt"
	"os"
	"time"

	"github.com/Aandreba/mutflex/cmd/util"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
)

var (
	plog = logger.GetLogger("stress")

	// StressCmd represents the stress command
	StressCmd = &cobra.Command{
		Use:   "stress",
		Short: "Run many async tasks and blocking goroutines against one lock",
		Long: `Spawns --tasks async tasks on an executor. Each task acquires the
lock, sleeps a random duration up to --max-hold while holding it and then
increments a shared counter. --blocking goroutines compete on the same lock
through the blocking path until all tasks have finished. The run fails if
the final counter does not match the number of acquisitions.`,
		RunE:    run,
		PreRunE: processStressConfig,
	}

	config *util.StressConfig
)

func init() {
	key := "mode"
	StressCmd.Flags().String(key, util.ModeMutex, util.WrapString("Lock under test (mutex, lockmgr)"))
	key = "tasks"
	StressCmd.Flags().Int(key, 5000, util.WrapString("Number of async tasks"))
	key = "workers"
	StressCmd.Flags().Int(key, 0, util.WrapString("Number of executor workers (0 uses GOMAXPROCS)"))
	key = "blocking"
	StressCmd.Flags().Int(key, 0, util.WrapString("Number of blocking goroutines competing with the tasks"))
	key = "max-hold"
	StressCmd.Flags().Duration(key, time.Millisecond, util.WrapString("Upper bound of the random time a task holds the lock"))
	key = "seed"
	StressCmd.Flags().Uint64(key, 0, util.WrapString("Seed of the hold time generator (0 picks a random seed)"))
	key = "metrics"
	StressCmd.Flags().Bool(key, false, util.WrapString("Print the collected metrics in Prometheus text format"))
	util.SetupQueueFlags(StressCmd)
}

func processStressConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	var err error
	config, err = util.GetStressConfig()
	return err
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Lock stress test")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(config.String())

	report, err := Run(config)
	if err != nil {
		return err
	}

	fmt.Println(report.String())

	if config.Metrics {
		fmt.Println("METRICS")
		report.WriteMetrics(os.Stdout)
	}

	if report.Final != report.Expected {
		return fmt.Errorf("counter mismatch: got %d, expected %d", report.Final, report.Expected)
	}
	return nil
}
