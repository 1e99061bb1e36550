package cmd

import (
	"fmt"
	"os"

	"github.com/Aandreba/mutflex/cmd/bench"
	"github.com/Aandreba/mutflex/cmd/stress"
	"github.com/Aandreba/mutflex/cmd/util"
	"github.com/Aandreba/mutflex/lib/mutex"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	Version = "0.1.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "mutflex",
		Short: "movable mutex for blocking and async callers",
		Long: fmt.Sprintf(`mutflex (v%s)

A mutex that can be acquired by blocking goroutines and by suspended async
tasks alike. This tool benchmarks and stress tests the lock.`, Version),
		PersistentPreRunE: setupLogging,
		SilenceUsage:      true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number and build configuration of mutflex",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mutflex v%s (async=%t, checked=%t, flag=%dbit)\n",
				Version, mutex.AsyncEnabled, mutex.Checked, mutex.WordBits)
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(bench.BenchCmd)
	RootCmd.AddCommand(stress.StressCmd)

	// Add Flags
	key := "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("Log level (debug, info, warn, error)"))
}

// setupLogging installs the CLI loggers before any subcommand runs
func setupLogging(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	return util.InitLoggers(viper.GetString("log-level"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
