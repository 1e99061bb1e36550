// Package cmd implements the command-line interface of mutflex. The tool
// exercises the lock implementations of this module from the outside.
//
// The package is organized into several subpackages:
//
//   - bench: Parallel throughput and latency benchmarks (trylock, lock,
//     lock-async, mixed, lockmgr and a sync.Mutex baseline)
//   - stress: Many async tasks and blocking goroutines against one lock,
//     verifying the final counter
//   - util: Shared utilities for flags, configuration and logging (internal use)
//
// Flags can also be set through environment variables prefixed with MUTFLEX_
// (e.g. MUTFLEX_LOG_LEVEL=debug) or in a .env / .env.local file.
//
// See mutflex -help for a list of all commands.
package cmd
