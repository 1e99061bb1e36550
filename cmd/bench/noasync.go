//go:build mutflex_noasync

package bench

var asyncBenchmarks []benchmark
