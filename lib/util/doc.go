// Package util provides the supporting data structures of mutflex.
//
// The package contains:
//   - lockfreempsc: A lock-free Multi-Producer Single-Consumer (MPSC) queue, used as the run queue of the task executor
//   - mapheap: A min-heap with key-based access, used as the timer queue of the task executor
//   - statistics: Helpers to summarise samples (wait times, per-worker acquisition counts) and rate their distribution
//   - functions: Random seeds for the stress tools
package util
