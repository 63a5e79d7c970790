package util

import "runtime"

// GetOptimalPoolSize returns the worker count for parallel page processing.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
// Page work is a mix of cached reads and regexp scanning, so 2× cores keeps
// workers busy while a read faults pages in; the bounds keep small machines
// parallel and big machines from spawning workers a few hundred pages can
// never feed.
func GetOptimalPoolSize() int {
	cores := runtime.NumCPU()
	poolSize := cores * 2

	// Enforce minimum
	if poolSize < 4 {
		poolSize = 4
	}

	// Enforce maximum
	if poolSize > 32 {
		poolSize = 32
	}

	return poolSize
}

// GetOptimalPoolSizeWithOverride returns pool size with optional override.
//
// If override > 0, uses override value (for testing/tuning).
// Otherwise, uses GetOptimalPoolSize().
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
