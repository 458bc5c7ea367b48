package workers

import (
	"os"
	"runtime"
	"strconv"
)

// EnvOverride names the environment variable that pins the worker count.
const EnvOverride = "RESIZE_WORKERS"

// DefaultLimit caps automatic sizing. Each resize holds a fully decoded
// image in memory, so more workers than this rarely helps.
const DefaultLimit = 8

// Count returns a worker count scaled from GOMAXPROCS, which follows the
// container CPU limit on Go 1.19+.
//
// multiplier scales the CPU count; decoding is CPU-bound, so 1.0 is typical.
// limit caps the result; 0 means no cap. A positive RESIZE_WORKERS value
// replaces the calculation but is still capped.
func Count(multiplier float64, limit int) int {
	if count, ok := envCount(); ok {
		return capAt(count, limit)
	}

	n := int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	if n < 1 {
		n = 1
	}
	return capAt(n, limit)
}

// ForCPU returns the worker count for CPU-bound work (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForResize resolves the number of files processed concurrently by a run.
// A positive requested value wins (capped at limit when limit > 0); zero or
// negative means automatic, which honors RESIZE_WORKERS and otherwise sizes
// for CPU-bound decoding. Callers that need sequential processing pass 1.
func ForResize(requested, limit int) int {
	if requested > 0 {
		return capAt(requested, limit)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return ForCPU(limit)
}

func envCount() (int, bool) {
	raw := os.Getenv(EnvOverride)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func capAt(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}
