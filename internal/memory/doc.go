// Package memory keeps a folder run inside its memory budget.
//
// Decoding a large photo or composing GIF frames allocates full-resolution
// buffers, and several workers may do so at once. Two mechanisms bound that:
//
// [ConfigureLimit] sets the Go soft memory limit from MEMORY_LIMIT (bytes or a
// Kubernetes quantity such as "2Gi") scaled by MEMORY_RATIO (default 0.85).
// An explicit GOMEMLIMIT always wins.
//
// [Monitor] samples heap usage and, once it crosses the critical mark, makes
// [Monitor.Wait] block so no new file is started until usage drops below the
// high mark. The folder orchestrator calls Wait before each file.
package memory
