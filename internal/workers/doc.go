/*
Package workers sizes the resize worker pool.

Counts are derived from runtime.GOMAXPROCS rather than runtime.NumCPU, so a
container limited to two CPUs on a large host gets two workers, not one per
host core:

	n := workers.ForCPU(8) // 1 per CPU, at most 8

ForResize is what the processor calls. An explicit --workers value wins;
zero asks for automatic sizing:

	n := workers.ForResize(cfg.Workers, 0)

# Environment Variable Override

RESIZE_WORKERS replaces the automatic calculation. Invalid, zero, or
negative values are ignored.

	RESIZE_WORKERS=1 media-resizer resize ./photos --photo 1080p

Setting it to 1 restores strictly sequential processing.
*/
package workers
