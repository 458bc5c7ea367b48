/*
Package filesystem provides the file operations the resize pipeline relies on.

# Replace-if-smaller

Committer is shared by every resize strategy. Given an original file, the
temporary artifact written next to it and the original's size, Commit either
renames the artifact over the original (new size <= original size) or deletes
the artifact and leaves the original alone:

	c := filesystem.NewCommitter()
	outcome, err := c.Commit("/photos/a.jpg", "/photos/a.tmp.jpg", originalSize)

After Commit returns without error exactly one file remains at the original
path and the artifact is gone.

# Retries

StatWithRetry, RenameWithRetry and RemoveWithRetry retry ESTALE (stale NFS
handle) and EBUSY errors with exponential backoff:
  - MaxRetries: 3 attempts
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

All other errors fail immediately.

# Hashing

HashFile computes a BLAKE2b-256 digest used by the run journal to recognise
files this tool already produced.

# Metrics

Operations report to an Observer installed with SetObserver; the metrics
package provides the Prometheus-backed implementation.
*/
package filesystem
