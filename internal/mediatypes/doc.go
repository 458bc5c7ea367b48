// Package mediatypes holds the dependency-free types shared by the resize
// pipeline: file classification by extension, temp-artifact naming, and the
// per-file Outcome model.
//
// # Classification
//
//	f := mediatypes.Classify("/photos/IMG_0001.JPG")
//	// f.Type == mediatypes.FileTypePhoto, f.Animated == false
//
// Extension matching is case-insensitive. ".gif" is a photo extension that is
// additionally flagged Animated so the orchestrator routes it to the
// multi-frame strategy.
//
// # Temporary artifacts
//
// Strategies write their output to TempPath(original), e.g. "clip.tmp.mp4",
// before the committer decides whether to replace the original. Files whose stem
// ends in ".tmp" are never picked up by a folder run (see IsEligible).
//
// # Outcomes
//
// Every processed file yields exactly one Outcome. Label renders it for the
// per-file log line: "Finished", "Skipped (resized larger)",
// "Skipped (error: ...)", "Finished (error ignored: ...)".
package mediatypes
