// Package resolution turns user resolution text into a target box and computes
// aspect-preserving output dimensions.
//
// Parsing accepts a preset name ("1080p"), an explicit box ("1280x720") or a bare
// height ("480" / "480p", width assumed 16:9). "Original" and empty text mean no
// resizing. Both dimensions of a parsed box pass through ClampEven.
//
// FitWithin is the only place output dimensions are computed; image, animation
// and video strategies all call it so the same source and box yield the same
// size regardless of format.
package resolution
