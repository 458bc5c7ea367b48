// Package resizer orchestrates folder runs.
//
// ProcessFolder enumerates the media files directly inside a folder, hands
// each one to the strategy for its kind (media.ImageResizer,
// media.AnimationResizer or media.VideoResizer) and publishes an ordered
// stream of events:
//
//	Processing: a.jpg
//	Finished: a.jpg
//	<progress 1/3>
//	Processing: b.gif
//	Skipped (resized larger): b.gif
//	<progress 2/3>
//
// With Config.Workers above one, files are resized concurrently but events
// are still published in enumeration order, once per file. When a Journal
// is configured, files whose content was already processed against the same
// target are reported as "Skipped (already processed)" without being touched.
package resizer
