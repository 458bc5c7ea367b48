// Package media holds the per-format resize strategies.
//
// ImageResizer covers still photos: imaging decodes with EXIF
// auto-orientation and resizes with Lanczos, while webp, heic and ico go
// through libvips (InitVips must have been called). libvips cannot save ICO,
// so icons are exported as PNG and wrapped in a one-image ICO container;
// icons larger than 256 pixels a side are skipped. AnimationResizer rewrites
// GIFs frame by frame. VideoResizer delegates to a Transcoder.
//
// Every strategy writes a sibling temp artifact and hands it to a
// filesystem.Committer, which keeps whichever of the two files is smaller.
// Failures are returned as outcomes; the original file is never modified
// unless the commit succeeds.
package media
