package mediatypes

import (
	"path/filepath"
	"strings"
)

// FileType represents the kind of a media file.
type FileType string

const (
	// FileTypePhoto represents a still or animated image.
	FileTypePhoto FileType = "photo"
	// FileTypeVideo represents a video file.
	FileTypeVideo FileType = "video"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// TempMarker is the infix placed between a file's base name and its extension
// to name the scratch output written before the original is replaced.
const TempMarker = ".tmp"

// AnimatedExtension is the photo extension routed to the multi-frame strategy.
const AnimatedExtension = ".gif"

// PhotoExtensions maps file extensions to whether they are supported photo formats.
var PhotoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".webp": true,
	".gif":  true,
	".heic": true,
	".ico":  true,
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".wmv":  true,
	".flv":  true,
	".mpg":  true,
	".mpeg": true,
	".3gp":  true,
	".webm": true,
}

// MediaFile is a file discovered in the target folder.
type MediaFile struct {
	Path     string
	Name     string
	Type     FileType
	Animated bool
	Size     int64
}

// GetFileType returns the FileType for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
func GetFileType(ext string) FileType {
	if PhotoExtensions[ext] {
		return FileTypePhoto
	}
	if VideoExtensions[ext] {
		return FileTypeVideo
	}
	return FileTypeOther
}

// Classify builds a MediaFile from a path. Extension matching is case-insensitive.
func Classify(path string) MediaFile {
	ext := strings.ToLower(filepath.Ext(path))
	return MediaFile{
		Path:     path,
		Name:     filepath.Base(path),
		Type:     GetFileType(ext),
		Animated: ext == AnimatedExtension,
	}
}

// IsTempArtifact reports whether name looks like a scratch file produced by
// TempPath, i.e. its stem ends with the temp marker ("photo.tmp.jpg").
func IsTempArtifact(name string) bool {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.HasSuffix(strings.ToLower(stem), TempMarker)
}

// IsEligible reports whether a file name should be picked up by a folder run.
func IsEligible(name string) bool {
	if IsTempArtifact(name) {
		return false
	}
	return GetFileType(strings.ToLower(filepath.Ext(name))) != FileTypeOther
}

// TempPath returns the sibling scratch path for an original:
// "<dir>/<base>.tmp<ext>", keeping the original extension as written.
func TempPath(original string) string {
	ext := filepath.Ext(original)
	return strings.TrimSuffix(original, ext) + TempMarker + ext
}
