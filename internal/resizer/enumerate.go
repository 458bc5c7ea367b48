package resizer

import (
	"fmt"
	"os"
	"path/filepath"

	"media-resizer/internal/logging"
	"media-resizer/internal/mediatypes"
)

// Enumerate lists the media files directly inside folder, sorted by name.
// Subdirectories, symlinks, unsupported extensions and temp artifacts are
// left out.
func Enumerate(folder string) ([]mediatypes.MediaFile, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", folder, err)
	}

	var files []mediatypes.MediaFile
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !mediatypes.IsEligible(name) {
			if mediatypes.IsTempArtifact(name) {
				logging.Debug("Ignoring temp artifact %s", name)
			}
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Removed between listing and stat
			logging.Debug("Skipping %s: %v", name, err)
			continue
		}

		file := mediatypes.Classify(filepath.Join(folder, name))
		file.Size = info.Size()
		files = append(files, file)
	}
	return files, nil
}
