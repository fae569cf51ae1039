package romloader

import (
	"archive/zip"
	"fmt"
	"path/filepath"
)

// extractFromZIP extracts the preferred recognized disk image from a
// ZIP archive. When the archive bundles a multi-disk set, the lowest-
// numbered disk/side is returned (chooseDiskImage) rather than
// whichever entry happens to come first in the central directory.
func extractFromZIP(path string) ([]byte, string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	var candidates []*zip.File
	var names []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isDiskImageFile(f.Name) {
			continue
		}
		candidates = append(candidates, f)
		names = append(names, f.Name)
	}
	if len(candidates) == 0 {
		return nil, "", ErrNoDiskImage
	}

	f := candidates[chooseDiskImage(names)]
	rc, err := f.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := limitedRead(rc)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return data, filepath.Base(f.Name), nil
}
