package romloader

import (
	"fmt"
	"path/filepath"

	"github.com/bodgit/sevenzip"
)

// extractFrom7z extracts the preferred recognized disk image from a 7z
// archive, applying the same multi-disk-set preference as extractFromZIP.
func extractFrom7z(path string) ([]byte, string, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open 7z: %w", err)
	}
	defer r.Close()

	var indices []int
	var names []string
	for i, f := range r.File {
		if f.FileInfo().IsDir() || !isDiskImageFile(f.Name) {
			continue
		}
		indices = append(indices, i)
		names = append(names, f.Name)
	}
	if len(indices) == 0 {
		return nil, "", ErrNoDiskImage
	}

	f := r.File[indices[chooseDiskImage(names)]]
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
