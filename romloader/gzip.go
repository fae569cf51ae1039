package romloader

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// extractFromGzip extracts a disk image from a plain .gz stream or,
// when the decompressed stream is itself a tar archive (.tar.gz/.tgz),
// the first recognized disk image inside it.
func extractFromGzip(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()

	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		tr := tar.NewReader(gz)
		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, "", fmt.Errorf("failed to read tar entry: %w", err)
			}
			if hdr.Typeflag != tar.TypeReg || !isDiskImageFile(hdr.Name) {
				continue
			}
			data, err := limitedRead(tr)
			if err != nil {
				return nil, "", fmt.Errorf("failed to read %s: %w", hdr.Name, err)
			}
			return data, filepath.Base(hdr.Name), nil
		}
		return nil, "", ErrNoDiskImage
	}

	data, err := limitedRead(gz)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read gzip stream: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return data, name, nil
}
