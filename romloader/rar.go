package romloader

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/nwaples/rardecode/v2"
)

// extractFromRAR extracts the preferred recognized disk image from a
// RAR archive. Unlike ZIP/7z, rardecode only exposes entries through a
// one-way Next() stream with no random access back to an earlier
// entry, so every candidate disk image has to be buffered as it's
// seen; chooseDiskImage then picks the lowest-numbered disk/side once
// the whole archive has been scanned, matching extractFromZIP/
// extractFrom7z's multi-disk-set preference.
func extractFromRAR(path string) ([]byte, string, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open rar: %w", err)
	}
	defer r.Close()

	var names []string
	var datas [][]byte
	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read rar entry: %w", err)
		}
		if header.IsDir || !isDiskImageFile(header.Name) {
			continue
		}

		data, err := limitedRead(r)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		names = append(names, header.Name)
		datas = append(datas, data)
	}

	if len(names) == 0 {
		return nil, "", ErrNoDiskImage
	}
	best := chooseDiskImage(names)
	return datas[best], filepath.Base(names[best]), nil
}
