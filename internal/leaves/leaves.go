// Package leaves handles the fixed-size record geometry of leaf files.
package leaves

import (
	"fmt"

	"github.com/spf13/afero"
)

// Count returns how many leafSize records f holds. It fails when f is empty
// or its length is not an exact multiple of leafSize.
func Count(f afero.File, leafSize int) (int, error) {
	if leafSize <= 0 {
		return 0, fmt.Errorf("leaves: leaf size %d must be positive", leafSize)
	}
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	size := info.Size()
	if size == 0 {
		return 0, fmt.Errorf("leaves: %s is empty", f.Name())
	}
	if size%int64(leafSize) != 0 {
		return 0, fmt.Errorf("leaves: %s is %d bytes, not a multiple of the %d byte leaf size",
			f.Name(), size, leafSize)
	}
	return int(size / int64(leafSize)), nil
}

// Extract reads the single leaf at index from the file at path.
func Extract(fs afero.Fs, path string, leafSize, index int) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	total, err := Count(f, leafSize)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= total {
		return nil, fmt.Errorf("leaves: index %d out of range, %s has %d leaves", index, path, total)
	}
	leaf := make([]byte, leafSize)
	if _, err := f.ReadAt(leaf, int64(index)*int64(leafSize)); err != nil {
		return nil, fmt.Errorf("leaves: reading %s: %w", path, err)
	}
	return leaf, nil
}
