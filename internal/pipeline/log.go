package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// OpenLog duplicates everything written to w into the file at path,
// truncating it first. An empty path returns w unchanged. The returned
// close function must be called once the run is over.
func OpenLog(path string, w io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return w, func() error { return nil }, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return io.MultiWriter(w, f), f.Close, nil
}
