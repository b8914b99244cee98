// Package fileutil provides the file-system backed content source and sink
// used by the converter, plus small path helpers.
package fileutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FS reads and writes whole files on the local file system.
type FS struct {
	// Mode applies to newly created files; zero means 0o644.
	Mode os.FileMode
}

// Read returns the full content of path.
func (FS) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return os.ReadFile(path)
}

// Write replaces path with data, creating parent directories as needed.
func (f FS) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	mode := f.Mode
	if mode == 0 {
		mode = 0o644
	}
	return os.WriteFile(path, data, mode)
}

// ReplaceExt swaps the extension of path for ext (which includes the dot)
// and inserts suffix before it: ReplaceExt("a/b.json", "_x", ".csv") is
// "a/b_x.csv".
func ReplaceExt(path, suffix, ext string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return base + suffix + ext
}

// IsRegularFile reports whether path exists and is a regular file.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
