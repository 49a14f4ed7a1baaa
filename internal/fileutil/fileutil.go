// Package fileutil provides small filesystem helpers shared across the
// pipeline, most importantly durable file replacement.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to path so that readers never observe a
// partially written file. The data is first written to a temporary file in
// the destination directory and then renamed over the target.
//
// Design decision: We write the temp file into the same directory as the
// destination rather than os.TempDir because rename is only atomic within
// a single filesystem. A temp file on another mount would silently degrade
// to copy-and-delete.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any failure path. Remove after rename is a
	// no-op because the file no longer exists under its temp name.
	defer os.Remove(tmpName) //nolint:errcheck // Best effort cleanup

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
