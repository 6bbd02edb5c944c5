package fingerprint

import (
	"fmt"
	"os"
	"path/filepath"
)

// Exists reports whether a cached artifact is present. Concurrent workers
// racing on the same path write the same bytes, so presence alone is the
// cache contract.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// TempPath returns the staging path used before an atomic rename, keeping
// readers from ever observing a truncated artifact.
func TempPath(path string) string {
	return path + ".tmp"
}

// Commit renames a staged file into its final artifact path.
func Commit(tempPath, path string) error {
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to commit cache artifact %s: %w", path, err)
	}
	return nil
}

// WriteAtomic writes bytes to path via a temp file and rename.
func WriteAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp := TempPath(path)
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to stage cache artifact %s: %w", path, err)
	}
	return Commit(tmp, path)
}
