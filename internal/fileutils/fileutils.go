// Package fileutils writes output artifacts to disk.
package fileutils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/loykin/modelfetch/internal/common"
)

// DefaultFileMode is used when the destination does not exist yet.
const DefaultFileMode os.FileMode = 0o644

// AtomicWrite writes data to path through a temporary file in the same
// directory, then renames it into place. An existing file is replaced whole;
// on failure the destination is left untouched and no file is created.
// A symlinked path is written through: the link stays and its target is replaced.
// Not atomic on Windows.
func AtomicWrite(path string, data []byte) error {
	path = resolveTarget(path)
	mode := DefaultFileMode
	if info, err := os.Stat(path); err == nil {
		if !info.Mode().IsRegular() {
			return fmt.Errorf("not a regular file: %s", path)
		}
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("could not create temporary file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			common.LogWarn("failed to remove temporary file", "file", tmp.Name(), "error", err)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("could not write to temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("could not sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close temporary file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("could not set file mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("could not rename temporary file: %w", err)
	}
	return nil
}

// resolveTarget follows symlinks so the rename lands on the file the link
// points to. A dangling link resolves to its target path.
func resolveTarget(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return path
	}
	target, err := os.Readlink(path)
	if err != nil {
		return path
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return target
}
