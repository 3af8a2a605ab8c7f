package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/binder/internal/errors"
)

// validateInputFile checks a user-supplied file path before we read it.
// The path must be concrete (no traversal segments), must exist, must be a
// regular file rather than a symlink or directory, and must carry the
// expected extension.
func validateInputFile(path, wantExt string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.NewInvalidRequest("file path is required")
	}
	if containsTraversal(path) {
		return "", errors.NewInvalidRequest("file path must not contain traversal sequences (..)")
	}
	if !strings.EqualFold(filepath.Ext(path), wantExt) {
		return "", errors.NewInvalidRequest(fmt.Sprintf("file must have a %s extension", wantExt))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid file path: %v", err))
	}

	info, err := os.Lstat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewNotFound("file", path)
		}
		return "", errors.NewInternal(err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return "", errors.NewInvalidRequest("file path must not be a symlink")
	}
	if !info.Mode().IsRegular() {
		return "", errors.NewInvalidRequest("file path must be a regular file")
	}
	return abs, nil
}

// ValidateImportPath validates a path to an exported JSON document.
func ValidateImportPath(path string) (string, error) {
	return validateInputFile(path, ".json")
}

// ValidateBackupPath validates a path to a backup archive.
func ValidateBackupPath(path string) (string, error) {
	return validateInputFile(path, ".zip")
}

// containsTraversal checks whether any path component is "..".
// Checks components rather than substrings so legitimate names like
// "notes..txt" pass.
func containsTraversal(path string) bool {
	// Check both separator types; Windows accepts forward slashes too.
	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, part := range strings.Split(normalized, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// ensureWritableDir verifies a directory exists and accepts new files by
// creating and removing a probe file. Returns an InvalidRequest describing
// the problem when it does not.
func ensureWritableDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewInvalidRequest(fmt.Sprintf("directory does not exist: %s", dir))
		}
		return errors.NewInternal(err)
	}
	if !info.IsDir() {
		return errors.NewInvalidRequest(fmt.Sprintf("not a directory: %s", dir))
	}

	probe, err := os.CreateTemp(dir, ".binder-probe-*")
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("directory is not writable: %s", dir))
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return nil
}
