//go:build windows

package attach

import (
	"os"

	"github.com/hpungsan/binder/internal/errors"
)

// OpenFileNoFollow opens a file for writing.
// On Windows, O_NOFOLLOW is not available. Symlink attacks are less common
// on Windows due to privilege requirements for symlink creation.
func OpenFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}

// OpenFileNoFollowRead opens a file for reading.
// On Windows, O_NOFOLLOW is not available. See OpenFileNoFollow for details.
func OpenFileNoFollowRead(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound("file", path)
		}
		return nil, err
	}
	return f, nil
}
