//go:build windows

package atomicfile

import (
	"os"

	"github.com/hpungsan/vault/internal/errors"
)

// OpenNoFollow opens a file for writing.
// On Windows, O_NOFOLLOW is not available; WriteFile still refuses a
// symlinked destination before renaming.
func OpenNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}

// OpenNoFollowRead opens a file for reading. A symlink is refused with an
// Lstat check, which is racy where O_NOFOLLOW is not.
func OpenNoFollowRead(path string) (*os.File, error) {
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("cannot read from symlink")
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, err
	}
	return f, nil
}
