package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that path is a directory this process can
// read, traverse, and write into.
func CheckDirectoryAccess(name, path string) Result {
	detail, ok := directoryAccessDetail(path)
	return Result{Name: name, Passed: ok, Detail: detail}
}

func directoryAccessDetail(path string) (string, bool) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return path + " (does not exist)", false
	case err != nil:
		return fmt.Sprintf("%s (stat: %v)", path, err), false
	case !info.IsDir():
		return path + " (not a directory)", false
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fmt.Sprintf("%s (insufficient permissions: %v)", path, err), false
	}
	return path + " (read/write ok)", true
}
