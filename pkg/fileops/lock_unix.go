//go:build !windows

package fileops

import (
	"os"

	"golang.org/x/sys/unix"
)

// tryExclusiveOpen opens path read-only and takes a non-blocking exclusive
// flock, which fails while a cooperating writer holds any flock on the file.
// flock is advisory: a writer that never locks (most slicers) goes unseen.
func tryExclusiveOpen(path string) bool {
	file, err := os.Open(path) // #nosec G304 - file path is controlled by caller
	if err != nil {
		return false
	}

	defer func() {
		_ = file.Close()
	}()

	fd := int(file.Fd()) //nolint:gosec // file descriptors fit in int

	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		return false
	}

	_ = unix.Flock(fd, unix.LOCK_UN)

	return true
}
